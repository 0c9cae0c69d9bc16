package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAttendanceCheckedIn  = "attendance.checked_in"
	EventTypeAttendanceCheckedOut = "attendance.checked_out"
)

// AttendanceEvent describes a check-in or check-out that has been committed.
type AttendanceEvent struct {
	BaseEvent
	RecordID     int64      `json:"record_id"`
	UserID       int64      `json:"user_id"`
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	TotalHours   *float64   `json:"total_hours,omitempty"`
}

func NewAttendanceEvent(eventType string, recordID, userID int64, date, status string, checkIn, checkOut *time.Time, totalHours *float64) *AttendanceEvent {
	data := map[string]interface{}{
		"record_id": recordID,
		"user_id":   userID,
		"date":      date,
		"status":    status,
	}
	if checkIn != nil {
		data["check_in_time"] = *checkIn
	}
	if checkOut != nil {
		data["check_out_time"] = *checkOut
	}
	if totalHours != nil {
		data["total_hours"] = *totalHours
	}

	return &AttendanceEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		RecordID:     recordID,
		UserID:       userID,
		Date:         date,
		Status:       status,
		CheckInTime:  checkIn,
		CheckOutTime: checkOut,
		TotalHours:   totalHours,
	}
}
