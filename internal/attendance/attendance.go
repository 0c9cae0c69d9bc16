package attendance

import (
	"errors"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	attendanceDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/attendance"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half-day"
)

var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusHalfDay}

func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CountsAsPresent is the headcount rule: late and half-day employees showed up.
func (s Status) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusLate || s == StatusHalfDay
}

type Record struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Date         calendar.Date `json:"date"`
	CheckInTime  *time.Time    `json:"check_in_time"`
	CheckOutTime *time.Time    `json:"check_out_time"`
	Status       Status        `json:"status"`
	TotalHours   *float64      `json:"total_hours"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (r *Record) CheckedIn() bool {
	return r != nil && r.CheckInTime != nil
}

func (r *Record) CheckedOut() bool {
	return r != nil && r.CheckOutTime != nil
}

// StartShift records a check-in, clearing any earlier checkout for the day.
func (r *Record) StartShift(at time.Time, status Status) {
	r.CheckInTime = &at
	r.CheckOutTime = nil
	r.TotalHours = nil
	r.Status = status
}

func (r *Record) EndShift(at time.Time, status Status, hours float64) {
	r.CheckOutTime = &at
	r.TotalHours = &hours
	r.Status = status
}

// Hours returns TotalHours with nil treated as zero.
func (r *Record) Hours() float64 {
	if r == nil || r.TotalHours == nil {
		return 0
	}
	return *r.TotalHours
}

// ErrDuplicateDay is returned by repositories when the (user, date) unique index rejects an insert.
var ErrDuplicateDay = errors.New("attendance already recorded for this day")

func ToDataModel(r *Record) *attendanceDatamodel.Attendance {
	return &attendanceDatamodel.Attendance{
		ID:           r.ID,
		UserID:       r.UserID,
		Date:         r.Date,
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,
		Status:       string(r.Status),
		TotalHours:   r.TotalHours,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func FromDataModel(a *attendanceDatamodel.Attendance) *Record {
	return &Record{
		ID:           a.ID,
		UserID:       a.UserID,
		Date:         a.Date,
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Status:       Status(a.Status),
		TotalHours:   a.TotalHours,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*attendanceDatamodel.Attendance) []*Record {
	result := make([]*Record, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
