package attendance

import (
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

// Attendance is one row per (user, day). The composite unique index is the store-level
// guard behind the check-in transaction.
type Attendance struct {
	ID           int64         `gorm:"primaryKey"`
	UserID       int64         `gorm:"column:user_id;not null;uniqueIndex:idx_attendance_user_date,priority:1"`
	Date         calendar.Date `gorm:"column:date;not null;uniqueIndex:idx_attendance_user_date,priority:2"`
	CheckInTime  *time.Time    `gorm:"column:check_in_time"`
	CheckOutTime *time.Time    `gorm:"column:check_out_time"`
	Status       string        `gorm:"column:status;not null"`
	TotalHours   *float64      `gorm:"column:total_hours"`
	CreatedAt    time.Time     `gorm:"column:created_at"`
	UpdatedAt    time.Time     `gorm:"column:updated_at"`
}

func (Attendance) TableName() string {
	return "attendance"
}
