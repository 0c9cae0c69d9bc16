// Package report derives summaries, headcounts, department statistics, analytics and
// exports from attendance rows joined with their users.
package report

import (
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

// NoDepartment labels users without a department in grouped output.
const NoDepartment = "N/A"

// Row is an attendance record joined with the owning user's identity.
type Row struct {
	ID           int64             `db:"id" json:"id"`
	UserID       int64             `db:"user_id" json:"user_id"`
	Date         calendar.Date     `db:"date" json:"date"`
	CheckInTime  *time.Time        `db:"check_in_time" json:"check_in_time"`
	CheckOutTime *time.Time        `db:"check_out_time" json:"check_out_time"`
	Status       attendance.Status `db:"status" json:"status"`
	TotalHours   *float64          `db:"total_hours" json:"total_hours"`
	EmployeeID   string            `db:"employee_id" json:"employee_id"`
	Name         string            `db:"name" json:"name"`
	Email        string            `db:"email" json:"email"`
	Department   *string           `db:"department" json:"department"`
}

func (r *Row) DepartmentName() string {
	if r.Department == nil || *r.Department == "" {
		return NoDepartment
	}
	return *r.Department
}

func (r *Row) Hours() float64 {
	if r.TotalHours == nil {
		return 0
	}
	return *r.TotalHours
}

// Employee is the headcount unit: every user with the employee role.
type Employee struct {
	ID         int64   `db:"id" json:"id"`
	EmployeeID string  `db:"employee_id" json:"employee_id"`
	Name       string  `db:"name" json:"name"`
	Email      string  `db:"email" json:"email"`
	Department *string `db:"department" json:"department"`
}

func (e *Employee) DepartmentName() string {
	if e.Department == nil || *e.Department == "" {
		return NoDepartment
	}
	return *e.Department
}

// Filter selects rows for listings and exports. A nil UserID or Status means any.
type Filter struct {
	Range         calendar.Range
	UserID        *int64
	Status        *attendance.Status
	EmployeesOnly bool
}

type Summary struct {
	TotalRecords int     `json:"total_records"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Late         int     `json:"late"`
	HalfDay      int     `json:"half_day"`
	TotalHours   float64 `json:"total_hours"`
}

type TodayStatus struct {
	Date           calendar.Date `json:"date"`
	TotalEmployees int           `json:"total_employees"`
	Present        int           `json:"present"`
	Absent         int           `json:"absent"`
	Late           int           `json:"late"`
	HalfDay        int           `json:"half_day"`
}

// TeamSummary counts distinct employees per status over a range.
type TeamSummary struct {
	TotalEmployees   int     `json:"total_employees"`
	PresentEmployees int     `json:"present_employees"`
	LateEmployees    int     `json:"late_employees"`
	HalfDayEmployees int     `json:"half_day_employees"`
	AbsentEmployees  int     `json:"absent_employees"`
	TotalHours       float64 `json:"total_hours"`
	AverageHours     float64 `json:"average_hours"`
}

type DepartmentStat struct {
	Department string  `json:"department"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
}

type DailyPresence struct {
	Date    calendar.Date `json:"date"`
	Present int           `json:"present"`
	Absent  int           `json:"absent"`
}
