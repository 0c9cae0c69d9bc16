// Package dashboard composes the employee and manager landing views from the attendance
// and report services.
package dashboard

import (
	"sort"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/report"
)

const recentDaysLimit = 7

type TodayBlock struct {
	CheckedIn    bool              `json:"checked_in"`
	CheckedOut   bool              `json:"checked_out"`
	CheckInTime  *time.Time        `json:"check_in_time"`
	CheckOutTime *time.Time        `json:"check_out_time"`
	Status       attendance.Status `json:"status"`
}

type RecentDay struct {
	Date         calendar.Date     `json:"date"`
	Status       attendance.Status `json:"status"`
	CheckInTime  *time.Time        `json:"check_in_time"`
	CheckOutTime *time.Time        `json:"check_out_time"`
	TotalHours   *float64          `json:"total_hours"`
}

type EmployeeView struct {
	Date      calendar.Date   `json:"date"`
	Today     TodayBlock      `json:"today"`
	Monthly   *report.Summary `json:"monthly"`
	Last7Days []RecentDay     `json:"last_7_days"`
}

type ManagerToday struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	HalfDay int `json:"half_day"`
}

type ManagerView struct {
	Date             calendar.Date           `json:"date"`
	TotalEmployees   int                     `json:"total_employees"`
	Today            ManagerToday            `json:"today"`
	WeeklyAttendance []report.DailyPresence  `json:"weekly_attendance"`
	DepartmentStats  []report.DepartmentStat `json:"department_stats"`
	AbsentEmployees  []*report.Employee      `json:"absent_employees"`
}

func todayBlock(r *attendance.Record) TodayBlock {
	if r == nil {
		return TodayBlock{Status: attendance.StatusAbsent}
	}
	return TodayBlock{
		CheckedIn:    r.CheckedIn(),
		CheckedOut:   r.CheckedOut(),
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,
		Status:       r.Status,
	}
}

// recentDays keeps at most recentDaysLimit records, newest first.
func recentDays(records []*attendance.Record) []RecentDay {
	sorted := make([]*attendance.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	if len(sorted) > recentDaysLimit {
		sorted = sorted[:recentDaysLimit]
	}
	out := make([]RecentDay, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, RecentDay{
			Date:         r.Date,
			Status:       r.Status,
			CheckInTime:  r.CheckInTime,
			CheckOutTime: r.CheckOutTime,
			TotalHours:   r.TotalHours,
		})
	}
	return out
}
