package report

import (
	"context"
	"sort"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

const (
	weeklyWindowDays      = 7
	lateArrivalWindowDays = 14
)

type MonthlyPoint struct {
	Date       calendar.Date     `json:"date"`
	TotalHours *float64          `json:"total_hours"`
	Status     attendance.Status `json:"status"`
}

type CheckInPoint struct {
	Date        calendar.Date `json:"date"`
	CheckInHour float64       `json:"check_in_decimal"`
	CheckInTime time.Time     `json:"check_in_time"`
}

type TrendScore struct {
	OnTimeDays       int     `json:"on_time_days"`
	TotalWorkingDays int     `json:"total_working_days"`
	Score            float64 `json:"score"`
}

type DepartmentCount struct {
	Department   string `json:"department"`
	PresentCount int    `json:"present_count"`
}

type DepartmentHours struct {
	Department string  `json:"department"`
	AvgHours   float64 `json:"avg_hours"`
}

type LateArrival struct {
	Name        string        `json:"name"`
	Department  string        `json:"department"`
	Date        calendar.Date `json:"date"`
	CheckInTime time.Time     `json:"check_in_time"`
}

// EmployeeMonthly lists the user's records for the current month, oldest first.
func (s *Service) EmployeeMonthly(ctx context.Context, userID int64) ([]MonthlyPoint, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.MonthToDate(s.clock.Today()), UserID: &userID})
	if err != nil {
		return nil, err
	}
	points := make([]MonthlyPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		points = append(points, MonthlyPoint{Date: r.Date, TotalHours: r.TotalHours, Status: r.Status})
	}
	return points, nil
}

// WeeklyCheckIn plots check-in time of day over the last week, oldest first.
func (s *Service) WeeklyCheckIn(ctx context.Context, userID int64) ([]CheckInPoint, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.Trailing(s.clock.Today(), weeklyWindowDays), UserID: &userID})
	if err != nil {
		return nil, err
	}
	points := make([]CheckInPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if r.CheckInTime == nil {
			continue
		}
		points = append(points, CheckInPoint{
			Date:        r.Date,
			CheckInHour: s.classifier.DecimalHour(*r.CheckInTime),
			CheckInTime: *r.CheckInTime,
		})
	}
	return points, nil
}

// GetTrendScore is the share of this month's non-absent days that began by 10:00.
func (s *Service) GetTrendScore(ctx context.Context, userID int64) (*TrendScore, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.MonthToDate(s.clock.Today()), UserID: &userID})
	if err != nil {
		return nil, err
	}
	var ts TrendScore
	for _, r := range rows {
		if r.Status == attendance.StatusAbsent {
			continue
		}
		ts.TotalWorkingDays++
		if r.CheckInTime != nil && s.classifier.IsOnTime(*r.CheckInTime) {
			ts.OnTimeDays++
		}
	}
	ts.Score = Percentage(ts.OnTimeDays, ts.TotalWorkingDays)
	return &ts, nil
}

// DepartmentPie counts today's present-like employees per department. Departments with
// nobody in still appear with zero.
func (s *Service) DepartmentPie(ctx context.Context) ([]DepartmentCount, error) {
	today := s.clock.Today()
	stats, err := s.GetDepartmentStats(ctx, calendar.NewRange(today, today))
	if err != nil {
		return nil, err
	}
	pie := make([]DepartmentCount, 0, len(stats))
	for _, st := range stats {
		pie = append(pie, DepartmentCount{Department: st.Department, PresentCount: st.Present})
	}
	return pie, nil
}

// WeeklyDepartmentHours averages completed shift hours per department over the last week.
func (s *Service) WeeklyDepartmentHours(ctx context.Context) ([]DepartmentHours, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.Trailing(s.clock.Today(), weeklyWindowDays)})
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		if r.TotalHours == nil {
			continue
		}
		dept := r.DepartmentName()
		sums[dept] += *r.TotalHours
		counts[dept]++
	}

	out := make([]DepartmentHours, 0, len(counts))
	for dept, n := range counts {
		out = append(out, DepartmentHours{Department: dept, AvgHours: attendance.RoundHours(sums[dept] / float64(n))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

// LateArrivals lists check-ins after 10:00 over the last two weeks, newest first.
func (s *Service) LateArrivals(ctx context.Context) ([]LateArrival, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.Trailing(s.clock.Today(), lateArrivalWindowDays)})
	if err != nil {
		return nil, err
	}

	out := make([]LateArrival, 0)
	for _, r := range rows {
		if r.CheckInTime == nil || s.classifier.IsOnTime(*r.CheckInTime) {
			continue
		}
		out = append(out, LateArrival{
			Name:        r.Name,
			Department:  r.DepartmentName(),
			Date:        r.Date,
			CheckInTime: *r.CheckInTime,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CheckInTime.After(out[j].CheckInTime)
	})
	return out, nil
}
