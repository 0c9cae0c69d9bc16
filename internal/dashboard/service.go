package dashboard

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/report"
)

type AttendanceService interface {
	GetToday(ctx context.Context, userID int64) (*attendance.Record, error)
	GetHistory(ctx context.Context, userID int64, rng calendar.Range) ([]*attendance.Record, error)
}

type ReportService interface {
	Today() calendar.Date
	GetSummary(ctx context.Context, userID *int64, rng calendar.Range) (*report.Summary, error)
	GetTodayStatus(ctx context.Context) (*report.TodayStatus, error)
	GetDailySeries(ctx context.Context, rng calendar.Range) ([]report.DailyPresence, error)
	GetDepartmentStats(ctx context.Context, rng calendar.Range) ([]report.DepartmentStat, error)
	AbsentToday(ctx context.Context) ([]*report.Employee, error)
}

type Service struct {
	attendance AttendanceService
	reports    ReportService
	logger     *slog.Logger
}

func NewService(attendance AttendanceService, reports ReportService, logger *slog.Logger) *Service {
	return &Service{
		attendance: attendance,
		reports:    reports,
		logger:     logger,
	}
}

// Employee builds the personal view: today's state, the month so far and the last week.
func (s *Service) Employee(ctx context.Context, userID int64) (*EmployeeView, error) {
	today := s.reports.Today()

	record, err := s.attendance.GetToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthly, err := s.reports.GetSummary(ctx, &userID, calendar.MonthToDate(today))
	if err != nil {
		return nil, err
	}

	history, err := s.attendance.GetHistory(ctx, userID, calendar.Trailing(today, recentDaysLimit))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("employee dashboard composed", "user_id", userID, "recent", len(history))
	return &EmployeeView{
		Date:      today,
		Today:     todayBlock(record),
		Monthly:   monthly,
		Last7Days: recentDays(history),
	}, nil
}

// Manager builds the team view. Weekly attendance covers the six days before today plus
// today; department stats cover the seven days before today plus today.
func (s *Service) Manager(ctx context.Context) (*ManagerView, error) {
	today := s.reports.Today()

	status, err := s.reports.GetTodayStatus(ctx)
	if err != nil {
		return nil, err
	}

	weekly, err := s.reports.GetDailySeries(ctx, calendar.Trailing(today, 6))
	if err != nil {
		return nil, err
	}

	departments, err := s.reports.GetDepartmentStats(ctx, calendar.Trailing(today, 7))
	if err != nil {
		return nil, err
	}

	absent, err := s.reports.AbsentToday(ctx)
	if err != nil {
		return nil, err
	}

	return &ManagerView{
		Date:           today,
		TotalEmployees: status.TotalEmployees,
		Today: ManagerToday{
			Present: status.Present,
			Absent:  status.Absent,
			Late:    status.Late,
			HalfDay: status.HalfDay,
		},
		WeeklyAttendance: weekly,
		DepartmentStats:  departments,
		AbsentEmployees:  absent,
	}, nil
}
