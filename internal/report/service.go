package report

import (
	"context"
	"io"
	"log/slog"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

type RepositoryAPI interface {
	// ListRows returns rows ordered by date descending, then employee name.
	ListRows(ctx context.Context, filter Filter) ([]*Row, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
}

type Service struct {
	repo       RepositoryAPI
	clock      calendar.Clock
	classifier *attendance.Classifier
	exporter   *Exporter
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, clock calendar.Clock, exporter *Exporter, logger *slog.Logger) *Service {
	if exporter == nil {
		exporter = NewExporter(clock.Location(), "")
	}
	return &Service{
		repo:       repo,
		clock:      clock,
		classifier: attendance.NewClassifier(clock.Location()),
		exporter:   exporter,
		logger:     logger,
	}
}

func (s *Service) Today() calendar.Date {
	return s.clock.Today()
}

func (s *Service) Exporter() *Exporter {
	return s.exporter
}

// GetSummary tallies one user's rows when userID is set, otherwise every employee's.
func (s *Service) GetSummary(ctx context.Context, userID *int64, rng calendar.Range) (*Summary, error) {
	if !rng.Valid() {
		return nil, internal.ErrInvalidDateRange
	}
	rows, err := s.rows(ctx, Filter{Range: rng, UserID: userID, EmployeesOnly: userID == nil})
	if err != nil {
		return nil, err
	}
	summary := Summarize(rows)
	return &summary, nil
}

func (s *Service) GetTeamSummary(ctx context.Context, rng calendar.Range) (*TeamSummary, error) {
	if !rng.Valid() {
		return nil, internal.ErrInvalidDateRange
	}
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: rng, EmployeesOnly: true})
	if err != nil {
		return nil, err
	}
	ts := TeamTotals(len(employees), rows)
	return &ts, nil
}

// GetTodayStatus applies the headcount policy to today.
func (s *Service) GetTodayStatus(ctx context.Context) (*TodayStatus, error) {
	today := s.clock.Today()
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: calendar.NewRange(today, today), EmployeesOnly: true})
	if err != nil {
		return nil, err
	}
	status := HeadcountForDay(today, len(employees), rows)
	return &status, nil
}

func (s *Service) GetAll(ctx context.Context, filter Filter) ([]*Row, error) {
	if !filter.Range.Valid() {
		return nil, internal.ErrInvalidDateRange
	}
	filter.EmployeesOnly = true
	return s.rows(ctx, filter)
}

func (s *Service) GetDepartmentStats(ctx context.Context, rng calendar.Range) ([]DepartmentStat, error) {
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: rng, EmployeesOnly: true})
	if err != nil {
		return nil, err
	}
	return DepartmentStats(employees, rows), nil
}

// GetDailySeries applies the headcount policy to each day of rng.
func (s *Service) GetDailySeries(ctx context.Context, rng calendar.Range) ([]DailyPresence, error) {
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: rng, EmployeesOnly: true})
	if err != nil {
		return nil, err
	}
	return DailySeries(rng.Days(), len(employees), rows), nil
}

// AbsentToday lists employees with no row at all today.
func (s *Service) AbsentToday(ctx context.Context) ([]*Employee, error) {
	today := s.clock.Today()
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: calendar.NewRange(today, today), EmployeesOnly: true})
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		seen[r.UserID] = struct{}{}
	}
	absent := make([]*Employee, 0)
	for _, e := range employees {
		if _, ok := seen[e.ID]; !ok {
			absent = append(absent, e)
		}
	}
	return absent, nil
}

func (s *Service) Employees(ctx context.Context) ([]*Employee, error) {
	return s.employees(ctx)
}

// Employee looks up one employee-role user. Managers and unknown ids are not found.
func (s *Service) Employee(ctx context.Context, id int64) (*Employee, error) {
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

// Export writes the filtered employee rows in format to w.
func (s *Service) Export(ctx context.Context, w io.Writer, format string, filter Filter) (int, error) {
	if format != FormatCSV && format != FormatXLSX {
		return 0, internal.NewValidationFieldError("format", "format must be csv or xlsx", internal.ErrCodeInvalidFormat)
	}
	rows, err := s.GetAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := s.exporter.Write(w, format, rows); err != nil {
		s.logger.Error("export failed", "error", err, "format", format)
		return 0, internal.NewInternalError("Failed to export attendance", err)
	}
	s.logger.Info("attendance exported",
		"format", format,
		"rows", len(rows),
		"start_date", filter.Range.From.String(),
		"end_date", filter.Range.To.String())
	return len(rows), nil
}

func (s *Service) rows(ctx context.Context, filter Filter) ([]*Row, error) {
	rows, err := s.repo.ListRows(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list attendance rows", "error", err)
		return nil, internal.NewInternalError("Failed to load attendance", err)
	}
	return rows, nil
}

func (s *Service) employees(ctx context.Context) ([]*Employee, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("Failed to load employees", err)
	}
	return employees, nil
}
