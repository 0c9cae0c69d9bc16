package report

import (
	"context"

	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

// Punctuality is an employee's on-time share of their recorded check-ins.
type Punctuality struct {
	Employee *Employee `json:"employee"`
	Score    float64   `json:"score"`
}

// LateCheckIns lists day's rows whose check-in came after 10:00.
func (s *Service) LateCheckIns(ctx context.Context, day calendar.Date) ([]*Row, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.NewRange(day, day)})
	if err != nil {
		return nil, err
	}
	late := make([]*Row, 0)
	for _, r := range rows {
		if r.CheckInTime != nil && !s.classifier.IsOnTime(*r.CheckInTime) {
			late = append(late, r)
		}
	}
	return late, nil
}

// EarlyCheckouts lists day's rows checked out before 14:00.
func (s *Service) EarlyCheckouts(ctx context.Context, day calendar.Date) ([]*Row, error) {
	rows, err := s.rows(ctx, Filter{Range: calendar.NewRange(day, day)})
	if err != nil {
		return nil, err
	}
	early := make([]*Row, 0)
	for _, r := range rows {
		if r.CheckOutTime != nil && s.classifier.IsEarlyCheckout(*r.CheckOutTime) {
			early = append(early, r)
		}
	}
	return early, nil
}

// ConsecutiveAbsentees returns employees who did not show up on any of the last days
// days, today included.
func (s *Service) ConsecutiveAbsentees(ctx context.Context, days int) ([]*Employee, error) {
	if days <= 0 {
		return []*Employee{}, nil
	}
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: calendar.Trailing(s.clock.Today(), days-1), EmployeesOnly: true})
	if err != nil {
		return nil, err
	}

	showedUp := make(map[int64]struct{})
	for _, r := range rows {
		if r.Status.CountsAsPresent() {
			showedUp[r.UserID] = struct{}{}
		}
	}
	absent := make([]*Employee, 0)
	for _, e := range employees {
		if _, ok := showedUp[e.ID]; !ok {
			absent = append(absent, e)
		}
	}
	return absent, nil
}

// LowPunctuality returns employees whose month-to-date on-time share is below threshold
// percent. Employees without any record this month are skipped.
func (s *Service) LowPunctuality(ctx context.Context, threshold float64) ([]Punctuality, error) {
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, Filter{Range: calendar.MonthToDate(s.clock.Today()), EmployeesOnly: true})
	if err != nil {
		return nil, err
	}

	total := make(map[int64]int)
	onTime := make(map[int64]int)
	for _, r := range rows {
		total[r.UserID]++
		if r.CheckInTime != nil && s.classifier.IsOnTime(*r.CheckInTime) {
			onTime[r.UserID]++
		}
	}

	out := make([]Punctuality, 0)
	for _, e := range employees {
		n, ok := total[e.ID]
		if !ok {
			continue
		}
		score := Percentage(onTime[e.ID], n)
		if score < threshold {
			out = append(out, Punctuality{Employee: e, Score: score})
		}
	}
	return out, nil
}
