package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/events"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	"github.com/frahmantamala/attendance-tracker/internal/user"
)

const (
	consecutiveAbsenceDays = 3
	punctualityThreshold   = 50.0
	multipleLateThreshold  = 5
	weeklySummaryDays      = 7
	clockLayout            = "15:04"
)

type UserService interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	ListEmployees(ctx context.Context) ([]*user.User, error)
	ListManagers(ctx context.Context) ([]*user.User, error)
	ClaimDailyEmail(ctx context.Context, id int64, now time.Time) (bool, error)
	MarkWeeklySummarySent(ctx context.Context, id int64, at time.Time) error
}

type ReportService interface {
	LateCheckIns(ctx context.Context, day calendar.Date) ([]*report.Row, error)
	EarlyCheckouts(ctx context.Context, day calendar.Date) ([]*report.Row, error)
	GetSummary(ctx context.Context, userID *int64, rng calendar.Range) (*report.Summary, error)
	ConsecutiveAbsentees(ctx context.Context, days int) ([]*report.Employee, error)
	LowPunctuality(ctx context.Context, threshold float64) ([]report.Punctuality, error)
}

type Queue interface {
	Enqueue(msg Message) error
}

// Notifier decides who gets which email. Per-day emails (late arrival, early checkout)
// share one slot per user per day.
type Notifier struct {
	users      UserService
	reports    ReportService
	queue      Queue
	clock      calendar.Clock
	classifier *attendance.Classifier
	logger     *slog.Logger
}

func NewNotifier(users UserService, reports ReportService, queue Queue, clock calendar.Clock, logger *slog.Logger) *Notifier {
	return &Notifier{
		users:      users,
		reports:    reports,
		queue:      queue,
		clock:      clock,
		classifier: attendance.NewClassifier(clock.Location()),
		logger:     logger,
	}
}

// LateArrivals emails everyone who checked in after 10:00 today and has not been
// emailed yet today. It returns the number of emails queued.
func (n *Notifier) LateArrivals(ctx context.Context) (int, error) {
	today := n.clock.Today()
	rows, err := n.reports.LateCheckIns(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("load late check-ins: %w", err)
	}

	sent := 0
	for _, r := range rows {
		if n.sendDaily(ctx, r.UserID, KindLateArrival, *r.CheckInTime) {
			sent++
		}
	}
	return sent, nil
}

// EarlyCheckouts emails everyone who left before 14:00 today, sharing the per-day slot.
func (n *Notifier) EarlyCheckouts(ctx context.Context) (int, error) {
	today := n.clock.Today()
	rows, err := n.reports.EarlyCheckouts(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("load early checkouts: %w", err)
	}

	sent := 0
	for _, r := range rows {
		if n.sendDaily(ctx, r.UserID, KindEarlyCheckout, *r.CheckOutTime) {
			sent++
		}
	}
	return sent, nil
}

// WeeklySummaries sends each opted-in employee their last seven days, at most once a week.
func (n *Notifier) WeeklySummaries(ctx context.Context) (int, error) {
	now := n.clock.Now()
	today := n.clock.Today()
	rng := calendar.Trailing(today, weeklySummaryDays)

	employees, err := n.users.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}

	sent := 0
	for _, u := range employees {
		if !u.NotificationsEnabled || !u.WeeklySummaryDue(now) {
			continue
		}

		id := u.ID
		summary, err := n.reports.GetSummary(ctx, &id, rng)
		if err != nil {
			n.logger.Error("weekly summary failed", "user_id", u.ID, "error", err)
			continue
		}

		msg := compose(ctx, u.Email, KindWeeklySummary, map[string]any{
			"Name":       u.Name,
			"From":       rng.From.String(),
			"To":         rng.To.String(),
			"Present":    summary.Present,
			"Late":       summary.Late,
			"HalfDay":    summary.HalfDay,
			"Absent":     summary.Absent,
			"TotalHours": fmt.Sprintf("%.2f", summary.TotalHours),
		})
		if err := n.queue.Enqueue(msg); err != nil {
			continue
		}
		if err := n.users.MarkWeeklySummarySent(ctx, u.ID, now); err != nil {
			n.logger.Error("failed to record weekly summary", "user_id", u.ID, "error", err)
		}
		sent++
	}
	return sent, nil
}

// ManagerAlerts emails every manager about three-day absences, punctuality under 50%
// this month, and more than five late arrivals today. Each alert is independent.
func (n *Notifier) ManagerAlerts(ctx context.Context) (int, error) {
	managers, err := n.users.ListManagers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list managers: %w", err)
	}
	if len(managers) == 0 {
		n.logger.Debug("no managers to alert")
		return 0, nil
	}

	today := n.clock.Today()
	sent := 0

	absent, err := n.reports.ConsecutiveAbsentees(ctx, consecutiveAbsenceDays)
	if err != nil {
		n.logger.Error("consecutive absence check failed", "error", err)
	} else if len(absent) > 0 {
		sent += n.broadcast(ctx, managers, KindConsecutiveAbsence, map[string]any{
			"Employees": employeeLines(absent),
		})
	}

	low, err := n.reports.LowPunctuality(ctx, punctualityThreshold)
	if err != nil {
		n.logger.Error("punctuality check failed", "error", err)
	} else if len(low) > 0 {
		sent += n.broadcast(ctx, managers, KindLowPunctuality, map[string]any{
			"Employees": punctualityLines(low),
		})
	}

	late, err := n.reports.LateCheckIns(ctx, today)
	if err != nil {
		n.logger.Error("late arrival count failed", "error", err)
	} else if len(late) > multipleLateThreshold {
		sent += n.broadcast(ctx, managers, KindMultipleLate, map[string]any{
			"Count":     len(late),
			"Date":      today.String(),
			"Employees": lateLines(late, func(r *report.Row) string { return n.clockTime(*r.CheckInTime) }),
		})
	}

	return sent, nil
}

// HandleCheckedIn sends the late-arrival email as soon as a late check-in is committed.
// The hourly sweep catches anything missed here.
func (n *Notifier) HandleCheckedIn(ctx context.Context, event events.Event) error {
	ae, ok := event.(*events.AttendanceEvent)
	if !ok || ae.CheckInTime == nil {
		return nil
	}
	if n.classifier.IsOnTime(*ae.CheckInTime) {
		return nil
	}
	n.sendDaily(ctx, ae.UserID, KindLateArrival, *ae.CheckInTime)
	return nil
}

func (n *Notifier) sendDaily(ctx context.Context, userID int64, kind string, at time.Time) bool {
	u, err := n.users.GetByID(ctx, userID)
	if err != nil {
		n.logger.Error("notification lookup failed", "user_id", userID, "kind", kind, "error", err)
		return false
	}

	now := n.clock.Now()
	if !u.NotificationsEnabled || u.EmailedOn(now) {
		return false
	}

	claimed, err := n.users.ClaimDailyEmail(ctx, u.ID, now)
	if err != nil || !claimed {
		return false
	}

	msg := compose(ctx, u.Email, kind, map[string]any{
		"Name": u.Name,
		"Time": n.clockTime(at),
		"Date": calendar.DateOf(at.In(n.clock.Location())).String(),
	})
	if err := n.queue.Enqueue(msg); err != nil {
		return false
	}
	n.logger.Info("notification queued", "user_id", u.ID, "kind", kind)
	return true
}

func (n *Notifier) broadcast(ctx context.Context, managers []*user.User, kind string, data map[string]any) int {
	sent := 0
	for _, m := range managers {
		payload := make(map[string]any, len(data)+1)
		for k, v := range data {
			payload[k] = v
		}
		payload["Name"] = m.Name

		if err := n.queue.Enqueue(compose(ctx, m.Email, kind, payload)); err != nil {
			continue
		}
		sent++
	}
	n.logger.Info("manager alert queued", "kind", kind, "managers", sent)
	return sent
}

func (n *Notifier) clockTime(t time.Time) string {
	return t.In(n.clock.Location()).Format(clockLayout)
}
