package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/frahmantamala/attendance-tracker/internal"
)

const (
	JobLateArrivals    = "late_arrivals"
	JobEarlyCheckouts  = "early_checkouts"
	JobWeeklySummaries = "weekly_summaries"
	JobManagerAlerts   = "manager_alerts"
)

type jobFunc func(ctx context.Context) (int, error)

// Scheduler runs the notifier's sweeps on cron expressions evaluated in the attendance
// timezone. A failing run is logged and the schedule carries on.
type Scheduler struct {
	cron       *cron.Cron
	jobs       map[string]jobFunc
	schedules  map[string]string
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(notifier *Notifier, schedules internal.NotificationSchedules, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs: map[string]jobFunc{
			JobLateArrivals:    notifier.LateArrivals,
			JobEarlyCheckouts:  notifier.EarlyCheckouts,
			JobWeeklySummaries: notifier.WeeklySummaries,
			JobManagerAlerts:   notifier.ManagerAlerts,
		},
		schedules: map[string]string{
			JobLateArrivals:    schedules.LateArrival,
			JobEarlyCheckouts:  schedules.EarlyCheckout,
			JobWeeklySummaries: schedules.WeeklySummary,
			JobManagerAlerts:   schedules.ManagerAlerts,
		},
		runTimeout: 5 * time.Minute,
		logger:     logger,
	}
}

// Register adds every job with a non-empty schedule.
func (s *Scheduler) Register() error {
	for _, name := range s.JobNames() {
		spec := s.schedules[name]
		if spec == "" {
			s.logger.Info("notification job disabled", "job", name)
			continue
		}
		if _, err := s.cron.AddFunc(spec, func() { _ = s.RunOnce(context.Background(), name) }); err != nil {
			return fmt.Errorf("schedule %s %q: %w", name, spec, err)
		}
		s.logger.Info("notification job scheduled", "job", name, "schedule", spec)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("notification jobs still running at shutdown")
	}
}

// RunOnce executes one job immediately.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown notification job %q", name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	sent, err := job(ctx)
	if err != nil {
		s.logger.Error("notification job failed", "job", name, "error", err)
		return err
	}
	s.logger.Info("notification job finished",
		"job", name,
		"queued", sent,
		"duration", time.Since(start).String())
	return nil
}

func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
