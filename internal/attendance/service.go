package attendance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/events"
)

// Mutator receives the day's current record (nil when none exists) and returns the
// record to persist. Returning an error aborts the write.
type Mutator func(current *Record) (*Record, error)

type RepositoryAPI interface {
	FindByUserAndDate(ctx context.Context, userID int64, day calendar.Date) (*Record, error)
	ListByUser(ctx context.Context, userID int64, rng calendar.Range) ([]*Record, error)
	// UpsertForDay runs mutate and the write in one transaction holding the (user, day) row.
	UpsertForDay(ctx context.Context, userID int64, day calendar.Date, mutate Mutator) (*Record, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       RepositoryAPI
	clock      calendar.Clock
	classifier *Classifier
	publisher  EventPublisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, clock calendar.Clock, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		clock:      clock,
		classifier: NewClassifier(clock.Location()),
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) Classifier() *Classifier {
	return s.classifier
}

func (s *Service) Today() calendar.Date {
	return s.clock.Today()
}

func (s *Service) CheckIn(ctx context.Context, userID int64) (*Record, error) {
	now := s.clock.Now()
	today := calendar.DateOf(now)

	record, err := s.repo.UpsertForDay(ctx, userID, today, func(current *Record) (*Record, error) {
		if current.CheckedIn() {
			return nil, internal.ErrAlreadyCheckedIn
		}
		if current == nil {
			current = &Record{UserID: userID, Date: today}
		}
		current.StartShift(now, s.classifier.Classify(&now, nil))
		return current, nil
	})
	if err != nil {
		return nil, s.translate(err, "check-in", userID)
	}

	s.logger.Info("attendance checked in",
		"user_id", userID,
		"date", today.String(),
		"status", record.Status)

	s.publish(ctx, events.EventTypeAttendanceCheckedIn, record)
	return record, nil
}

func (s *Service) CheckOut(ctx context.Context, userID int64) (*Record, error) {
	now := s.clock.Now()
	today := calendar.DateOf(now)

	record, err := s.repo.UpsertForDay(ctx, userID, today, func(current *Record) (*Record, error) {
		if !current.CheckedIn() {
			return nil, internal.ErrNotCheckedIn
		}
		if current.CheckedOut() {
			return nil, internal.ErrAlreadyCheckedOut
		}
		hours := RoundHours(ElapsedHours(*current.CheckInTime, now))
		current.EndShift(now, s.classifier.Classify(current.CheckInTime, &now), hours)
		return current, nil
	})
	if err != nil {
		return nil, s.translate(err, "check-out", userID)
	}

	s.logger.Info("attendance checked out",
		"user_id", userID,
		"date", today.String(),
		"status", record.Status,
		"total_hours", record.Hours())

	s.publish(ctx, events.EventTypeAttendanceCheckedOut, record)
	return record, nil
}

// GetToday returns nil without error when the user has no record today.
func (s *Service) GetToday(ctx context.Context, userID int64) (*Record, error) {
	record, err := s.repo.FindByUserAndDate(ctx, userID, s.clock.Today())
	if err != nil {
		if errors.Is(err, internal.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to load today's attendance", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("Failed to load attendance", err)
	}
	return record, nil
}

// GetHistory lists the user's records in rng, most recent first.
func (s *Service) GetHistory(ctx context.Context, userID int64, rng calendar.Range) ([]*Record, error) {
	if !rng.Valid() {
		return nil, internal.ErrInvalidDateRange
	}
	records, err := s.repo.ListByUser(ctx, userID, rng)
	if err != nil {
		s.logger.Error("failed to list attendance history", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("Failed to load attendance history", err)
	}
	return records, nil
}

func (s *Service) translate(err error, op string, userID int64) error {
	if errors.Is(err, ErrDuplicateDay) {
		s.logger.Warn("concurrent check-in rejected by unique index", "user_id", userID)
		return internal.ErrAlreadyCheckedIn
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.Error("attendance write failed", "op", op, "error", err, "user_id", userID)
	return internal.NewInternalError("Failed to record attendance", err)
}

func (s *Service) publish(ctx context.Context, eventType string, r *Record) {
	if s.publisher == nil {
		return
	}
	event := events.NewAttendanceEvent(eventType, r.ID, r.UserID, r.Date.String(), string(r.Status),
		r.CheckInTime, r.CheckOutTime, r.TotalHours)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish attendance event", "error", err, "event_type", eventType)
	}
}
