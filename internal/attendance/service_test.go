package attendance_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements attendance.RepositoryAPI in memory
type MockRepository struct {
	mu         sync.Mutex
	records    map[string]*attendance.Record
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{records: make(map[string]*attendance.Record)}
}

func key(userID int64, day calendar.Date) string {
	return fmt.Sprintf("%d/%s", userID, day)
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) Put(r *attendance.Record) {
	m.nextID++
	r.ID = m.nextID
	m.records[key(r.UserID, r.Date)] = r
}

func (m *MockRepository) FindByUserAndDate(_ context.Context, userID int64, day calendar.Date) (*attendance.Record, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	r, ok := m.records[key(userID, day)]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockRepository) ListByUser(_ context.Context, userID int64, rng calendar.Range) ([]*attendance.Record, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*attendance.Record
	for _, r := range m.records {
		if r.UserID == userID && rng.Contains(r.Date) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockRepository) UpsertForDay(_ context.Context, userID int64, day calendar.Date, mutate attendance.Mutator) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, m.failError
	}

	var current *attendance.Record
	if r, ok := m.records[key(userID, day)]; ok {
		cp := *r
		current = &cp
	}
	next, err := mutate(current)
	if err != nil {
		return nil, err
	}
	if current == nil {
		m.nextID++
		next.ID = m.nextID
	}
	stored := *next
	m.records[key(userID, day)] = &stored
	return next, nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

var _ = Describe("Attendance Service", func() {
	var (
		repo      *MockRepository
		publisher *recordingPublisher
		service   *attendance.Service
		now       time.Time
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		publisher = &recordingPublisher{}
		now = time.Date(2024, 3, 15, 9, 0, 0, 0, wib)
		clock := calendar.NewFixedClock(func() time.Time { return now }, wib)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = attendance.NewService(repo, clock, publisher, logger)
		ctx = context.Background()
	})

	Describe("CheckIn", func() {
		It("creates the day's record with an interim status", func() {
			record, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Status).To(Equal(attendance.StatusPresent))
			Expect(record.Date).To(Equal(calendar.MustParse("2024-03-15")))
			Expect(record.CheckOutTime).To(BeNil())
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeAttendanceCheckedIn))
		})

		It("marks a check-in after 10:01 as late", func() {
			now = time.Date(2024, 3, 15, 10, 30, 0, 0, wib)
			record, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Status).To(Equal(attendance.StatusLate))
		})

		It("rejects a second check-in on the same day", func() {
			_, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckIn(ctx, 1)
			Expect(err).To(MatchError(internal.ErrAlreadyCheckedIn))
		})

		It("rejects a check-in after checkout on the same day", func() {
			_, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			now = now.Add(9 * time.Hour)
			_, err = service.CheckOut(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckIn(ctx, 1)
			Expect(err).To(MatchError(internal.ErrAlreadyCheckedIn))
		})

		It("resets a record that exists without a check-in", func() {
			out := time.Date(2024, 3, 15, 8, 0, 0, 0, wib)
			hours := 1.0
			repo.Put(&attendance.Record{
				UserID:       1,
				Date:         calendar.MustParse("2024-03-15"),
				Status:       attendance.StatusAbsent,
				CheckOutTime: &out,
				TotalHours:   &hours,
			})

			record, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.ID).To(Equal(int64(1)))
			Expect(record.CheckOutTime).To(BeNil())
			Expect(record.TotalHours).To(BeNil())
			Expect(record.Status).To(Equal(attendance.StatusPresent))
		})

		It("maps a unique index violation to AlreadyCheckedIn", func() {
			repo.SetShouldFail(true, attendance.ErrDuplicateDay)
			_, err := service.CheckIn(ctx, 1)
			Expect(err).To(MatchError(internal.ErrAlreadyCheckedIn))
		})

		It("wraps storage failures as internal errors", func() {
			repo.SetShouldFail(true, errors.New("connection reset"))
			_, err := service.CheckIn(ctx, 1)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("CheckOut", func() {
		It("fails without a check-in", func() {
			_, err := service.CheckOut(ctx, 1)
			Expect(err).To(MatchError(internal.ErrNotCheckedIn))
		})

		It("records hours and the final status", func() {
			_, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			now = time.Date(2024, 3, 15, 18, 0, 0, 0, wib)
			record, err := service.CheckOut(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Status).To(Equal(attendance.StatusPresent))
			Expect(*record.TotalHours).To(BeNumerically("~", 9.0, 0.001))
			Expect(publisher.events).To(HaveLen(2))
		})

		It("turns an early checkout into a half-day", func() {
			_, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			now = time.Date(2024, 3, 15, 13, 0, 0, 0, wib)
			record, err := service.CheckOut(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Status).To(Equal(attendance.StatusHalfDay))
			Expect(*record.TotalHours).To(BeNumerically("~", 4.0, 0.001))
		})

		It("rejects a second checkout", func() {
			_, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			now = time.Date(2024, 3, 15, 18, 0, 0, 0, wib)
			_, err = service.CheckOut(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckOut(ctx, 1)
			Expect(err).To(MatchError(internal.ErrAlreadyCheckedOut))
		})
	})

	Describe("GetToday", func() {
		It("returns nil when no record exists", func() {
			record, err := service.GetToday(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record).To(BeNil())
		})

		It("returns today's record", func() {
			_, err := service.CheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			record, err := service.GetToday(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.UserID).To(Equal(int64(1)))
		})
	})

	Describe("GetHistory", func() {
		It("rejects an inverted range", func() {
			rng := calendar.NewRange(calendar.MustParse("2024-03-10"), calendar.MustParse("2024-03-01"))
			_, err := service.GetHistory(ctx, 1, rng)
			Expect(err).To(MatchError(internal.ErrInvalidDateRange))
		})

		It("lists records inside the range", func() {
			repo.Put(&attendance.Record{UserID: 1, Date: calendar.MustParse("2024-03-01"), Status: attendance.StatusPresent})
			repo.Put(&attendance.Record{UserID: 1, Date: calendar.MustParse("2024-02-01"), Status: attendance.StatusPresent})
			repo.Put(&attendance.Record{UserID: 2, Date: calendar.MustParse("2024-03-02"), Status: attendance.StatusLate})

			records, err := service.GetHistory(ctx, 1, calendar.MonthToDate(calendar.MustParse("2024-03-15")))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})
	})
})
