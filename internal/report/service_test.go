package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements report.RepositoryAPI over in-memory rows
type MockRepository struct {
	rows       []*report.Row
	employees  []*report.Employee
	managers   map[int64]bool
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{managers: make(map[int64]bool)}
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) AddEmployee(id int64, name string, department *string) {
	m.employees = append(m.employees, &report.Employee{
		ID:         id,
		EmployeeID: "EMP00" + string(rune('0'+id)),
		Name:       name,
		Email:      name + "@example.com",
		Department: department,
	})
}

func (m *MockRepository) Add(r *report.Row) {
	for _, e := range m.employees {
		if e.ID == r.UserID {
			r.Name = e.Name
			r.Email = e.Email
			r.EmployeeID = e.EmployeeID
			r.Department = e.Department
		}
	}
	m.rows = append(m.rows, r)
}

func (m *MockRepository) ListRows(_ context.Context, filter report.Filter) ([]*report.Row, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	out := make([]*report.Row, 0)
	for _, r := range m.rows {
		if !filter.Range.Contains(r.Date) {
			continue
		}
		if filter.EmployeesOnly && m.managers[r.UserID] {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MockRepository) ListEmployees(_ context.Context) ([]*report.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.employees, nil
}

var _ = Describe("Service", func() {
	var (
		repo    *MockRepository
		service *report.Service
		ctx     context.Context
		today   string
	)

	// shift adds a row for userID on day with optional check-in/out at hh:mm (-1 for none).
	shift := func(userID int64, day string, inH, inM, outH, outM int) *report.Row {
		c := attendance.NewClassifier(time.UTC)
		r := &report.Row{ID: int64(len(repo.rows) + 1), UserID: userID, Date: calendar.MustParse(day)}
		if inH >= 0 {
			r.CheckInTime = stamp(day, inH, inM)
		}
		if outH >= 0 {
			r.CheckOutTime = stamp(day, outH, outM)
			h := attendance.RoundHours(attendance.ElapsedHours(*r.CheckInTime, *r.CheckOutTime))
			r.TotalHours = &h
		}
		r.Status = c.Classify(r.CheckInTime, r.CheckOutTime)
		repo.Add(r)
		return r
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		repo.AddEmployee(1, "ana", dept("Engineering"))
		repo.AddEmployee(2, "budi", dept("Engineering"))
		repo.AddEmployee(3, "citra", nil)

		now := time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC)
		clock := calendar.NewFixedClock(func() time.Time { return now }, time.UTC)
		service = report.NewService(repo, clock, nil, slogger)
		ctx = context.Background()
		today = "2024-03-15"
	})

	Describe("GetSummary", func() {
		It("scopes to one user when a user id is given", func() {
			shift(1, "2024-03-14", 9, 0, 18, 0)
			shift(1, today, 10, 30, 18, 0)
			shift(2, today, 9, 0, 13, 0)

			id := int64(1)
			s, err := service.GetSummary(ctx, &id, calendar.MonthToDate(calendar.MustParse(today)))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.TotalRecords).To(Equal(2))
			Expect(s.Present).To(Equal(1))
			Expect(s.Late).To(Equal(1))
			Expect(s.TotalHours).To(Equal(16.5))
		})

		It("tallies every employee without a user id", func() {
			shift(1, today, 9, 0, 18, 0)
			shift(2, today, 9, 0, 13, 0)

			s, err := service.GetSummary(ctx, nil, calendar.MonthToDate(calendar.MustParse(today)))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Present).To(Equal(1))
			Expect(s.HalfDay).To(Equal(1))
		})

		It("rejects an inverted range", func() {
			rng := calendar.NewRange(calendar.MustParse(today), calendar.MustParse("2024-03-01"))
			_, err := service.GetSummary(ctx, nil, rng)
			Expect(errors.Is(err, internal.ErrInvalidDateRange)).To(BeTrue())
		})

		It("wraps repository failures as internal errors", func() {
			repo.SetShouldFail(true, errors.New("connection reset"))
			_, err := service.GetSummary(ctx, nil, calendar.MonthToDate(calendar.MustParse(today)))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("GetTodayStatus", func() {
		It("applies the headcount policy", func() {
			shift(1, today, 9, 0, -1, 0)
			shift(2, today, 11, 0, -1, 0)

			status, err := service.GetTodayStatus(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.TotalEmployees).To(Equal(3))
			Expect(status.Present).To(Equal(2))
			Expect(status.Absent).To(Equal(1))
			Expect(status.Late).To(Equal(1))
		})
	})

	Describe("AbsentToday", func() {
		It("lists employees without any row today", func() {
			shift(1, today, 9, 0, -1, 0)
			absent, err := service.AbsentToday(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(absent).To(HaveLen(2))
			Expect(absent[0].Name).To(Equal("budi"))
			Expect(absent[1].Name).To(Equal("citra"))
		})
	})

	Describe("GetAll and Export", func() {
		BeforeEach(func() {
			shift(1, today, 9, 0, 18, 0)
			shift(2, today, 10, 30, -1, 0)
			shift(2, "2024-03-14", 9, 0, 18, 0)
		})

		It("filters by status", func() {
			late := attendance.StatusLate
			rows, err := service.GetAll(ctx, report.Filter{Range: calendar.MonthToDate(calendar.MustParse(today)), Status: &late})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].UserID).To(Equal(int64(2)))
		})

		It("exports matching rows as CSV, newest first", func() {
			var buf bytes.Buffer
			n, err := service.Export(ctx, &buf, report.FormatCSV, report.Filter{Range: calendar.MonthToDate(calendar.MustParse(today))})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))

			records, err := csv.NewReader(&buf).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))
			Expect(records[1][0]).To(Equal(today))
			Expect(records[1][2]).To(Equal("ana"))
			Expect(records[2][2]).To(Equal("budi"))
			Expect(records[3][0]).To(Equal("2024-03-14"))
		})

		It("rejects unknown formats", func() {
			var buf bytes.Buffer
			_, err := service.Export(ctx, &buf, "pdf", report.Filter{Range: calendar.MonthToDate(calendar.MustParse(today))})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidFormat))
		})
	})

	Describe("Employee", func() {
		It("finds an employee by id", func() {
			e, err := service.Employee(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Name).To(Equal("budi"))
		})

		It("reports unknown ids as not found", func() {
			_, err := service.Employee(ctx, 999)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Analytics", func() {
		It("scores on-time arrivals over non-absent days this month", func() {
			shift(1, "2024-03-12", 9, 30, 18, 0)
			shift(1, "2024-03-13", 10, 0, 18, 0)
			shift(1, "2024-03-14", 10, 30, 18, 0)
			shift(1, "2024-02-28", 11, 0, 18, 0)

			score, err := service.GetTrendScore(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(score.TotalWorkingDays).To(Equal(3))
			Expect(score.OnTimeDays).To(Equal(2))
			Expect(score.Score).To(Equal(66.7))
		})

		It("plots the last week of check-ins oldest first as decimal hours", func() {
			shift(1, "2024-03-14", 9, 30, 18, 0)
			shift(1, today, 10, 15, -1, 0)
			shift(1, "2024-03-01", 9, 0, 18, 0)

			points, err := service.WeeklyCheckIn(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(HaveLen(2))
			Expect(points[0].CheckInHour).To(Equal(9.5))
			Expect(points[1].CheckInHour).To(Equal(10.25))
		})

		It("lists late arrivals newest first", func() {
			shift(1, "2024-03-13", 10, 5, 18, 0)
			shift(2, today, 10, 20, -1, 0)
			shift(3, today, 11, 0, -1, 0)
			shift(1, today, 10, 0, -1, 0)

			arrivals, err := service.LateArrivals(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(arrivals).To(HaveLen(3))
			Expect(arrivals[0].Name).To(Equal("citra"))
			Expect(arrivals[0].Department).To(Equal(report.NoDepartment))
			Expect(arrivals[1].Name).To(Equal("budi"))
			Expect(arrivals[2].Date.String()).To(Equal("2024-03-13"))
		})

		It("averages completed hours per department over the last week", func() {
			shift(1, today, 9, 0, 18, 0)
			shift(2, today, 9, 0, 16, 0)
			shift(3, today, 9, 0, -1, 0)

			out, err := service.WeeklyDepartmentHours(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]report.DepartmentHours{{Department: "Engineering", AvgHours: 8}}))
		})

		It("includes every department in the pie", func() {
			shift(1, today, 9, 0, -1, 0)
			pie, err := service.DepartmentPie(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pie).To(Equal([]report.DepartmentCount{
				{Department: "Engineering", PresentCount: 1},
				{Department: report.NoDepartment, PresentCount: 0},
			}))
		})
	})

	Describe("Alerts", func() {
		It("finds employees missing on each of the last three days", func() {
			shift(1, "2024-03-13", 9, 0, 18, 0)
			shift(2, "2024-03-12", 9, 0, 18, 0)

			absent, err := service.ConsecutiveAbsentees(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(absent).To(HaveLen(2))
			Expect(absent[0].ID).To(Equal(int64(2)))
			Expect(absent[1].ID).To(Equal(int64(3)))
		})

		It("flags punctuality below the threshold", func() {
			shift(1, "2024-03-13", 9, 0, 18, 0)
			shift(1, "2024-03-14", 10, 30, 18, 0)
			shift(2, "2024-03-13", 10, 30, 18, 0)
			shift(2, "2024-03-14", 11, 0, 18, 0)
			shift(2, "2024-03-15", 9, 0, 18, 0)

			low, err := service.LowPunctuality(ctx, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(low).To(HaveLen(1))
			Expect(low[0].Employee.ID).To(Equal(int64(2)))
			Expect(low[0].Score).To(Equal(33.3))
		})

		It("separates late check-ins from early checkouts", func() {
			shift(1, today, 10, 1, 18, 0)
			shift(2, today, 9, 0, 13, 59)
			shift(3, today, 9, 0, 14, 0)

			late, err := service.LateCheckIns(ctx, calendar.MustParse(today))
			Expect(err).NotTo(HaveOccurred())
			Expect(late).To(HaveLen(1))
			Expect(late[0].UserID).To(Equal(int64(1)))

			early, err := service.EarlyCheckouts(ctx, calendar.MustParse(today))
			Expect(err).NotTo(HaveOccurred())
			Expect(early).To(HaveLen(1))
			Expect(early[0].UserID).To(Equal(int64(2)))
		})
	})
})
