package notification_test

import (
	"context"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/events"
	"github.com/frahmantamala/attendance-tracker/internal/notification"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	"github.com/frahmantamala/attendance-tracker/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notifier", func() {
	var (
		users    *fakeUsers
		reports  *fakeReports
		queue    *recordingQueue
		notifier *notification.Notifier
		now      time.Time
		ctx      context.Context
	)

	at := func(h, m int) *time.Time {
		t := time.Date(2024, 3, 15, h, m, 0, 0, time.UTC)
		return &t
	}

	lateRow := func(userID int64, h, m int) *report.Row {
		return &report.Row{UserID: userID, Date: calendar.MustParse("2024-03-15"), CheckInTime: at(h, m), Name: "user", EmployeeID: "EMP"}
	}

	BeforeEach(func() {
		users = newFakeUsers()
		users.Add(&user.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: "employee", NotificationsEnabled: true})
		users.Add(&user.User{ID: 2, Name: "Budi", Email: "budi@example.com", Role: "employee", NotificationsEnabled: false})
		users.Add(&user.User{ID: 3, Name: "Maya", Email: "maya@example.com", Role: "manager", NotificationsEnabled: true})
		users.Add(&user.User{ID: 4, Name: "Rina", Email: "rina@example.com", Role: "manager", NotificationsEnabled: true})

		reports = &fakeReports{}
		queue = &recordingQueue{}
		now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
		clock := calendar.NewFixedClock(func() time.Time { return now }, time.UTC)
		notifier = notification.NewNotifier(users, reports, queue, clock, testLogger())
		ctx = context.Background()
	})

	Describe("LateArrivals", func() {
		It("emails opted-in late users once per day", func() {
			reports.late = []*report.Row{lateRow(1, 10, 30), lateRow(2, 11, 0)}

			sent, err := notifier.LateArrivals(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(1))
			Expect(queue.messages[0].To).To(Equal("ana@example.com"))
			Expect(queue.messages[0].Subject).To(Equal("Late arrival recorded for 2024-03-15"))
			Expect(queue.messages[0].Body).To(ContainSubstring("10:30"))

			sent, err = notifier.LateArrivals(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
		})

		It("shares the daily slot with early checkout emails", func() {
			reports.late = []*report.Row{lateRow(1, 10, 30)}
			early := lateRow(1, 10, 30)
			early.CheckOutTime = at(13, 0)
			reports.early = []*report.Row{early}

			_, err := notifier.LateArrivals(ctx)
			Expect(err).NotTo(HaveOccurred())
			sent, err := notifier.EarlyCheckouts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
			Expect(queue.Kinds()).To(Equal([]string{notification.KindLateArrival}))
		})

		It("surfaces a failed lookup", func() {
			reports.failLate = true
			_, err := notifier.LateArrivals(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("does not count messages the queue rejected", func() {
			queue.full = true
			reports.late = []*report.Row{lateRow(1, 10, 30)}
			sent, err := notifier.LateArrivals(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
		})
	})

	Describe("WeeklySummaries", func() {
		It("sends due summaries and records them", func() {
			reports.summary = report.Summary{Present: 3, Late: 1, HalfDay: 1, TotalHours: 35.5}

			sent, err := notifier.WeeklySummaries(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(1))
			Expect(queue.messages[0].Subject).To(Equal("Your attendance summary for 2024-03-08 to 2024-03-15"))
			Expect(queue.messages[0].Body).To(ContainSubstring("Present: 3"))
			Expect(queue.messages[0].Body).To(ContainSubstring("Total hours: 35.50"))
			Expect(users.weeklyMarks).To(HaveKey(int64(1)))

			sent, err = notifier.WeeklySummaries(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
		})

		It("resends after seven days", func() {
			lastWeek := now.Add(-7 * 24 * time.Hour)
			users.users[1].WeeklySummarySent = &lastWeek

			sent, err := notifier.WeeklySummaries(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(1))
		})
	})

	Describe("ManagerAlerts", func() {
		It("sends nothing when every check passes", func() {
			reports.late = []*report.Row{lateRow(1, 10, 30)}
			sent, err := notifier.ManagerAlerts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
		})

		It("alerts every manager for each failing check", func() {
			reports.absentees = []*report.Employee{{ID: 1, Name: "Ana", EmployeeID: "EMP001"}}
			reports.punctuality = []report.Punctuality{{Employee: &report.Employee{ID: 2, Name: "Budi", EmployeeID: "EMP002"}, Score: 33.3}}
			for i := 0; i < 6; i++ {
				reports.late = append(reports.late, lateRow(int64(i+1), 10, 15))
			}

			sent, err := notifier.ManagerAlerts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(6))
			Expect(queue.Kinds()).To(Equal([]string{
				notification.KindConsecutiveAbsence, notification.KindConsecutiveAbsence,
				notification.KindLowPunctuality, notification.KindLowPunctuality,
				notification.KindMultipleLate, notification.KindMultipleLate,
			}))

			Expect(queue.messages[0].Body).To(ContainSubstring("Hi Maya"))
			Expect(queue.messages[0].Body).To(ContainSubstring("- Ana (EMP001)"))
			Expect(queue.messages[2].Body).To(ContainSubstring("33.3%"))
			Expect(queue.messages[4].Subject).To(Equal("6 late arrivals today"))
		})

		It("needs more than five late arrivals", func() {
			for i := 0; i < 5; i++ {
				reports.late = append(reports.late, lateRow(int64(i+1), 10, 15))
			}
			sent, err := notifier.ManagerAlerts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
		})
	})

	Describe("HandleCheckedIn", func() {
		checkedIn := func(userID int64, t *time.Time) events.Event {
			return events.NewAttendanceEvent(events.EventTypeAttendanceCheckedIn, 1, userID, "2024-03-15", "late", t, nil, nil)
		}

		It("emails a late check-in immediately", func() {
			Expect(notifier.HandleCheckedIn(ctx, checkedIn(1, at(10, 5)))).To(Succeed())
			Expect(queue.Kinds()).To(Equal([]string{notification.KindLateArrival}))

			reports.late = []*report.Row{lateRow(1, 10, 5)}
			sent, err := notifier.LateArrivals(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(0))
		})

		It("ignores on-time check-ins", func() {
			Expect(notifier.HandleCheckedIn(ctx, checkedIn(1, at(10, 0)))).To(Succeed())
			Expect(queue.messages).To(BeEmpty())
		})
	})
})
