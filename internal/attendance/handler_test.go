package attendance_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-tracker/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	attendanceDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/i18n"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Attendance Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *attendance.Handler
		now     time.Time
		user    *internal.AuthUser
	)

	BeforeEach(func() {
		Expect(i18n.Init("en")).To(Succeed())
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&attendanceDatamodel.Attendance{})).To(Succeed())

		now = time.Date(2024, 3, 15, 10, 30, 0, 0, wib)
		clock := calendar.NewFixedClock(func() time.Time { return now }, wib)
		service := attendance.NewService(attendancePostgres.NewAttendanceRepository(db), clock, nil, slogger)
		handler = attendance.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
		user = &internal.AuthUser{ID: 7, Email: "ana@example.com", Name: "Ana", Role: internal.RoleEmployee}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	request := func(method, target string, u *internal.AuthUser) *http.Request {
		req := httptest.NewRequest(method, target, nil)
		if u != nil {
			req = req.WithContext(internal.ContextWithUser(req.Context(), u))
		}
		return req
	}

	It("rejects requests without an authenticated user", func() {
		w := httptest.NewRecorder()
		handler.CheckIn(w, request(http.MethodPost, "/attendance/checkin", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("checks in, reports today, and refuses a second check-in", func() {
		w := httptest.NewRecorder()
		handler.CheckIn(w, request(http.MethodPost, "/attendance/checkin", user))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp attendance.CheckResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Message).To(Equal("Checked in successfully"))
		Expect(resp.Attendance.Status).To(Equal(attendance.StatusLate))

		w = httptest.NewRecorder()
		handler.GetToday(w, request(http.MethodGet, "/attendance/today", user))
		Expect(w.Code).To(Equal(http.StatusOK))
		var today attendance.TodayResponse
		Expect(json.NewDecoder(w.Body).Decode(&today)).To(Succeed())
		Expect(today.Status).To(Equal(attendance.StatusLate))
		Expect(today.Date.String()).To(Equal("2024-03-15"))

		w = httptest.NewRecorder()
		handler.CheckIn(w, request(http.MethodPost, "/attendance/checkin", user))
		Expect(w.Code).To(Equal(http.StatusConflict))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal("ALREADY_CHECKED_IN"))
	})

	It("localizes errors from Accept-Language", func() {
		req := request(http.MethodPost, "/attendance/checkout", user)
		req = req.WithContext(i18n.WithLocale(req.Context(), "id"))
		w := httptest.NewRecorder()
		handler.CheckOut(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["message"]).To(Equal("Anda belum check-in hari ini"))
	})

	It("reports absent today before any check-in", func() {
		w := httptest.NewRecorder()
		handler.GetToday(w, request(http.MethodGet, "/attendance/today", user))
		var today attendance.TodayResponse
		Expect(json.NewDecoder(w.Body).Decode(&today)).To(Succeed())
		Expect(today.Status).To(Equal(attendance.StatusAbsent))
		Expect(today.Attendance).To(BeNil())
	})

	It("lists history and validates the range", func() {
		w := httptest.NewRecorder()
		handler.CheckIn(w, request(http.MethodPost, "/attendance/checkin", user))
		Expect(w.Code).To(Equal(http.StatusOK))

		now = now.Add(8 * time.Hour)
		w = httptest.NewRecorder()
		handler.CheckOut(w, request(http.MethodPost, "/attendance/checkout", user))
		Expect(w.Code).To(Equal(http.StatusOK))

		w = httptest.NewRecorder()
		handler.GetMyHistory(w, request(http.MethodGet, "/attendance/my-history", user))
		Expect(w.Code).To(Equal(http.StatusOK))
		var history attendance.HistoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&history)).To(Succeed())
		Expect(history.StartDate.String()).To(Equal("2024-03-01"))
		Expect(history.Records).To(HaveLen(1))
		Expect(*history.Records[0].TotalHours).To(Equal(8.0))

		w = httptest.NewRecorder()
		handler.GetMyHistory(w, request(http.MethodGet, "/attendance/my-history?start_date=2024-03-20&end_date=2024-03-01", user))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("keeps the context user key stable", func() {
		ctx := internal.ContextWithUser(context.Background(), user)
		got, ok := internal.UserFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(got.ID).To(Equal(int64(7)))
	})
})
