package report_test

import (
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/i18n"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo    *MockRepository
		handler *report.Handler
		router  chi.Router
		manager *internal.AuthUser
	)

	BeforeEach(func() {
		Expect(i18n.Init("en")).To(Succeed())
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		repo = NewMockRepository()
		repo.AddEmployee(1, "ana", dept("Engineering"))
		repo.AddEmployee(2, "budi", dept("Sales, East"))
		repo.Add(&report.Row{ID: 1, UserID: 1, Date: calendar.MustParse("2024-03-15"), Status: attendance.StatusPresent,
			CheckInTime: stamp("2024-03-15", 9, 0), CheckOutTime: stamp("2024-03-15", 18, 0), TotalHours: hours(9)})
		repo.Add(&report.Row{ID: 2, UserID: 2, Date: calendar.MustParse("2024-03-15"), Status: attendance.StatusLate,
			CheckInTime: stamp("2024-03-15", 10, 30)})

		now := time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC)
		service := report.NewService(repo, calendar.NewFixedClock(func() time.Time { return now }, time.UTC), nil, slogger)
		handler = report.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
		manager = &internal.AuthUser{ID: 9, Name: "Maya", Role: internal.RoleManager}

		router = chi.NewRouter()
		router.Get("/attendance/all", handler.GetAll)
		router.Get("/attendance/employee/{id}", handler.GetEmployeeHistory)
		router.Get("/attendance/export", handler.ExportCSV)
		router.Get("/attendance/my-summary", handler.GetMySummary)
		router.Get("/attendance/today-status", handler.GetTodayStatus)
	})

	serve := func(target string, u *internal.AuthUser) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if u != nil {
			req = req.WithContext(internal.ContextWithUser(req.Context(), u))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorCode := func(w *httptest.ResponseRecorder) interface{} {
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body["error"]["code"]
	}

	It("lists rows for the default month-to-date range", func() {
		w := serve("/attendance/all", manager)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp report.RowsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.StartDate.String()).To(Equal("2024-03-01"))
		Expect(resp.EndDate.String()).To(Equal("2024-03-15"))
		Expect(resp.Count).To(Equal(2))
	})

	It("rejects an unknown status filter", func() {
		w := serve("/attendance/all?status=sleeping", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidStatus)))
	})

	It("rejects an inverted date range", func() {
		w := serve("/attendance/all?start_date=2024-03-15&end_date=2024-03-01", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidDateRange)))
	})

	It("rejects a malformed date", func() {
		w := serve("/attendance/all?start_date=15-03-2024", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidDate)))
	})

	It("localizes the malformed date message by its code", func() {
		w := serve("/attendance/employee/2?end_date=2024/03/15", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal(string(internal.ErrCodeInvalidDate)))
		Expect(body["error"]["message"]).To(Equal("Dates must use the YYYY-MM-DD format"))
	})

	It("returns one employee's history", func() {
		w := serve("/attendance/employee/2", manager)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp report.RowsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Records).To(HaveLen(1))
		Expect(resp.Records[0].Status).To(Equal(attendance.StatusLate))
	})

	It("rejects a non-numeric employee id", func() {
		w := serve("/attendance/employee/abc", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidUserID)))
	})

	It("returns not found for an unknown employee", func() {
		w := serve("/attendance/employee/999", manager)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeUserNotFound)))
	})

	It("streams a CSV attachment", func() {
		w := serve("/attendance/export?start_date=2024-03-01&end_date=2024-03-15", manager)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("text/csv"))
		Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("attendance_2024-03-01_to_2024-03-15.csv"))

		records, err := csv.NewReader(w.Body).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[2][4]).To(Equal("Sales, East"))
	})

	It("requires an authenticated user for personal summaries", func() {
		w := serve("/attendance/my-summary", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns the caller's summary", func() {
		w := serve("/attendance/my-summary", &internal.AuthUser{ID: 1, Role: internal.RoleEmployee})
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp report.SummaryResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Summary.Present).To(Equal(1))
		Expect(resp.Summary.TotalHours).To(Equal(9.0))
	})

	It("reports today's headcount", func() {
		w := serve("/attendance/today-status", manager)
		Expect(w.Code).To(Equal(http.StatusOK))

		var status report.TodayStatus
		Expect(json.NewDecoder(w.Body).Decode(&status)).To(Succeed())
		Expect(status.Present).To(Equal(2))
		Expect(status.Absent).To(Equal(0))
		Expect(status.Late).To(Equal(1))
	})
})
