package rest

import (
	"net/http"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/auth"
	"github.com/frahmantamala/attendance-tracker/internal/dashboard"
	"github.com/frahmantamala/attendance-tracker/internal/i18n"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	"github.com/frahmantamala/attendance-tracker/internal/transport/middleware"
	"github.com/frahmantamala/attendance-tracker/internal/transport/swagger"
	"github.com/frahmantamala/attendance-tracker/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. A nil Spec leaves /openapi.yml unmounted.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	Roles      *auth.RoleAuthorization
	User       *user.Handler
	Attendance *attendance.Handler
	Report     *report.Handler
	Dashboard  *dashboard.Handler
	Spec       *swagger.Spec
}

func RegisterAllRoutes(router chi.Router, allowedOrigins string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(i18n.Middleware)

	if h.Spec != nil {
		router.Method(http.MethodGet, swagger.SpecURL, h.Spec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Get("/health", h.Health.Health)
	router.Get("/ping", h.Health.Ping)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Patch("/users/me/notifications", h.User.UpdateNotifications)

			pr.Route("/attendance", func(ar chi.Router) {
				ar.Post("/checkin", h.Attendance.CheckIn)
				ar.Post("/checkout", h.Attendance.CheckOut)
				ar.Get("/today", h.Attendance.GetToday)
				ar.Get("/my-history", h.Attendance.GetMyHistory)
				ar.Get("/my-summary", h.Report.GetMySummary)

				ar.Group(func(mr chi.Router) {
					mr.Use(h.Roles.RequireManager())
					mr.Get("/all", h.Report.GetAll)
					mr.Get("/employee/{id}", h.Report.GetEmployeeHistory)
					mr.Get("/summary", h.Report.GetSummary)
					mr.Get("/team-summary", h.Report.GetTeamSummary)
					mr.Get("/today-status", h.Report.GetTodayStatus)
					mr.Get("/export", h.Report.ExportCSV)
					mr.Get("/export.xlsx", h.Report.ExportXLSX)
				})
			})

			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/employee", h.Dashboard.Employee)
				dr.With(h.Roles.RequireManager()).Get("/manager", h.Dashboard.Manager)
			})

			pr.Route("/analytics", func(ar chi.Router) {
				ar.Get("/employee/monthly", h.Report.EmployeeMonthly)
				ar.Get("/employee/weekly-checkin", h.Report.WeeklyCheckIn)
				ar.Get("/employee/trend-score", h.Report.TrendScore)

				ar.Group(func(mr chi.Router) {
					mr.Use(h.Roles.RequireManager())
					mr.Get("/manager/department-pie", h.Report.DepartmentPie)
					mr.Get("/manager/weekly-department", h.Report.WeeklyDepartment)
					mr.Get("/manager/late-arrivals", h.Report.LateArrivals)
				})
			})
		})
	})
}
