package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-tracker/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-tracker/internal/auth"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/events"
	"github.com/frahmantamala/attendance-tracker/internal/dashboard"
	"github.com/frahmantamala/attendance-tracker/internal/notification"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	reportPostgres "github.com/frahmantamala/attendance-tracker/internal/report/postgres"
	"github.com/frahmantamala/attendance-tracker/internal/user"
	userPostgres "github.com/frahmantamala/attendance-tracker/internal/user/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const driverName = "pgx"

// application holds the services every command builds on. Gorm serves the write side and
// sqlx the report queries; both share one *sql.DB pool.
type application struct {
	Config *internal.Config
	Logger *slog.Logger
	SQL    *sql.DB
	Gorm   *gorm.DB
	Clock  calendar.Clock
	Bus    *events.EventBus

	Users      *user.Service
	Auth       *auth.Service
	Attendance *attendance.Service
	Reports    *report.Service
	Dashboard  *dashboard.Service
}

// initDB opens the pgx pool and layers gorm over the same connections.
func initDB(cfg internal.DatabaseConfig) (*sql.DB, *gorm.DB, error) {
	sqlDB, err := sql.Open(driverName, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return sqlDB, gormDB, nil
}

func newApplication(cfg *internal.Config, sqlDB *sql.DB, gormDB *gorm.DB, lg *slog.Logger) (*application, error) {
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid attendance timezone: %w", err)
	}

	clock := calendar.NewClock(loc)
	bus := events.NewEventBus(lg)

	users := user.NewService(userPostgres.NewUserRepository(gormDB), cfg.Security.BCryptCost, lg)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	attendanceService := attendance.NewService(attendancePostgres.NewAttendanceRepository(gormDB), clock, bus, lg)
	reports := report.NewService(
		reportPostgres.NewReportRepository(sqlx.NewDb(sqlDB, driverName)),
		clock,
		report.NewExporter(loc, cfg.Attendance.ExportTimeFormat),
		lg,
	)

	return &application{
		Config:     cfg,
		Logger:     lg,
		SQL:        sqlDB,
		Gorm:       gormDB,
		Clock:      clock,
		Bus:        bus,
		Users:      users,
		Auth:       auth.NewService(users, tokens, lg),
		Attendance: attendanceService,
		Reports:    reports,
		Dashboard:  dashboard.NewService(attendanceService, reports, lg),
	}, nil
}

// newNotifier builds the mail pipeline. dryRun logs messages instead of sending them.
func (a *application) newNotifier(dryRun bool) (*notification.Notifier, *notification.Dispatcher) {
	cfg := a.Config.Notification

	var sender notification.Sender
	if dryRun {
		sender = notification.NewLogSender(a.Logger)
	} else {
		sender = notification.NewSMTPSender(cfg.SMTP)
	}

	dispatcher := notification.NewDispatcher(sender, notification.DispatcherConfig{
		MaxWorkers:   cfg.MaxWorkers,
		JobQueueSize: cfg.JobQueueSize,
		SendTimeout:  cfg.SendTimeout,
	}, a.Logger)

	return notification.NewNotifier(a.Users, a.Reports, dispatcher, a.Clock, a.Logger), dispatcher
}

// notificationsReady reports whether mail can go out, logging the reason when it cannot.
func (a *application) notificationsReady() bool {
	cfg := a.Config.Notification
	if !cfg.Enabled {
		a.Logger.Info("notifications disabled by configuration")
		return false
	}
	if !cfg.SMTP.Configured() {
		a.Logger.Warn("notifications disabled: smtp is not configured",
			"smtp_host", cfg.SMTP.Host,
			"smtp_port", cfg.SMTP.Port)
		return false
	}
	return true
}

func (a *application) Close() {
	a.Bus.Wait()
	if err := a.SQL.Close(); err != nil {
		a.Logger.Error("database close error", "error", err)
	}
}
