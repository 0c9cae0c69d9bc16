package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/auth"
	"github.com/frahmantamala/attendance-tracker/internal/core/events"
	"github.com/frahmantamala/attendance-tracker/internal/dashboard"
	"github.com/frahmantamala/attendance-tracker/internal/notification"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
	"github.com/frahmantamala/attendance-tracker/internal/transport/rest"
	"github.com/frahmantamala/attendance-tracker/internal/transport/swagger"
	"github.com/frahmantamala/attendance-tracker/internal/user"
	"github.com/frahmantamala/attendance-tracker/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := bootstrap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	sqlDB, gormDB, err := initDB(cfg.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	app, err := newApplication(cfg, sqlDB, gormDB, lg)
	if err != nil {
		lg.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	var dispatcher *notification.Dispatcher
	if app.notificationsReady() {
		var notifier *notification.Notifier
		notifier, dispatcher = app.newNotifier(false)
		app.Bus.Subscribe(events.EventTypeAttendanceCheckedIn, notifier.HandleCheckedIn)
	}

	spec, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath)
	if err != nil {
		lg.Warn("openapi document unavailable, docs routes disabled", "path", cfg.Server.OpenAPIPath, "error", err)
	}

	router := chi.NewRouter()
	base := transport.NewBaseHandler(lg)
	rest.RegisterAllRoutes(router, cfg.Server.AllowedOrigins, rest.Handlers{
		Health:     rest.NewHealthHandler(app.SQL, cfg.Attendance.Timezone),
		Auth:       auth.NewHandler(base, app.Auth),
		Roles:      auth.NewRoleAuthorization(base),
		User:       user.NewHandler(base, app.Users),
		Attendance: attendance.NewHandler(base, app.Attendance),
		Report:     report.NewHandler(base, app.Reports),
		Dashboard:  dashboard.NewHandler(base, app.Dashboard),
		Spec:       spec,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr, "timezone", cfg.Attendance.Timezone)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed to start", "error", err)
		}
	}

	// in-flight event handlers may still enqueue mail
	app.Bus.Wait()
	if dispatcher != nil {
		dispatcher.Shutdown()
	}

	lg.Info("server stopped")
}
