package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/notification"
	"github.com/frahmantamala/attendance-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the notification scheduler.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start the notification scheduler",
	Long: `Run the cron schedules that mail late-arrival, early-checkout, weekly summary and
manager alert emails. --run executes a single job immediately and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startNotificationWorker(cmd.Context())
	},
}

var (
	runJob     string
	dryRun     bool
	maxWorkers int
	queueSize  int
)

func startNotificationWorker(ctx context.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	if maxWorkers > 0 {
		cfg.Notification.MaxWorkers = maxWorkers
	}
	if queueSize > 0 {
		cfg.Notification.JobQueueSize = queueSize
	}

	sqlDB, gormDB, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	app, err := newApplication(cfg, sqlDB, gormDB, lg)
	if err != nil {
		return err
	}
	defer app.Close()

	if !dryRun && !app.notificationsReady() {
		return nil
	}

	loc, _ := cfg.Attendance.Location()
	notifier, dispatcher := app.newNotifier(dryRun)
	defer dispatcher.Shutdown()

	scheduler := notification.NewScheduler(notifier, cfg.Notification.Schedules, loc, lg)

	if runJob != "" {
		if err := scheduler.RunOnce(ctx, runJob); err != nil {
			return fmt.Errorf("%w (jobs: %s)", err, strings.Join(scheduler.JobNames(), ", "))
		}
		dispatcher.Flush()
		return nil
	}

	if err := scheduler.Register(); err != nil {
		return err
	}

	lg.Info("starting notification worker",
		"max_workers", cfg.Notification.MaxWorkers,
		"job_queue_size", cfg.Notification.JobQueueSize,
		"timezone", loc.String(),
		"dry_run", dryRun)
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("notification worker is running. Press Ctrl+C to stop.")
	sig := <-sigChan
	lg.Info("received signal, shutting down notification worker", "signal", sig)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	return nil
}

func init() {
	notificationWorkerCmd.Flags().StringVar(&runJob, "run", "", "run one job now and exit (late_arrivals, early_checkouts, weekly_summaries, manager_alerts)")
	notificationWorkerCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log emails instead of sending them")
	notificationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of mail workers (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&queueSize, "job-queue-size", 0, "Mail queue buffer size (overrides config)")

	workerCmd.AddCommand(notificationWorkerCmd)
}
