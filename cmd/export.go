package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/attendance-tracker/internal/report"
	"github.com/frahmantamala/attendance-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records to CSV or XLSX",
	Long: `Write employee attendance records for a date range to a file, or to stdout when --out
is "-". Rows are ordered by date, newest first, then by employee name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), exportOpts)
	},
}

type exportOptions struct {
	From   string
	To     string
	UserID string
	Status string
	Format string
	Out    string
}

var exportOpts exportOptions

func runExport(ctx context.Context, opts exportOptions) error {
	if opts.Format != report.FormatCSV && opts.Format != report.FormatXLSX {
		return fmt.Errorf("unsupported export format %q", opts.Format)
	}

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	sqlDB, gormDB, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	app, err := newApplication(cfg, sqlDB, gormDB, lg)
	if err != nil {
		return err
	}
	defer app.Close()

	filter, appErr := report.ParseFilter(opts.From, opts.To, opts.UserID, opts.Status, app.Reports.Today())
	if appErr != nil {
		return appErr
	}

	var w io.Writer = os.Stdout
	if opts.Out != "-" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.Out, err)
		}
		defer f.Close()
		w = f
	}

	buf := bufio.NewWriter(w)
	n, err := app.Reports.Export(ctx, buf, opts.Format, filter)
	if err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	lg.Info("export written",
		"rows", n,
		"format", opts.Format,
		"from", filter.Range.From.String(),
		"to", filter.Range.To.String(),
		"out", opts.Out)
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportOpts.From, "from", "", "first day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportOpts.To, "to", "", "last day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportOpts.UserID, "user", "", "only this user id")
	exportCmd.Flags().StringVar(&exportOpts.Status, "status", "", "only this status (present, absent, late, half-day)")
	exportCmd.Flags().StringVar(&exportOpts.Format, "format", report.FormatCSV, "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOpts.Out, "out", "o", "-", "output file, - for stdout")
	_ = exportCmd.MarkFlagRequired("from")
	_ = exportCmd.MarkFlagRequired("to")
}
