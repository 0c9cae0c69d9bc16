package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	// DefaultTimeLayout matches the en-US locale timestamp, e.g. 3/15/2024, 9:05:00 AM.
	DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

	missing = "N/A"
)

var ExportHeader = []string{
	"Date", "Employee ID", "Name", "Email", "Department",
	"Check In", "Check Out", "Status", "Total Hours",
}

// Exporter renders rows as flat tables. Timestamps are shown in loc.
type Exporter struct {
	loc        *time.Location
	timeLayout string
}

func NewExporter(loc *time.Location, timeLayout string) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	if timeLayout == "" {
		timeLayout = DefaultTimeLayout
	}
	return &Exporter{loc: loc, timeLayout: timeLayout}
}

func (e *Exporter) ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Cells renders one row. Absent optional values become N/A and missing hours become 0.
func (e *Exporter) Cells(r *Row) []string {
	hours := "0"
	if r.TotalHours != nil {
		hours = strconv.FormatFloat(*r.TotalHours, 'f', 2, 64)
	}
	return []string{
		r.Date.String(),
		orMissing(r.EmployeeID),
		orMissing(r.Name),
		orMissing(r.Email),
		r.DepartmentName(),
		e.timestamp(r.CheckInTime),
		e.timestamp(r.CheckOutTime),
		orMissing(string(r.Status)),
		hours,
	}
}

func (e *Exporter) WriteCSV(w io.Writer, rows []*Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(e.Cells(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *Exporter) WriteXLSX(w io.Writer, rows []*Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range rows {
		cells := e.Cells(r)
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		if r.TotalHours != nil {
			values[len(values)-1] = *r.TotalHours
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r.ID, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func (e *Exporter) Write(w io.Writer, format string, rows []*Row) error {
	switch format {
	case FormatXLSX:
		return e.WriteXLSX(w, rows)
	default:
		return e.WriteCSV(w, rows)
	}
}

func (e *Exporter) timestamp(t *time.Time) string {
	if t == nil {
		return missing
	}
	return t.In(e.loc).Format(e.timeLayout)
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}
