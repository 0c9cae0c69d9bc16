package report_test

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Exporter", func() {
	var (
		exporter *report.Exporter
		rows     []*report.Row
	)

	BeforeEach(func() {
		wib := time.FixedZone("WIB", 7*60*60)
		exporter = report.NewExporter(wib, "")

		full := row(1, 1, "2024-03-15", attendance.StatusPresent)
		full.EmployeeID = "EMP001"
		full.Name = `Ana "Nana" Putri`
		full.Email = "ana@example.com"
		full.Department = dept("Sales, East")
		full.CheckInTime = stamp("2024-03-15", 2, 0)
		full.CheckOutTime = stamp("2024-03-15", 11, 30)
		full.TotalHours = hours(9.5)

		open := row(2, 2, "2024-03-15", attendance.StatusLate)
		open.EmployeeID = "EMP002"
		open.Name = "Budi"
		open.Email = "budi@example.com"
		open.CheckInTime = stamp("2024-03-15", 3, 45)

		rows = []*report.Row{full, open}
	})

	It("writes the header and quotes fields so they parse back unchanged", func() {
		var buf bytes.Buffer
		Expect(exporter.WriteCSV(&buf, rows)).To(Succeed())

		records, err := csv.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0]).To(Equal(report.ExportHeader))

		Expect(records[1]).To(Equal([]string{
			"2024-03-15", "EMP001", `Ana "Nana" Putri`, "ana@example.com", "Sales, East",
			"3/15/2024, 9:00:00 AM", "3/15/2024, 6:30:00 PM", "present", "9.50",
		}))
	})

	It("renders missing values as N/A and missing hours as 0", func() {
		cells := exporter.Cells(rows[1])
		Expect(cells[4]).To(Equal(report.NoDepartment))
		Expect(cells[5]).To(Equal("3/15/2024, 10:45:00 AM"))
		Expect(cells[6]).To(Equal("N/A"))
		Expect(cells[7]).To(Equal("late"))
		Expect(cells[8]).To(Equal("0"))
	})

	It("writes only the header for an empty export", func() {
		var buf bytes.Buffer
		Expect(exporter.WriteCSV(&buf, nil)).To(Succeed())
		records, err := csv.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
	})

	It("writes a workbook with the same columns", func() {
		var buf bytes.Buffer
		Expect(exporter.Write(&buf, report.FormatXLSX, rows)).To(Succeed())

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		sheetRows, err := f.GetRows("Attendance")
		Expect(err).NotTo(HaveOccurred())
		Expect(sheetRows).To(HaveLen(3))
		Expect(sheetRows[0]).To(Equal(report.ExportHeader))
		Expect(sheetRows[1][2]).To(Equal(`Ana "Nana" Putri`))
		Expect(sheetRows[1][4]).To(Equal("Sales, East"))
		Expect(sheetRows[2][6]).To(Equal("N/A"))
	})

	It("reports content types per format", func() {
		Expect(exporter.ContentType(report.FormatCSV)).To(Equal("text/csv"))
		Expect(exporter.ContentType(report.FormatXLSX)).To(ContainSubstring("spreadsheetml"))
	})
})
