package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/attendance-tracker/internal/i18n"
	"github.com/frahmantamala/attendance-tracker/internal/report"
)

const (
	KindLateArrival        = "late_arrival"
	KindEarlyCheckout      = "early_checkout"
	KindWeeklySummary      = "weekly_summary"
	KindConsecutiveAbsence = "alert.consecutive_absence"
	KindLowPunctuality     = "alert.low_punctuality"
	KindMultipleLate       = "alert.multiple_late"
)

// compose renders the subject and body for kind from the locale bundle.
func compose(ctx context.Context, to, kind string, data map[string]any) Message {
	return Message{
		To:      to,
		Kind:    kind,
		Subject: i18n.T(ctx, "email."+kind+".subject", data),
		Body:    i18n.T(ctx, "email."+kind+".body", data),
	}
}

func employeeLines(employees []*report.Employee) string {
	lines := make([]string, 0, len(employees))
	for _, e := range employees {
		lines = append(lines, fmt.Sprintf("- %s (%s)", e.Name, e.EmployeeID))
	}
	return strings.Join(lines, "\n")
}

func punctualityLines(items []report.Punctuality) string {
	lines := make([]string, 0, len(items))
	for _, p := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s): %.1f%%", p.Employee.Name, p.Employee.EmployeeID, p.Score))
	}
	return strings.Join(lines, "\n")
}

func lateLines(rows []*report.Row, layout func(*report.Row) string) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("- %s (%s) at %s", r.Name, r.EmployeeID, layout(r)))
	}
	return strings.Join(lines, "\n")
}
