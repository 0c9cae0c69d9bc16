package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/report"
)

const rowColumns = `
	a.id, a.user_id, a.date, a.check_in_time, a.check_out_time, a.status, a.total_hours,
	u.employee_id, u.name, u.email, u.department`

// ReportRepository serves the read side with plain joins through sqlx. Placeholders are
// written as ? and rebound for the driver in use.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) ListRows(ctx context.Context, filter report.Filter) ([]*report.Row, error) {
	var (
		where = []string{"a.date >= ?", "a.date <= ?"}
		args  = []interface{}{filter.Range.From, filter.Range.To}
	)
	if filter.EmployeesOnly {
		where = append(where, "u.role = ?")
		args = append(args, internal.RoleEmployee)
	}
	if filter.UserID != nil {
		where = append(where, "a.user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		where = append(where, "a.status = ?")
		args = append(args, string(*filter.Status))
	}

	query := fmt.Sprintf(`SELECT %s
	FROM attendance a
	JOIN users u ON u.id = a.user_id
	WHERE %s
	ORDER BY a.date DESC, u.name ASC`, rowColumns, strings.Join(where, " AND "))

	rows := make([]*report.Row, 0)
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list attendance rows: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) ListEmployees(ctx context.Context) ([]*report.Employee, error) {
	query := r.db.Rebind(`SELECT id, employee_id, name, email, department
	FROM users
	WHERE role = ?
	ORDER BY name ASC`)

	employees := make([]*report.Employee, 0)
	if err := r.db.SelectContext(ctx, &employees, query, internal.RoleEmployee); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}
