package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	attendanceDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/attendance"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, userID int64, day calendar.Date) (*attendance.Record, error) {
	var row attendanceDatamodel.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return attendance.FromDataModel(&row), nil
}

func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64, rng calendar.Range) ([]*attendance.Record, error) {
	var rows []*attendanceDatamodel.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, rng.From, rng.To).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return attendance.FromDataModelSlice(rows), nil
}

func (r *AttendanceRepository) UpsertForDay(ctx context.Context, userID int64, day calendar.Date, mutate attendance.Mutator) (*attendance.Record, error) {
	var result *attendance.Record

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current *attendance.Record

		var row attendanceDatamodel.Attendance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND date = ?", userID, day).
			First(&row).Error
		switch {
		case err == nil:
			current = attendance.FromDataModel(&row)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("lock attendance row: %w", err)
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}

		model := attendanceDatamodel.Attendance{}
		if next != nil {
			model = *attendance.ToDataModel(next)
		}
		model.UserID = userID
		model.Date = day
		model.UpdatedAt = time.Now()

		if current == nil {
			model.CreatedAt = model.UpdatedAt
			if err := tx.Create(&model).Error; err != nil {
				if isUniqueViolation(err) {
					return attendance.ErrDuplicateDay
				}
				return fmt.Errorf("insert attendance: %w", err)
			}
		} else {
			model.ID = current.ID
			model.CreatedAt = current.CreatedAt
			if err := tx.Save(&model).Error; err != nil {
				return fmt.Errorf("update attendance: %w", err)
			}
		}

		result = attendance.FromDataModel(&model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
