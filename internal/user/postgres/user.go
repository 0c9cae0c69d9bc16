package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	userDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-tracker/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User, prefix string) (*user.User, error) {
	model := user.ToDataModel(u)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSequenceValue(tx, prefix)
		if err != nil {
			return err
		}

		now := time.Now()
		model.EmployeeID = user.FormatEmployeeID(prefix, next)
		model.CreatedAt = now
		model.UpdatedAt = now

		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return internal.ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(model), nil
}

// nextSequenceValue bumps the per-prefix counter under a row lock so concurrent
// registrations never share a suffix.
func nextSequenceValue(tx *gorm.DB, prefix string) (int, error) {
	seed := userDatamodel.EmployeeIDSequence{Prefix: prefix, LastValue: 0, UpdatedAt: time.Now()}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("seed employee id sequence: %w", err)
	}

	var seq userDatamodel.EmployeeIDSequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).
		First(&seq).Error; err != nil {
		return 0, fmt.Errorf("lock employee id sequence: %w", err)
	}

	seq.LastValue++
	err := tx.Model(&userDatamodel.EmployeeIDSequence{}).
		Where("prefix = ?", prefix).
		Updates(map[string]interface{}{
			"last_value": seq.LastValue,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return 0, fmt.Errorf("advance employee id sequence: %w", err)
	}
	return seq.LastValue, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]*user.User, error) {
	var rows []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return user.FromDataModelSlice(rows), nil
}

func (r *UserRepository) UpdateNotifications(ctx context.Context, id int64, enabled bool) error {
	return r.update(ctx, id, map[string]interface{}{"notifications_enabled": enabled})
}

// ClaimDailyEmail stamps last_email_sent only when nothing went out since dayStart, so
// the API and worker processes agree on a single sender per day.
func (r *UserRepository) ClaimDailyEmail(ctx context.Context, id int64, at, dayStart time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ? AND (last_email_sent IS NULL OR last_email_sent < ?)", id, dayStart).
		Updates(map[string]interface{}{"last_email_sent": at, "updated_at": time.Now()})
	if result.Error != nil {
		return false, fmt.Errorf("claim daily email: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *UserRepository) MarkWeeklySummarySent(ctx context.Context, id int64, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"weekly_summary_sent": at})
}

func (r *UserRepository) update(ctx context.Context, id int64, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
