package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	// Create allocates the next employee ID for prefix and inserts u in one transaction.
	Create(ctx context.Context, u *User, prefix string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role string) ([]*User, error)
	UpdateNotifications(ctx context.Context, id int64, enabled bool) error
	ClaimDailyEmail(ctx context.Context, id int64, at, dayStart time.Time) (bool, error)
	MarkWeeklySummarySent(ctx context.Context, id int64, at time.Time) error
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if _, err := s.repo.GetByEmail(ctx, dto.Email); err == nil {
		return nil, internal.ErrEmailTaken
	} else if !errors.Is(err, internal.ErrUserNotFound) {
		s.logger.Error("failed to check existing email", "error", err)
		return nil, internal.NewInternalError("Failed to register user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to register user", err)
	}

	u := &User{
		Name:                 dto.Name,
		Email:                dto.Email,
		PasswordHash:         string(hash),
		Role:                 dto.Role,
		Department:           dto.Department,
		NotificationsEnabled: true,
	}

	created, err := s.repo.Create(ctx, u, PrefixForRole(dto.Role))
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("Failed to register user", err)
	}

	s.logger.Info("user registered",
		"user_id", created.ID,
		"employee_id", created.EmployeeID,
		"role", created.Role)
	return created, nil
}

// Authenticate checks the password and returns the user. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("Failed to authenticate", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("Failed to load user", err)
	}
	return u, nil
}

func (s *Service) SetNotifications(ctx context.Context, id int64, enabled bool) (*User, error) {
	if err := s.repo.UpdateNotifications(ctx, id, enabled); err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("Failed to update preferences", err)
	}
	return s.GetByID(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context) ([]*User, error) {
	return s.repo.ListByRole(ctx, internal.RoleEmployee)
}

func (s *Service) ListManagers(ctx context.Context) ([]*User, error) {
	return s.repo.ListByRole(ctx, internal.RoleManager)
}

// ClaimDailyEmail reserves the user's one per-day notification. The day is taken from
// now's location. It reports false when an email already went out that day.
func (s *Service) ClaimDailyEmail(ctx context.Context, id int64, now time.Time) (bool, error) {
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	claimed, err := s.repo.ClaimDailyEmail(ctx, id, now.UTC(), dayStart.UTC())
	if err != nil {
		s.logger.Error("failed to claim daily email", "error", err, "user_id", id)
		return false, internal.NewInternalError("Failed to update notification state", err)
	}
	return claimed, nil
}

func (s *Service) MarkWeeklySummarySent(ctx context.Context, id int64, at time.Time) error {
	return s.repo.MarkWeeklySummarySent(ctx, id, at)
}
