package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/user"
)

type UserService interface {
	Register(ctx context.Context, dto user.RegisterDTO) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type ServiceAPI interface {
	Register(ctx context.Context, dto user.RegisterDTO) (*AuthResponse, error)
	Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	Me(ctx context.Context, userID int64) (*user.User, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type Service struct {
	users          UserService
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(users UserService, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

func (s *Service) Register(ctx context.Context, dto user.RegisterDTO) (*AuthResponse, error) {
	u, err := s.users.Register(ctx, dto)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	u, err := s.users.Authenticate(ctx, dto.Email, dto.Password)
	if err != nil {
		s.logger.Warn("login failed", "email", dto.Email, "error", err)
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return s.issue(u)
}

func (s *Service) Me(ctx context.Context, userID int64) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(u.AuthUser())
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("Failed to issue token", err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
