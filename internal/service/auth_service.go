package service

import (
	"context"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type authService struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(userRepo ports.UserRepository, hashSvc ports.HashService, tokenSvc ports.TokenService, log zerolog.Logger) ports.AuthService {
	return &authService{userRepo: userRepo, hashSvc: hashSvc, tokenSvc: tokenSvc, log: log}
}

// Register creates a user account. Role defaults to RoleUser when unset.
func (s *authService) Register(ctx context.Context, req ports.RegisterUserRequest) (*domain.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, apperror.Validation("name, email, and password are required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("an account with this email already exists")
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(role)).Msg("user registered")
	return user, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, apperror.Internal(err)
	}
	if user == nil || !s.hashSvc.Verify(password, user.PasswordHash) {
		return "", time.Time{}, apperror.Unauthenticated("invalid credentials")
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return "", time.Time{}, apperror.Internal(err)
	}
	return token, expiresAt, nil
}

// ChangePassword verifies the old password before setting the new one.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil || !s.hashSvc.Verify(oldPassword, user.PasswordHash) {
		return apperror.Unauthenticated("invalid credentials")
	}
	if len(newPassword) < 8 {
		return apperror.Validation("password must be at least 8 characters")
	}

	newHash, err := s.hashSvc.Hash(newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
