package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dispensary/internal/core/apperror"
	"dispensary/pkg/logger"
)

// Service handles registration and login.
type Service struct {
	repo Repository
	jwt  *JWTService
}

func NewService(repo Repository, jwt *JWTService) *Service {
	return &Service{repo: repo, jwt: jwt}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, user *User, password string) error {
	if err := user.Validate(ctx); err != nil {
		return err
	}
	if len(password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	existing, err := s.repo.GetByEmail(ctx, user.Email)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewDuplicate("user", "email", user.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}
	logger.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return nil
}

// Login verifies credentials and issues an access token.
// Failures are indistinguishable to the caller: same error for unknown
// email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", time.Time{}, apperror.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, apperror.NewUnauthorized("invalid credentials")
	}

	return s.jwt.GenerateAccessToken(user.ID.String(), user.Email, user.Role, user.IsAdmin)
}
