package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/auth"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = 1 * time.Hour
)

// UserService handles registration, login, profile management and
// password resets.
type UserService struct {
	users  domain.UserRepository
	tokens *auth.TokenManager
	clock  clockwork.Clock
}

func NewUserService(users domain.UserRepository, tokens *auth.TokenManager, clock clockwork.Clock) *UserService {
	return &UserService{users: users, tokens: tokens, clock: clock}
}

func validateCredentials(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return apperrors.ValidationError("username is required")
	}
	if !strings.Contains(email, "@") {
		return apperrors.ValidationError("email is invalid")
	}
	if len(password) < minPasswordLength {
		return apperrors.ValidationError("password must be at least 8 characters")
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if err := validateCredentials(username, email, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, username, email, hash)
	if errors.Is(err, domain.ErrUserExists) {
		return nil, apperrors.ConflictError("username or email already taken")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed access token.
// Unknown identifier and wrong password are indistinguishable to the
// caller so the response does not leak which accounts exist.
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, apperrors.UnauthorizedError("invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}

	if auth.VerifyPassword(user.PasswordHash, password) != nil {
		return "", nil, apperrors.UnauthorizedError("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperrors.InternalError("failed to issue token", err)
	}
	return token, user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperrors.NotFoundError("user not found")
	}
	return user, err
}

// UpdateProfile changes the username and/or email. Empty fields keep
// their current values.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, username, email string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperrors.NotFoundError("user not found")
	}
	if err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		if !strings.Contains(email, "@") {
			return nil, apperrors.ValidationError("email is invalid")
		}
		user.Email = email
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, apperrors.ConflictError("username or email already taken")
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset stores a single-use reset token for the account
// and returns it. Callers decide how the token reaches the user.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", apperrors.NotFoundError("user not found")
	}
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	expiresAt := s.clock.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.ValidationError("password must be at least 8 characters")
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return apperrors.ValidationError("invalid or expired reset token")
	}
	if err != nil {
		return err
	}

	if user.ResetExpiresAt == nil || s.clock.Now().After(*user.ResetExpiresAt) {
		return apperrors.ValidationError("invalid or expired reset token")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError("failed to hash password", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}
