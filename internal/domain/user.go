package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	// Reset token lives on the user row. Rationale:
	// - At most one outstanding reset per user, same lifecycle as the account
	// - A separate table would add a JOIN for a single nullable pair
	ResetToken     *string    `db:"password_reset_token"`
	ResetExpiresAt *time.Time `db:"password_reset_expires_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
