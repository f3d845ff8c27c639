package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Reminder struct {
	ID              uuid.UUID  `db:"id"`
	UserID          uuid.UUID  `db:"user_id"`
	EventID         *uuid.UUID `db:"event_id"`
	ReminderTime    time.Time  `db:"reminder_time"`
	LeadTimeMinutes int        `db:"lead_time_minutes"`
	ReminderType    string     `db:"reminder_type"`
	IsActive        bool       `db:"is_active"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type ReminderRepository interface {
	Create(ctx context.Context, reminder *Reminder) error
	GetByID(ctx context.Context, reminderID uuid.UUID) (*Reminder, error)
	ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*Reminder, error)
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, reminderID uuid.UUID) error
	// ListDue returns active reminders with reminder_time <= now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)
	Deactivate(ctx context.Context, reminderID uuid.UUID) error
}
