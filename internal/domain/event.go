package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID      `db:"id"`
	UserID      uuid.UUID      `db:"user_id"`
	Title       string         `db:"title"`
	Description *string        `db:"description"`
	StartTime   time.Time      `db:"start_time"`
	EndTime     time.Time      `db:"end_time"`
	Category    *string        `db:"category"`
	IsAllDay    bool           `db:"is_all_day"`
	IsRecurring bool           `db:"is_recurring"`
	Metadata    map[string]any `db:"metadata"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*Event, error)
	ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, eventID uuid.UUID) error
	// CountOverlapping counts events for the user whose [start, end) window
	// intersects the given one, excluding excludeID (uuid.Nil to exclude none).
	CountOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int, error)
}
