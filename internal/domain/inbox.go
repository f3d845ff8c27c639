package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Inbox item categories.
const (
	CategoryTodo = "TODO"
	CategoryIdea = "IDEA"
	CategoryNote = "NOTE"
)

// Inbox item statuses.
const (
	StatusPending   = "PENDING"
	StatusScheduled = "SCHEDULED"
	StatusArchived  = "ARCHIVED"
	StatusDone      = "DONE"
)

// Priorities range from 1 (highest) to 5 (lowest).
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

type InboxItem struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Content   string    `db:"content"`
	Category  string    `db:"category"`
	Priority  int       `db:"priority"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// InboxFilter narrows ListByUser results. Nil fields match everything.
type InboxFilter struct {
	Category *string
	Status   *string
	Priority *int
}

type InboxRepository interface {
	Create(ctx context.Context, item *InboxItem) error
	GetByID(ctx context.Context, itemID uuid.UUID) (*InboxItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter InboxFilter) ([]*InboxItem, error)
	Update(ctx context.Context, item *InboxItem) error
	Delete(ctx context.Context, itemID uuid.UUID) error
}
