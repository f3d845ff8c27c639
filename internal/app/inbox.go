package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

// InboxService manages quick-capture inbox items and their promotion
// into calendar events.
type InboxService struct {
	inbox    domain.InboxRepository
	events   *EventService
	notifier domain.Notifier
}

func NewInboxService(inbox domain.InboxRepository, events *EventService, notifier domain.Notifier) *InboxService {
	return &InboxService{inbox: inbox, events: events, notifier: notifier}
}

func validCategory(category string) bool {
	switch category {
	case domain.CategoryTodo, domain.CategoryIdea, domain.CategoryNote:
		return true
	}
	return false
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusPending, domain.StatusScheduled, domain.StatusArchived, domain.StatusDone:
		return true
	}
	return false
}

func validateInboxItem(item *domain.InboxItem) error {
	if strings.TrimSpace(item.Content) == "" {
		return apperrors.ValidationError("content is required")
	}
	if !validCategory(item.Category) {
		return apperrors.ValidationError("category must be one of TODO, IDEA, NOTE")
	}
	if !validStatus(item.Status) {
		return apperrors.ValidationError("status must be one of PENDING, SCHEDULED, ARCHIVED, DONE")
	}
	if item.Priority < domain.PriorityMin || item.Priority > domain.PriorityMax {
		return apperrors.ValidationError("priority must be between 1 and 5")
	}
	return nil
}

// Create stores a new inbox item. Zero-valued category, status and
// priority fall back to NOTE, PENDING and the default priority.
func (s *InboxService) Create(ctx context.Context, item *domain.InboxItem) error {
	if item.Category == "" {
		item.Category = domain.CategoryNote
	}
	if item.Status == "" {
		item.Status = domain.StatusPending
	}
	if item.Priority == 0 {
		item.Priority = domain.PriorityDefault
	}
	if err := validateInboxItem(item); err != nil {
		return err
	}
	if err := s.inbox.Create(ctx, item); err != nil {
		return err
	}

	s.notifier.NotifyUser(item.UserID, domain.NotifyInboxItemCreated, inboxPayload(item))
	return nil
}

func (s *InboxService) Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.InboxItem, error) {
	item, err := s.inbox.GetByID(ctx, itemID)
	if errors.Is(err, domain.ErrItemNotFound) {
		return nil, apperrors.NotFoundError("inbox item not found")
	}
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, apperrors.ForbiddenError("inbox item belongs to another user")
	}
	return item, nil
}

func (s *InboxService) List(ctx context.Context, userID uuid.UUID, filter domain.InboxFilter) ([]*domain.InboxItem, error) {
	if filter.Category != nil && !validCategory(*filter.Category) {
		return nil, apperrors.ValidationError("category must be one of TODO, IDEA, NOTE")
	}
	if filter.Status != nil && !validStatus(*filter.Status) {
		return nil, apperrors.ValidationError("status must be one of PENDING, SCHEDULED, ARCHIVED, DONE")
	}
	return s.inbox.ListByUser(ctx, userID, filter)
}

func (s *InboxService) Update(ctx context.Context, userID uuid.UUID, item *domain.InboxItem) error {
	current, err := s.Get(ctx, userID, item.ID)
	if err != nil {
		return err
	}
	item.UserID = current.UserID

	if err := validateInboxItem(item); err != nil {
		return err
	}
	if err := s.inbox.Update(ctx, item); err != nil {
		return err
	}

	s.notifier.NotifyUser(userID, domain.NotifyInboxItemUpdated, inboxPayload(item))
	return nil
}

func (s *InboxService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.inbox.Delete(ctx, itemID); err != nil {
		return err
	}

	s.notifier.NotifyUser(userID, domain.NotifyInboxItemDeleted, map[string]any{
		"item_id": itemID.String(),
	})
	return nil
}

// ConvertToEvent schedules an inbox item as a calendar event in the
// given time window and marks the item SCHEDULED. The event inherits
// the item's content as its title.
func (s *InboxService) ConvertToEvent(ctx context.Context, userID, itemID uuid.UUID, start, end time.Time) (*domain.Event, error) {
	item, err := s.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		UserID:    userID,
		Title:     item.Content,
		StartTime: start,
		EndTime:   end,
		Metadata:  map[string]any{"inbox_item_id": item.ID.String()},
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	item.Status = domain.StatusScheduled
	if err := s.inbox.Update(ctx, item); err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(userID, domain.NotifyInboxItemUpdated, inboxPayload(item))
	return event, nil
}

func inboxPayload(item *domain.InboxItem) map[string]any {
	return map[string]any{
		"item_id":  item.ID.String(),
		"content":  item.Content,
		"category": item.Category,
		"priority": item.Priority,
		"status":   item.Status,
	}
}
