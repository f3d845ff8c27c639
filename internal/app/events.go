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

// EventService manages calendar events and pushes change notifications
// to the owner's live sessions.
type EventService struct {
	events   domain.EventRepository
	notifier domain.Notifier
}

func NewEventService(events domain.EventRepository, notifier domain.Notifier) *EventService {
	return &EventService{events: events, notifier: notifier}
}

func validateEvent(event *domain.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return apperrors.ValidationError("title is required")
	}
	if !event.EndTime.After(event.StartTime) {
		return apperrors.ValidationError("end_time must be after start_time")
	}
	return nil
}

// checkOverlap rejects events that intersect an existing one for the
// same user. All-day events are exempt, they share the day with timed
// entries.
func (s *EventService) checkOverlap(ctx context.Context, event *domain.Event, excludeID uuid.UUID) error {
	if event.IsAllDay {
		return nil
	}
	count, err := s.events.CountOverlapping(ctx, event.UserID, event.StartTime, event.EndTime, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ConflictError("event overlaps an existing event").
			WithContext("start_time", event.StartTime.Format(time.RFC3339)).
			WithContext("end_time", event.EndTime.Format(time.RFC3339))
	}
	return nil
}

func (s *EventService) Create(ctx context.Context, event *domain.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	if err := s.checkOverlap(ctx, event, uuid.Nil); err != nil {
		return err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return err
	}

	s.notifier.NotifyUser(event.UserID, domain.NotifyEventCreated, eventPayload(event))
	return nil
}

func (s *EventService) Get(ctx context.Context, userID, eventID uuid.UUID) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return nil, apperrors.NotFoundError("event not found")
	}
	if err != nil {
		return nil, err
	}
	if event.UserID != userID {
		return nil, apperrors.ForbiddenError("event belongs to another user")
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Event, error) {
	return s.events.ListByUser(ctx, userID, from, to)
}

func (s *EventService) Update(ctx context.Context, userID uuid.UUID, event *domain.Event) error {
	current, err := s.Get(ctx, userID, event.ID)
	if err != nil {
		return err
	}
	event.UserID = current.UserID

	if err := validateEvent(event); err != nil {
		return err
	}
	if err := s.checkOverlap(ctx, event, event.ID); err != nil {
		return err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return err
	}

	s.notifier.NotifyUser(userID, domain.NotifyEventUpdated, eventPayload(event))
	return nil
}

func (s *EventService) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, eventID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return err
	}

	s.notifier.NotifyUser(userID, domain.NotifyEventDeleted, map[string]any{
		"event_id": eventID.String(),
	})
	return nil
}

func eventPayload(event *domain.Event) map[string]any {
	payload := map[string]any{
		"event_id":   event.ID.String(),
		"title":      event.Title,
		"start_time": event.StartTime.Format(time.RFC3339),
		"end_time":   event.EndTime.Format(time.RFC3339),
		"is_all_day": event.IsAllDay,
	}
	if event.Category != nil {
		payload["category"] = *event.Category
	}
	return payload
}
