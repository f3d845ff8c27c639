package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

// Reminder types and their default preparation lead times.
const (
	ReminderTypeGeneral  = "general"
	ReminderTypeMeeting  = "meeting"
	ReminderTypeDeepWork = "deep_work"
	ReminderTypeTravel   = "travel"
)

// DefaultLeadTimeMinutes returns how many minutes before an event a
// reminder of the given type should fire.
func DefaultLeadTimeMinutes(reminderType string) int {
	switch reminderType {
	case ReminderTypeMeeting:
		return 10
	case ReminderTypeDeepWork:
		return 15
	case ReminderTypeTravel:
		return 30
	default:
		return 5
	}
}

// ReminderService manages reminder settings. Reminders attached to an
// event derive their fire time from the event start minus the lead
// time; standalone reminders carry an explicit fire time.
type ReminderService struct {
	reminders domain.ReminderRepository
	events    domain.EventRepository
}

func NewReminderService(reminders domain.ReminderRepository, events domain.EventRepository) *ReminderService {
	return &ReminderService{reminders: reminders, events: events}
}

func (s *ReminderService) resolveTiming(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.ReminderType == "" {
		reminder.ReminderType = ReminderTypeGeneral
	}

	if reminder.EventID == nil {
		if reminder.ReminderTime.IsZero() {
			return apperrors.ValidationError("reminder_time is required for standalone reminders")
		}
		return nil
	}

	event, err := s.events.GetByID(ctx, *reminder.EventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return apperrors.NotFoundError("event not found")
	}
	if err != nil {
		return err
	}
	if event.UserID != reminder.UserID {
		return apperrors.ForbiddenError("event belongs to another user")
	}

	if reminder.LeadTimeMinutes == 0 {
		reminder.LeadTimeMinutes = DefaultLeadTimeMinutes(reminder.ReminderType)
	}
	if reminder.ReminderTime.IsZero() {
		reminder.ReminderTime = event.StartTime.Add(-time.Duration(reminder.LeadTimeMinutes) * time.Minute)
	}
	return nil
}

func (s *ReminderService) Create(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.LeadTimeMinutes < 0 {
		return apperrors.ValidationError("lead_time_minutes must not be negative")
	}
	if err := s.resolveTiming(ctx, reminder); err != nil {
		return err
	}
	reminder.IsActive = true
	return s.reminders.Create(ctx, reminder)
}

func (s *ReminderService) Get(ctx context.Context, userID, reminderID uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.reminders.GetByID(ctx, reminderID)
	if errors.Is(err, domain.ErrReminderNotFound) {
		return nil, apperrors.NotFoundError("reminder not found")
	}
	if err != nil {
		return nil, err
	}
	if reminder.UserID != userID {
		return nil, apperrors.ForbiddenError("reminder belongs to another user")
	}
	return reminder, nil
}

func (s *ReminderService) List(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Reminder, error) {
	return s.reminders.ListByUser(ctx, userID, from, to)
}

func (s *ReminderService) Update(ctx context.Context, userID uuid.UUID, reminder *domain.Reminder) error {
	current, err := s.Get(ctx, userID, reminder.ID)
	if err != nil {
		return err
	}
	reminder.UserID = current.UserID

	if reminder.LeadTimeMinutes < 0 {
		return apperrors.ValidationError("lead_time_minutes must not be negative")
	}
	if err := s.resolveTiming(ctx, reminder); err != nil {
		return err
	}
	return s.reminders.Update(ctx, reminder)
}

func (s *ReminderService) Delete(ctx context.Context, userID, reminderID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, reminderID); err != nil {
		return err
	}
	return s.reminders.Delete(ctx, reminderID)
}
