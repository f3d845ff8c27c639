package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

type reminderRequest struct {
	EventID         *string    `json:"event_id"`
	ReminderTime    *time.Time `json:"reminder_time"`
	LeadTimeMinutes int        `json:"lead_time_minutes"`
	ReminderType    string     `json:"reminder_type"`
}

type reminderResponse struct {
	ID              string    `json:"id"`
	EventID         *string   `json:"event_id,omitempty"`
	ReminderTime    time.Time `json:"reminder_time"`
	LeadTimeMinutes int       `json:"lead_time_minutes"`
	ReminderType    string    `json:"reminder_type"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toReminderResponse(reminder *domain.Reminder) reminderResponse {
	resp := reminderResponse{
		ID:              reminder.ID.String(),
		ReminderTime:    reminder.ReminderTime,
		LeadTimeMinutes: reminder.LeadTimeMinutes,
		ReminderType:    reminder.ReminderType,
		IsActive:        reminder.IsActive,
		CreatedAt:       reminder.CreatedAt,
		UpdatedAt:       reminder.UpdatedAt,
	}
	if reminder.EventID != nil {
		eventID := reminder.EventID.String()
		resp.EventID = &eventID
	}
	return resp
}

func reminderFromRequest(req reminderRequest) (*domain.Reminder, error) {
	reminder := &domain.Reminder{
		LeadTimeMinutes: req.LeadTimeMinutes,
		ReminderType:    req.ReminderType,
	}
	if req.EventID != nil {
		eventID, err := uuid.Parse(*req.EventID)
		if err != nil {
			return nil, apperrors.ValidationError("invalid event_id")
		}
		reminder.EventID = &eventID
	}
	if req.ReminderTime != nil {
		reminder.ReminderTime = *req.ReminderTime
	}
	return reminder, nil
}

func (s *Server) handleCreateReminder(c echo.Context) error {
	var req reminderRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	reminder, err := reminderFromRequest(req)
	if err != nil {
		return err
	}
	reminder.UserID = currentUser(c)

	if err := s.services.Reminders.Create(c.Request().Context(), reminder); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReminderResponse(reminder))
}

func (s *Server) handleListReminders(c echo.Context) error {
	from, err := timeQueryParam(c, "from")
	if err != nil {
		return err
	}
	to, err := timeQueryParam(c, "to")
	if err != nil {
		return err
	}

	reminders, err := s.services.Reminders.List(c.Request().Context(), currentUser(c), from, to)
	if err != nil {
		return err
	}

	responses := make([]reminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		responses = append(responses, toReminderResponse(reminder))
	}
	return c.JSON(http.StatusOK, responses)
}

func (s *Server) handleGetReminder(c echo.Context) error {
	reminderID, err := pathID(c)
	if err != nil {
		return err
	}

	reminder, err := s.services.Reminders.Get(c.Request().Context(), currentUser(c), reminderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReminderResponse(reminder))
}

func (s *Server) handleUpdateReminder(c echo.Context) error {
	reminderID, err := pathID(c)
	if err != nil {
		return err
	}

	var req reminderRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	reminder, err := reminderFromRequest(req)
	if err != nil {
		return err
	}
	reminder.ID = reminderID
	reminder.IsActive = true

	if err := s.services.Reminders.Update(c.Request().Context(), currentUser(c), reminder); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReminderResponse(reminder))
}

func (s *Server) handleDeleteReminder(c echo.Context) error {
	reminderID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.services.Reminders.Delete(c.Request().Context(), currentUser(c), reminderID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
