package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

type eventRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Category    *string        `json:"category"`
	IsAllDay    bool           `json:"is_all_day"`
	IsRecurring bool           `json:"is_recurring"`
	Metadata    map[string]any `json:"metadata"`
}

type eventResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Category    *string        `json:"category,omitempty"`
	IsAllDay    bool           `json:"is_all_day"`
	IsRecurring bool           `json:"is_recurring"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toEventResponse(event *domain.Event) eventResponse {
	return eventResponse{
		ID:          event.ID.String(),
		Title:       event.Title,
		Description: event.Description,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Category:    event.Category,
		IsAllDay:    event.IsAllDay,
		IsRecurring: event.IsRecurring,
		Metadata:    event.Metadata,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func (s *Server) handleCreateEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	event := &domain.Event{
		UserID:      currentUser(c),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Category:    req.Category,
		IsAllDay:    req.IsAllDay,
		IsRecurring: req.IsRecurring,
		Metadata:    req.Metadata,
	}
	if err := s.services.Events.Create(c.Request().Context(), event); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(event))
}

// handleListEvents supports optional from/to RFC3339 query bounds.
func (s *Server) handleListEvents(c echo.Context) error {
	from, err := timeQueryParam(c, "from")
	if err != nil {
		return err
	}
	to, err := timeQueryParam(c, "to")
	if err != nil {
		return err
	}

	events, err := s.services.Events.List(c.Request().Context(), currentUser(c), from, to)
	if err != nil {
		return err
	}

	responses := make([]eventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, toEventResponse(event))
	}
	return c.JSON(http.StatusOK, responses)
}

func (s *Server) handleGetEvent(c echo.Context) error {
	eventID, err := pathID(c)
	if err != nil {
		return err
	}

	event, err := s.services.Events.Get(c.Request().Context(), currentUser(c), eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}

func (s *Server) handleUpdateEvent(c echo.Context) error {
	eventID, err := pathID(c)
	if err != nil {
		return err
	}

	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	event := &domain.Event{
		ID:          eventID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Category:    req.Category,
		IsAllDay:    req.IsAllDay,
		IsRecurring: req.IsRecurring,
		Metadata:    req.Metadata,
	}
	if err := s.services.Events.Update(c.Request().Context(), currentUser(c), event); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(event))
}

func (s *Server) handleDeleteEvent(c echo.Context) error {
	eventID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.services.Events.Delete(c.Request().Context(), currentUser(c), eventID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func timeQueryParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.ValidationError(name + " must be RFC3339")
	}
	return &parsed, nil
}
