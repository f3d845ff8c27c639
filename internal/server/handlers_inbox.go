package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

type inboxItemRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Status   string `json:"status"`
}

type convertRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type inboxItemResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Priority  int       `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toInboxItemResponse(item *domain.InboxItem) inboxItemResponse {
	return inboxItemResponse{
		ID:        item.ID.String(),
		Content:   item.Content,
		Category:  item.Category,
		Priority:  item.Priority,
		Status:    item.Status,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func (s *Server) handleCreateInboxItem(c echo.Context) error {
	var req inboxItemRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item := &domain.InboxItem{
		UserID:   currentUser(c),
		Content:  req.Content,
		Category: req.Category,
		Priority: req.Priority,
		Status:   req.Status,
	}
	if err := s.services.Inbox.Create(c.Request().Context(), item); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toInboxItemResponse(item))
}

// handleListInboxItems supports category, status and priority filters.
func (s *Server) handleListInboxItems(c echo.Context) error {
	var filter domain.InboxFilter
	if category := c.QueryParam("category"); category != "" {
		filter.Category = &category
	}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if raw := c.QueryParam("priority"); raw != "" {
		priority, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("priority must be an integer")
		}
		filter.Priority = &priority
	}

	items, err := s.services.Inbox.List(c.Request().Context(), currentUser(c), filter)
	if err != nil {
		return err
	}

	responses := make([]inboxItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toInboxItemResponse(item))
	}
	return c.JSON(http.StatusOK, responses)
}

func (s *Server) handleGetInboxItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}

	item, err := s.services.Inbox.Get(c.Request().Context(), currentUser(c), itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInboxItemResponse(item))
}

func (s *Server) handleUpdateInboxItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}

	var req inboxItemRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item := &domain.InboxItem{
		ID:       itemID,
		Content:  req.Content,
		Category: req.Category,
		Priority: req.Priority,
		Status:   req.Status,
	}
	if err := s.services.Inbox.Update(c.Request().Context(), currentUser(c), item); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInboxItemResponse(item))
}

func (s *Server) handleDeleteInboxItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.services.Inbox.Delete(c.Request().Context(), currentUser(c), itemID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleConvertInboxItem(c echo.Context) error {
	itemID, err := pathID(c)
	if err != nil {
		return err
	}

	var req convertRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	event, err := s.services.Inbox.ConvertToEvent(c.Request().Context(), currentUser(c), itemID, req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(event))
}
