package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
)

const bearerPrefix = "Bearer "

// requireAuth verifies the Authorization header and stores the user ID
// in the request context for handlers.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if len(header) <= len(bearerPrefix) || header[:len(bearerPrefix)] != bearerPrefix {
			return apperrors.UnauthorizedError("missing bearer token")
		}

		userID, err := s.verifier.Verify(header[len(bearerPrefix):])
		if err != nil {
			return apperrors.UnauthorizedError("invalid or expired token")
		}

		c.Set("userID", userID)
		return next(c)
	}
}

// currentUser returns the authenticated user ID set by requireAuth.
func currentUser(c echo.Context) uuid.UUID {
	userID, _ := c.Get("userID").(uuid.UUID)
	return userID
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid id")
	}
	return id, nil
}
