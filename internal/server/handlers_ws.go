package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Token auth happens after the upgrade
	},
}

// handleWebSocket upgrades the request and hands the connection to the
// session handler. Authentication happens after the upgrade so rejects
// reach the client as a close frame instead of an opaque handshake
// failure.
func (s *Server) handleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}

	// Blocks until the connection closes.
	s.sessions.Run(ws, c.QueryParam("token"))
	return nil
}
