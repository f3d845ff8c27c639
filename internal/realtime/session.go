package realtime

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/metrics"
)

// CredentialVerifier resolves an opaque bearer credential to a user.
// Interface lives on the consumer side; auth.TokenManager satisfies it.
type CredentialVerifier interface {
	Verify(credential string) (uuid.UUID, error)
}

// SessionConfig carries the per-connection tunables.
type SessionConfig struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	// InboundRate and InboundBurst bound how fast a client may send frames.
	// Zero values disable the limiter.
	InboundRate  rate.Limit
	InboundBurst int
}

// SessionHandler runs the full lifecycle of websocket connections:
// authenticate, register, receive loop plus heartbeat, deregister.
type SessionHandler struct {
	registry *Registry
	verifier CredentialVerifier
	clock    clockwork.Clock
	cfg      SessionConfig
}

func NewSessionHandler(registry *Registry, verifier CredentialVerifier, clock clockwork.Clock, cfg SessionConfig) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		verifier: verifier,
		clock:    clock,
		cfg:      cfg,
	}
}

// Run drives one upgraded connection from authentication to closure. It
// blocks until the connection terminates; the caller owns nothing afterward.
func (h *SessionHandler) Run(ws *websocket.Conn, credential string) {
	userID, err := h.verifier.Verify(credential)
	if credential == "" || err != nil {
		metrics.WSAuthFailures.Inc()
		slog.Warn("Websocket authentication failed", "error", err)
		rejectHandshake(ws, h.clock)
		return
	}

	conn := NewConn(userID, ws, h.clock)
	h.registry.Add(conn)
	slog.Info("Websocket connected",
		"connection_id", conn.ID().String(),
		"user_id", userID.String(),
		"user_connections", h.registry.CountForUser(userID),
	)

	monitor := StartMonitor(conn, h.cfg.PingInterval, h.cfg.PongTimeout, h.clock)

	h.readLoop(conn)

	// Closing: the monitor is cancelled and awaited before the handle is
	// deregistered, so a probe can never fire against a closed transport.
	monitor.Stop()
	h.registry.Remove(conn)
	conn.Stop()

	slog.Info("Websocket disconnected",
		"connection_id", conn.ID().String(),
		"user_id", userID.String(),
	)
}

func (h *SessionHandler) readLoop(conn *Conn) {
	var limiter *rate.Limiter
	if h.cfg.InboundRate > 0 {
		limiter = rate.NewLimiter(h.cfg.InboundRate, h.cfg.InboundBurst)
	}

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}

		if limiter != nil && !limiter.Allow() {
			if h.reply(conn, ErrorEnvelope(DetailRateLimited)) != nil {
				return
			}
			continue
		}

		env, err := DecodeEnvelope(data)
		if err != nil {
			// A malformed frame never terminates the connection.
			metrics.WSMessagesReceived.WithLabelValues("invalid").Inc()
			if h.reply(conn, ErrorEnvelope(DetailInvalidMessage)) != nil {
				return
			}
			continue
		}

		metrics.WSMessagesReceived.WithLabelValues(env.Type).Inc()

		switch env.Type {
		case TypePing:
			// Client-initiated probe.
			if h.reply(conn, NewEnvelope(TypePong, nil)) != nil {
				return
			}
		case TypePong:
			conn.TouchPong()
		case TypeEventUpdate, TypeInboxUpdate:
			// Payload is opaque to this subsystem.
			if h.reply(conn, AckEnvelope(env.Type)) != nil {
				return
			}
		default:
			if h.reply(conn, ErrorEnvelope(DetailUnknownType)) != nil {
				return
			}
		}
	}
}

// reply enqueues a frame and reports only fatal conditions. A full buffer is
// tolerated (the frame is dropped); a closed connection ends the loop.
func (h *SessionHandler) reply(conn *Conn, env Envelope) error {
	err := conn.Send(env)
	if errors.Is(err, ErrConnClosed) {
		return err
	}
	if err != nil {
		slog.Debug("Dropped reply frame", "connection_id", conn.ID().String(), "error", err)
	}
	return nil
}

// rejectHandshake closes a connection that never authenticated with a
// policy-violation close code.
func rejectHandshake(ws *websocket.Conn, clock clockwork.Clock) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed")
	_ = ws.SetWriteDeadline(clock.Now().Add(closeGracePeriod))
	_ = ws.WriteMessage(websocket.CloseMessage, msg)
	_ = ws.Close()
}
