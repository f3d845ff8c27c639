package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline    = 5 * time.Second
	sendBufferSize   = 16
	closeGracePeriod = time.Second
)

var (
	// ErrConnClosed is returned by Send once the connection is shut down.
	ErrConnClosed = errors.New("connection closed")
	// ErrSendBufferFull is returned when the peer cannot keep up with the
	// outbound stream. Callers treat it as connection death.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn wraps one live websocket transport. The transport is exclusively
// owned by the writer goroutine started in NewConn; all senders (receive
// loop, heartbeat monitor, dispatcher) enqueue frames through Send.
type Conn struct {
	id     uuid.UUID
	userID uuid.UUID
	ws     *websocket.Conn
	clock  clockwork.Clock

	sendCh chan []byte
	done   chan struct{} // closed by Stop/CloseWithCode
	dead   chan struct{} // closed when the writer goroutine exits

	stopOnce sync.Once
	deadOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	lastPong time.Time
}

// NewConn creates a handle around an upgraded websocket connection and
// starts its writer goroutine.
func NewConn(userID uuid.UUID, ws *websocket.Conn, clock clockwork.Clock) *Conn {
	c := &Conn{
		id:       uuid.New(),
		userID:   userID,
		ws:       ws,
		clock:    clock,
		sendCh:   make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		dead:     make(chan struct{}),
		lastPong: clock.Now(),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// ID returns the process-unique connection identity.
func (c *Conn) ID() uuid.UUID { return c.id }

// UserID returns the authenticated owner of the connection.
func (c *Conn) UserID() uuid.UUID { return c.userID }

// Send enqueues one envelope for delivery. It never blocks: a closed
// connection or a full buffer is reported as an error and the frame is
// dropped.
func (c *Conn) Send(env Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return c.send(data)
}

func (c *Conn) send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	case <-c.dead:
		return ErrConnClosed
	case c.sendCh <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// TouchPong records a liveness response. Called by the session's receive
// loop only; the heartbeat monitor never writes this field.
func (c *Conn) TouchPong() {
	c.mu.Lock()
	c.lastPong = c.clock.Now()
	c.mu.Unlock()
}

// LastPong returns the last observed liveness timestamp.
func (c *Conn) LastPong() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPong
}

func (c *Conn) run() {
	defer c.wg.Done()
	defer c.deadOnce.Do(func() { close(c.dead) })

	for {
		select {
		case data := <-c.sendCh:
			_ = c.ws.SetWriteDeadline(c.clock.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				// Wake the receive loop so the session tears down.
				_ = c.ws.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Stop shuts the connection down without a close frame. Safe to call more
// than once and after CloseWithCode.
func (c *Conn) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
	c.wg.Wait()
}

// CloseWithCode stops the writer goroutine, sends a close frame with the
// given code and reason, and closes the transport. Used for liveness
// timeouts and graceful shutdown.
func (c *Conn) CloseWithCode(code int, reason string) {
	c.stopOnce.Do(func() {
		close(c.done)

		// The writer must have exited before the close frame is written;
		// two goroutines must never write to the transport at once.
		c.wg.Wait()

		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.SetWriteDeadline(c.clock.Now().Add(closeGracePeriod))
		_ = c.ws.WriteMessage(websocket.CloseMessage, msg)
		_ = c.ws.Close()
	})
	c.wg.Wait()
}
