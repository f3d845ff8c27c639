package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/metrics"
)

// Monitor probes one connection's liveness. On every tick it sends a ping
// envelope and checks how long ago the last pong was observed; a connection
// past the timeout is force-closed with CloseLivenessTimeout.
//
// The monitor never deregisters the connection. Teardown belongs to the
// session, which avoids duplicate-removal races with the receive loop's own
// error path.
type Monitor struct {
	conn     *Conn
	interval time.Duration
	timeout  time.Duration
	clock    clockwork.Clock

	cancel   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartMonitor begins probing the connection. The caller must Stop the
// monitor before the connection is deregistered.
func StartMonitor(conn *Conn, interval, timeout time.Duration, clock clockwork.Clock) *Monitor {
	m := &Monitor{
		conn:     conn,
		interval: interval,
		timeout:  timeout,
		clock:    clock,
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Monitor) run() {
	defer close(m.done)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.cancel:
			return
		case <-ticker.Chan():
			if err := m.conn.Send(NewEnvelope(TypePing, nil)); err != nil {
				// Send failure means the connection is dying; the session's
				// teardown path handles deregistration.
				slog.Debug("Heartbeat probe failed", "connection_id", m.conn.ID().String(), "error", err)
				return
			}

			if m.clock.Since(m.conn.LastPong()) > m.timeout {
				slog.Warn("Liveness timeout, force-closing connection",
					"connection_id", m.conn.ID().String(),
					"user_id", m.conn.UserID().String(),
				)
				metrics.WSLivenessTimeouts.Inc()
				m.conn.CloseWithCode(CloseLivenessTimeout, "liveness timeout")
				return
			}
		}
	}
}

// Stop cancels the monitor and waits for it to finish. After Stop returns
// no further probe can fire against the connection.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.cancel) })
	<-m.done
}
