package realtime

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/metrics"
)

// Dispatcher fans a message out to every live connection of a user. It is
// safe to call from any goroutine, including request handlers with no
// connection of their own: delivery only ever enqueues onto the target
// connection's send channel, drained by that connection's writer goroutine.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// BroadcastToUser delivers the envelope to each of the user's connections,
// best effort. A connection that cannot accept the frame is treated as dead:
// it is pruned from the registry and stopped, and delivery continues with
// the remaining connections. Failures never propagate to the caller.
func (d *Dispatcher) BroadcastToUser(userID uuid.UUID, env Envelope) {
	conns := d.registry.ConnectionsFor(userID)
	if len(conns) == 0 {
		return
	}

	data, err := env.Marshal()
	if err != nil {
		slog.Error("Failed to marshal broadcast envelope", "type", env.Type, "error", err)
		return
	}

	for _, c := range conns {
		if err := c.send(data); err != nil {
			metrics.WSBroadcastDeliveries.WithLabelValues("failed").Inc()
			slog.Warn("Broadcast delivery failed, pruning connection",
				"connection_id", c.ID().String(),
				"user_id", userID.String(),
				"error", err,
			)
			d.registry.RemoveByID(c.ID())
			// Stop waits for the writer goroutine; do not block the fan-out.
			go c.Stop()
			continue
		}
		metrics.WSBroadcastDeliveries.WithLabelValues("delivered").Inc()
	}
}

// NotifyUser implements domain.Notifier.
func (d *Dispatcher) NotifyUser(userID uuid.UUID, msgType string, payload map[string]any) {
	d.BroadcastToUser(userID, NewEnvelope(msgType, payload))
}
