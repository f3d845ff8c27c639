package domain

import "github.com/google/uuid"

// Notifier pushes a domain notification to every live client session of a
// user. Delivery is fire-and-forget and best-effort: implementations must
// never block the caller or surface delivery failures.
type Notifier interface {
	NotifyUser(userID uuid.UUID, msgType string, payload map[string]any)
}

// NopNotifier discards all notifications. Used when the realtime subsystem
// is not wired up (tests, one-off commands).
type NopNotifier struct{}

func (NopNotifier) NotifyUser(uuid.UUID, string, map[string]any) {}
