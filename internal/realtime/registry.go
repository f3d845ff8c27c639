package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/metrics"
)

// Registry is the process-wide index of live connections. It holds the
// forward map (user to connections) and a reverse map (connection to user)
// so removal never scans all users. It has no persistence; a restarted
// process starts empty and clients reconnect.
//
// The registry is the only shared mutable state in the subsystem. It guards
// index maps only; no lock is ever held across a transport write.
type Registry struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]map[uuid.UUID]*Conn
	byConn map[uuid.UUID]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[uuid.UUID]map[uuid.UUID]*Conn),
		byConn: make(map[uuid.UUID]uuid.UUID),
	}
}

// Add inserts the connection into both maps, making it visible to the
// dispatcher immediately.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byUser[c.UserID()]
	if !ok {
		conns = make(map[uuid.UUID]*Conn)
		r.byUser[c.UserID()] = conns
	}
	conns[c.ID()] = c
	r.byConn[c.ID()] = c.UserID()

	r.updateGauges()
}

// Remove deletes the connection from both maps. Removing an absent
// connection is a no-op: teardown paths may race and double-remove.
func (r *Registry) Remove(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(c.ID())
}

// RemoveByID removes a connection through the reverse index and returns the
// removed handle, or nil if it was already gone.
func (r *Registry) RemoveByID(connID uuid.UUID) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(connID)
}

func (r *Registry) removeLocked(connID uuid.UUID) *Conn {
	userID, ok := r.byConn[connID]
	if !ok {
		return nil
	}
	delete(r.byConn, connID)

	conns := r.byUser[userID]
	removed := conns[connID]
	delete(conns, connID)
	if len(conns) == 0 {
		// Never retain empty buckets.
		delete(r.byUser, userID)
	}

	r.updateGauges()
	return removed
}

// ConnectionsFor returns a snapshot of the user's live connections. The
// snapshot is a copy; concurrent add/remove does not invalidate iteration.
func (r *Registry) ConnectionsFor(userID uuid.UUID) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	snapshot := make([]*Conn, 0, len(conns))
	for _, c := range conns {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// TotalCount returns the number of live connections across all users.
func (r *Registry) TotalCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

// CountForUser returns the number of live connections for one user.
func (r *Registry) CountForUser(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

// UserCount returns the number of users with at least one live connection.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Drain force-closes every live connection and empties the registry. Used
// at process shutdown; does not wait for receive loops to exit gracefully.
func (r *Registry) Drain(reason string) {
	r.mu.Lock()
	all := make([]*Conn, 0, len(r.byConn))
	for _, conns := range r.byUser {
		for _, c := range conns {
			all = append(all, c)
		}
	}
	r.byUser = make(map[uuid.UUID]map[uuid.UUID]*Conn)
	r.byConn = make(map[uuid.UUID]uuid.UUID)
	r.updateGauges()
	r.mu.Unlock()

	for _, c := range all {
		c.CloseWithCode(websocket.CloseNormalClosure, reason)
	}
}

// updateGauges is called with the lock held.
func (r *Registry) updateGauges() {
	metrics.WSActiveConnections.Set(float64(len(r.byConn)))
	metrics.WSConnectedUsers.Set(float64(len(r.byUser)))
}
