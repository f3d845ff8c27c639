// Package coordination provides single-leader election across service
// replicas, used so the reminder scheduler fires each due reminder once.
package coordination

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotLeader is returned by RenewLease when this instance has lost the lease.
var ErrNotLeader = errors.New("not leader")

// LeaderElection implements single-leader election using Redis SETNX.
// The leader holds a key with a TTL; other instances acquire leadership
// when the key expires (previous leader crashed or partitioned away).
type LeaderElection struct {
	redis      *redis.Client
	instanceID string
	key        string
	ttl        time.Duration
}

// NewLeaderElection creates a new election handle. key is the Redis key
// used for the election (e.g. "leader:reminder_scheduler").
func NewLeaderElection(rdb *redis.Client, instanceID, key string, ttl time.Duration) *LeaderElection {
	return &LeaderElection{
		redis:      rdb,
		instanceID: instanceID,
		key:        key,
		ttl:        ttl,
	}
}

// TryBecomeLeader attempts to acquire leadership.
func (l *LeaderElection) TryBecomeLeader(ctx context.Context) (bool, error) {
	return l.redis.SetNX(ctx, l.key, l.instanceID, l.ttl).Result()
}

// RenewLease extends the leader's TTL. Only succeeds while this instance
// still holds the lease; call periodically (ttl/2 works well).
func (l *LeaderElection) RenewLease(ctx context.Context) error {
	// Lua script ensures atomic check-and-renew
	script := `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("EXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
	`

	result, err := l.redis.Eval(ctx, script, []string{l.key}, l.instanceID, int(l.ttl.Seconds())).Result()
	if err != nil {
		return err
	}
	if result == int64(0) {
		return ErrNotLeader
	}
	return nil
}

// IsLeader reports whether this instance currently holds the lease.
func (l *LeaderElection) IsLeader(ctx context.Context) (bool, error) {
	current, err := l.redis.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == l.instanceID, nil
}

// ReleaseLease voluntarily gives up leadership during graceful shutdown.
func (l *LeaderElection) ReleaseLease(ctx context.Context) error {
	// Only delete if we still hold the lease
	script := `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
	`

	return l.redis.Eval(ctx, script, []string{l.key}, l.instanceID).Err()
}
