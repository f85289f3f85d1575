package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises the events of one console session across
// server replicas sharing a snapshot store, so two replicas never load, update
// and save the same session at once. session.Manager takes it around every
// load-or-start, save and delete. A single process only needs the Manager's
// in-memory locks.
type DistributedLocker interface {
	// Lock blocks until the lock for the session key is held or ctx ends.
	// The lock expires after ttl if the holder dies without unlocking.
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)
}
