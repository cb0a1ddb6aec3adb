package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireOwnerLock(ctx context.Context, ownerID string, ttl time.Duration) (bool, error)
	ReleaseOwnerLock(ctx context.Context, ownerID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
)
