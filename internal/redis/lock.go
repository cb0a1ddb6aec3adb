package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireOwnerLock attempts to acquire the payment-method lock for the given
// owner. Default-flag updates for one owner must be serialized so two
// concurrent add-as-default calls cannot both end up default.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireOwnerLock(ctx context.Context, ownerID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:owner-methods:%s", ownerID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseOwnerLock releases the payment-method lock for the given owner.
func (s *LockStore) ReleaseOwnerLock(ctx context.Context, ownerID string) error {
	key := fmt.Sprintf("lock:owner-methods:%s", ownerID)

	return s.client.Del(ctx, key).Err()
}
