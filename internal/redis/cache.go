package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ridepay/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// MethodListCacheTTL bounds staleness of a cached method list; mutations
// invalidate eagerly, the TTL covers writers outside this process.
const MethodListCacheTTL = 60 * time.Second

const methodListCachePrefix = "cache:payment-methods:"

// GetMethods retrieves an owner's cached payment method list.
// Returns nil on a cache miss.
func (s *CacheStore) GetMethods(ctx context.Context, ownerID string) ([]*domain.PaymentMethod, error) {
	key := methodListCachePrefix + ownerID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var methods []*domain.PaymentMethod
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// SetMethods stores an owner's payment method list in cache.
func (s *CacheStore) SetMethods(ctx context.Context, ownerID string, methods []*domain.PaymentMethod) error {
	key := methodListCachePrefix + ownerID
	data, err := json.Marshal(methods)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, MethodListCacheTTL).Err()
}

// InvalidateMethods removes an owner's payment method list from cache.
func (s *CacheStore) InvalidateMethods(ctx context.Context, ownerID string) error {
	key := methodListCachePrefix + ownerID
	return s.client.Del(ctx, key).Err()
}
