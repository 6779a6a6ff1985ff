package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	redisclient "github.com/shelterbeds/matcheckin/internal/infrastructure/clients/redis"
)

// RedisAdapter implements providers.CacheProvider on a Redis client.
// Keys are namespaced so several deployments can share one Redis.
type RedisAdapter struct {
	client    redis.Cmdable
	namespace string
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client, namespace string) providers.CacheProvider {
	return NewRedisAdapterFromCmdable(client.Client(), namespace)
}

// NewRedisAdapterFromCmdable builds the adapter on any go-redis client
func NewRedisAdapterFromCmdable(client redis.Cmdable, namespace string) providers.CacheProvider {
	return &RedisAdapter{client: client, namespace: namespace}
}

func (a *RedisAdapter) key(key string) string {
	if a.namespace == "" {
		return key
	}
	return a.namespace + ":" + key
}

// Get returns providers.ErrCacheMiss when the key is absent
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Get(ctx, a.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, providers.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return result, nil
}

// Set stores a value in cache with expiration
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := time.Duration(expirationSeconds) * time.Second
	if err := a.client.Set(ctx, a.key(key), value, expiration).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value from cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Del(ctx, a.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}
