package checkpoint

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces checkpoint keys in a shared Redis.
const redisKeyPrefix = "nexus:checkpoint:"

// redisIndexKey is the set holding all checkpoint keys, so List avoids a
// SCAN over the keyspace.
const redisIndexKey = "nexus:checkpoints"

// RedisStore shares checkpoints between processes through Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at the given URL and verifies the
// connection with a ping.
func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client, sharing its connection
// pool. The caller retains ownership of the client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save writes a checkpoint, replacing any existing one for the key.
func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+key, data, 0)
	pipe.SAdd(ctx, redisIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: saving %s: %v", ErrStorageFailed, key, err)
	}
	return nil
}

// Load reads a checkpoint.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: loading %s: %v", ErrStorageFailed, key, err)
	}
	return data, nil
}

// Delete removes a checkpoint.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	removed, err := s.client.Del(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", ErrStorageFailed, key, err)
	}
	if err := s.client.SRem(ctx, redisIndexKey, key).Err(); err != nil {
		return fmt.Errorf("%w: unindexing %s: %v", ErrStorageFailed, key, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all checkpoint keys in sorted order.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: listing: %v", ErrStorageFailed, err)
	}
	// SMembers order is unspecified.
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
