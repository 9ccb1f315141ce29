package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexus-outreach/sdk/identity"
)

// heartbeatTTL is how long a fetcher counts as healthy after its last
// heartbeat.
const heartbeatTTL = 30 * time.Second

// Client defines the interface for interacting with Redis-based fetch
// queues.
type Client interface {
	// Push adds a fetch job to the platform's queue (LPUSH).
	Push(ctx context.Context, job FetchJob) error

	// Pop removes and returns a job from the platform's queue (BRPOP).
	// Blocks until a job is available or the context is cancelled.
	Pop(ctx context.Context, platform identity.Platform) (*FetchJob, error)

	// Publish sends a result to the batch's pub/sub channel.
	Publish(ctx context.Context, result FetchResult) error

	// Subscribe creates a subscription to a batch's result channel.
	// The returned channel receives results until the context is cancelled.
	Subscribe(ctx context.Context, jobID string) (<-chan FetchResult, error)

	// RegisterFetcher writes fetcher metadata and adds the platform to the
	// available set.
	RegisterFetcher(ctx context.Context, meta FetcherMeta) error

	// ListFetchers returns metadata for all registered fetchers.
	ListFetchers(ctx context.Context) ([]FetcherMeta, error)

	// Heartbeat refreshes the health key for a platform's fetcher.
	Heartbeat(ctx context.Context, platform identity.Platform) error

	// IsHealthy reports whether a platform's fetcher has a live heartbeat.
	IsHealthy(ctx context.Context, platform identity.Platform) (bool, error)

	// GetWorkerCount returns the live worker count for a platform.
	GetWorkerCount(ctx context.Context, platform identity.Platform) (int, error)

	// IncrementWorkerCount increments the worker count for a platform.
	IncrementWorkerCount(ctx context.Context, platform identity.Platform) error

	// DecrementWorkerCount decrements the worker count for a platform.
	DecrementWorkerCount(ctx context.Context, platform identity.Platform) error

	// Close closes the Redis connection.
	Close() error
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations.
	WriteTimeout time.Duration
}

// RedisClient implements the Client interface using go-redis/v9.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis queue client with the given options.
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromConn wraps an existing connection, sharing its pool.
// Useful for tests and for callers that already manage a client.
func NewRedisClientFromConn(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Push adds a fetch job to the platform's queue.
func (c *RedisClient) Push(ctx context.Context, job FetchJob) error {
	if err := job.IsValid(); err != nil {
		return fmt.Errorf("invalid fetch job: %w", err)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal fetch job: %w", err)
	}

	queue := QueueName(job.Platform)
	if err := c.client.LPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push to queue %s: %w", queue, err)
	}
	return nil
}

// Pop removes and returns a job from the platform's queue. Blocks until a
// job is available or the context is cancelled.
func (c *RedisClient) Pop(ctx context.Context, platform identity.Platform) (*FetchJob, error) {
	queue := QueueName(platform)

	// BRPOP returns [queue_name, value] or redis.Nil on timeout.
	result, err := c.client.BRPop(ctx, 0, queue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue %s: %w", queue, err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}

	var job FetchJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fetch job: %w", err)
	}
	return &job, nil
}

// Publish sends a result to the batch's pub/sub channel.
func (c *RedisClient) Publish(ctx context.Context, result FetchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal fetch result: %w", err)
	}

	channel := ResultsChannel(result.JobID)
	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe creates a subscription to a batch's result channel.
func (c *RedisClient) Subscribe(ctx context.Context, jobID string) (<-chan FetchResult, error) {
	pubsub := c.client.Subscribe(ctx, ResultsChannel(jobID))

	// Wait for subscription confirmation so no result is lost to a race.
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to results for job %s: %w", jobID, err)
	}

	results := make(chan FetchResult)
	go func() {
		defer close(results)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var result FetchResult
				if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
					continue
				}

				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return results, nil
}

// RegisterFetcher writes fetcher metadata and adds the platform to the
// available set.
func (c *RedisClient) RegisterFetcher(ctx context.Context, meta FetcherMeta) error {
	if err := meta.IsValid(); err != nil {
		return fmt.Errorf("invalid fetcher metadata: %w", err)
	}

	// All hash values must be strings for go-redis.
	metaKey := fmt.Sprintf("fetcher:%s:meta", meta.Platform)
	fields := map[string]string{
		"platform":     string(meta.Platform),
		"version":      meta.Version,
		"description":  meta.Description,
		"simulated":    strconv.FormatBool(meta.Simulated),
		"worker_count": strconv.Itoa(meta.WorkerCount),
	}

	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err := c.client.HSet(ctx, metaKey, args...).Err(); err != nil {
		return fmt.Errorf("failed to set fetcher metadata: %w", err)
	}

	if err := c.client.SAdd(ctx, "fetchers:available", string(meta.Platform)).Err(); err != nil {
		return fmt.Errorf("failed to add fetcher to available set: %w", err)
	}
	return nil
}

// ListFetchers returns metadata for all registered fetchers.
func (c *RedisClient) ListFetchers(ctx context.Context) ([]FetcherMeta, error) {
	platforms, err := c.client.SMembers(ctx, "fetchers:available").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get available fetchers: %w", err)
	}

	fetchers := make([]FetcherMeta, 0, len(platforms))
	for _, platform := range platforms {
		metaKey := fmt.Sprintf("fetcher:%s:meta", platform)
		fields, err := c.client.HGetAll(ctx, metaKey).Result()
		if err != nil || len(fields) == 0 {
			// Skip fetchers with missing metadata.
			continue
		}

		meta := FetcherMeta{
			Platform:    identity.Platform(fields["platform"]),
			Version:     fields["version"],
			Description: fields["description"],
		}
		if simulated, err := strconv.ParseBool(fields["simulated"]); err == nil {
			meta.Simulated = simulated
		}
		if count, err := strconv.Atoi(fields["worker_count"]); err == nil {
			meta.WorkerCount = count
		}
		fetchers = append(fetchers, meta)
	}
	return fetchers, nil
}

// Heartbeat refreshes the health key for a platform's fetcher.
func (c *RedisClient) Heartbeat(ctx context.Context, platform identity.Platform) error {
	healthKey := fmt.Sprintf("fetcher:%s:health", platform)
	if err := c.client.Set(ctx, healthKey, "ok", heartbeatTTL).Err(); err != nil {
		return fmt.Errorf("failed to set heartbeat for %s: %w", platform, err)
	}
	return nil
}

// IsHealthy reports whether a platform's fetcher has a live heartbeat.
func (c *RedisClient) IsHealthy(ctx context.Context, platform identity.Platform) (bool, error) {
	healthKey := fmt.Sprintf("fetcher:%s:health", platform)
	_, err := c.client.Get(ctx, healthKey).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check health for %s: %w", platform, err)
	}
	return true, nil
}

// GetWorkerCount returns the live worker count for a platform.
func (c *RedisClient) GetWorkerCount(ctx context.Context, platform identity.Platform) (int, error) {
	workerKey := fmt.Sprintf("fetcher:%s:workers", platform)
	countStr, err := c.client.Get(ctx, workerKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get worker count for %s: %w", platform, err)
	}

	count, err := strconv.Atoi(countStr)
	if err != nil {
		return 0, fmt.Errorf("invalid worker count value: %w", err)
	}
	return count, nil
}

// IncrementWorkerCount increments the worker count for a platform.
func (c *RedisClient) IncrementWorkerCount(ctx context.Context, platform identity.Platform) error {
	workerKey := fmt.Sprintf("fetcher:%s:workers", platform)
	if err := c.client.Incr(ctx, workerKey).Err(); err != nil {
		return fmt.Errorf("failed to increment worker count for %s: %w", platform, err)
	}
	return nil
}

// DecrementWorkerCount decrements the worker count for a platform.
func (c *RedisClient) DecrementWorkerCount(ctx context.Context, platform identity.Platform) error {
	workerKey := fmt.Sprintf("fetcher:%s:workers", platform)
	if err := c.client.Decr(ctx, workerKey).Err(); err != nil {
		return fmt.Errorf("failed to decrement worker count for %s: %w", platform, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}
