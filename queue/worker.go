package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-outreach/sdk/fetch"
	"github.com/nexus-outreach/sdk/identity"
)

// WorkerOptions configures the worker behavior.
type WorkerOptions struct {
	// RedisURL is the Redis connection string (e.g., "redis://localhost:6379").
	RedisURL string

	// Concurrency is the number of worker goroutines to start. Default 4.
	Concurrency int

	// FetchTimeout bounds each individual fetch. Default 30s.
	FetchTimeout time.Duration

	// ShutdownTimeout is the time to wait for graceful shutdown. Default 30s.
	ShutdownTimeout time.Duration

	// Version is reported in the fetcher's registration metadata.
	Version string

	// Simulated marks the registration as generated-data.
	Simulated bool

	// Logger is the structured logger for worker operations. If nil, a
	// default JSON logger is created.
	Logger *slog.Logger

	// Client overrides the Redis client, e.g. for tests. When set, RedisURL
	// is ignored and the worker does not close the client on exit.
	Client Client
}

// RunWorker starts the worker loop for a platform fetcher. It connects to
// Redis, registers the fetcher, starts Concurrency goroutines popping the
// platform's queue, maintains a heartbeat, and handles graceful shutdown on
// context cancellation or SIGTERM/SIGINT.
//
// Each worker goroutine pops a job, runs the fetcher against the job's
// identifier with the configured timeout, and publishes the serialized node
// (or the error) to the batch's result channel.
//
// The function blocks until shutdown. On shutdown it waits for workers to
// finish their current jobs before returning.
func RunWorker(ctx context.Context, fetcher fetch.Fetcher, opts WorkerOptions) error {
	if fetcher == nil {
		return fmt.Errorf("fetcher is required")
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	if opts.Version == "" {
		opts.Version = "0.0.0"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	platform := fetcher.Platform()
	workerID := generateWorkerID()

	logger := opts.Logger.With(
		"platform", platform,
		"worker_id", workerID,
	)
	logger.Info("worker starting", "concurrency", opts.Concurrency)

	client := opts.Client
	if client == nil {
		redisClient, err := NewRedisClient(RedisOptions{URL: opts.RedisURL})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		client = redisClient
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	meta := FetcherMeta{
		Platform:    platform,
		Version:     opts.Version,
		Description: fmt.Sprintf("%s identity fetcher", platform),
		Simulated:   opts.Simulated,
	}
	if err := client.RegisterFetcher(ctx, meta); err != nil {
		logger.Error("failed to register fetcher", "error", err)
		return fmt.Errorf("failed to register fetcher: %w", err)
	}
	logger.Info("fetcher registered", "version", meta.Version)

	if err := client.IncrementWorkerCount(ctx, platform); err != nil {
		logger.Error("failed to increment worker count", "error", err)
	}
	defer func() {
		// Cleanup uses a fresh context since ctx may be cancelled.
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if err := client.DecrementWorkerCount(cleanupCtx, platform); err != nil {
			logger.Error("failed to decrement worker count", "error", err)
		}
	}()

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go runHeartbeat(heartbeatCtx, client, platform, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			workerLoop(ctx, workerNum, fetcher, client, workerID, opts.FetchTimeout, logger)
		}(i)
	}
	logger.Info("worker started", "workers", opts.Concurrency, "queue", QueueName(platform))

	select {
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, initiating graceful shutdown")
	}
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("worker shutdown complete")
	case <-time.After(opts.ShutdownTimeout):
		logger.Warn("worker shutdown timeout exceeded", "timeout", opts.ShutdownTimeout)
	}
	return nil
}

// runHeartbeat refreshes the fetcher's health key periodically until the
// context is cancelled.
func runHeartbeat(ctx context.Context, client Client, platform identity.Platform, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	logger.Debug("heartbeat goroutine started")
	for {
		select {
		case <-ctx.Done():
			logger.Debug("heartbeat goroutine stopped")
			return
		case <-ticker.C:
			if err := client.Heartbeat(ctx, platform); err != nil {
				// Heartbeat failures are transient; keep the noise down.
				logger.Debug("heartbeat failed", "error", err)
			}
		}
	}
}

// workerLoop continuously pops jobs from the platform's queue, processes
// them and publishes results until the context is cancelled.
func workerLoop(ctx context.Context, workerNum int, fetcher fetch.Fetcher, client Client, workerID string, fetchTimeout time.Duration, logger *slog.Logger) {
	platform := fetcher.Platform()
	logger = logger.With("worker_num", workerNum)
	logger.Debug("worker loop started", "queue", QueueName(platform))

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker loop stopped", "reason", "context_cancelled")
			return
		default:
		}

		job, err := client.Pop(ctx, platform)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("worker loop stopped", "reason", "context_error")
				return
			}
			logger.Error("failed to pop fetch job", "error", err)
			continue
		}
		if job == nil {
			continue
		}

		logger.Info("received fetch job",
			"job_id", job.JobID,
			"index", job.Index,
			"total", job.Total,
			"identifier", job.Identifier,
		)

		result := processJob(ctx, fetcher, *job, workerID, fetchTimeout, logger)
		if err := client.Publish(ctx, result); err != nil {
			logger.Error("failed to publish result", "error", err)
		}
	}
}

// processJob runs the fetcher against one job and returns a result. Every
// failure mode is captured in the result so the coordinator always hears
// back.
func processJob(ctx context.Context, fetcher fetch.Fetcher, job FetchJob, workerID string, fetchTimeout time.Duration, logger *slog.Logger) FetchResult {
	startedAt := time.Now().UnixMilli()

	result := FetchResult{
		JobID:      job.JobID,
		Index:      job.Index,
		Platform:   job.Platform,
		Identifier: job.Identifier,
		WorkerID:   workerID,
		StartedAt:  startedAt,
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	node, err := fetcher.Fetch(fetchCtx, job.Identifier)
	if err != nil {
		result.Error = err.Error()
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("fetch failed", "identifier", job.Identifier, "error", err)
		return result
	}

	nodeJSON, err := json.Marshal(node)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal node: %v", err)
		result.CompletedAt = time.Now().UnixMilli()
		logger.Error("failed to marshal node", "error", err)
		return result
	}

	result.NodeJSON = string(nodeJSON)
	result.CompletedAt = time.Now().UnixMilli()

	logger.Info("fetch job completed",
		"job_id", job.JobID,
		"index", job.Index,
		"duration_ms", result.CompletedAt-result.StartedAt,
	)
	return result
}

// generateWorkerID creates a unique identifier for this worker instance:
// hostname + PID + UUID suffix.
func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	id := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), id)
}
