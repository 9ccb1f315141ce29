package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-outreach/sdk/fetch"
	"github.com/nexus-outreach/sdk/identity"
)

func testClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { conn.Close() })
	return NewRedisClientFromConn(conn), mr
}

func TestPushPop(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	job := validJob()
	require.NoError(t, client.Push(ctx, job))

	popped, err := client.Pop(ctx, identity.PlatformGitHub)
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, job.JobID, popped.JobID)
	assert.Equal(t, job.Identifier, popped.Identifier)
}

func TestPushRejectsInvalidJob(t *testing.T) {
	client, _ := testClient(t)
	job := validJob()
	job.Identifier = ""
	require.Error(t, client.Push(context.Background(), job))
}

func TestPopHonorsContextCancellation(t *testing.T) {
	client, _ := testClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Pop(ctx, identity.PlatformGitHub)
	require.Error(t, err)
}

func TestPublishSubscribe(t *testing.T) {
	client, _ := testClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := client.Subscribe(ctx, "job-1")
	require.NoError(t, err)

	sent := FetchResult{
		JobID: "job-1", Index: 0,
		Platform: identity.PlatformGitHub, Identifier: "alice",
		NodeJSON: "{}", WorkerID: "w1", StartedAt: 1, CompletedAt: 2,
	}
	require.NoError(t, client.Publish(ctx, sent))

	select {
	case got := <-results:
		assert.Equal(t, sent.JobID, got.JobID)
		assert.Equal(t, sent.Identifier, got.Identifier)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published result")
	}
}

func TestRegisterAndListFetchers(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	meta := FetcherMeta{
		Platform:    identity.PlatformGitHub,
		Version:     "1.2.0",
		Description: "github identity fetcher",
		Simulated:   true,
	}
	require.NoError(t, client.RegisterFetcher(ctx, meta))

	fetchers, err := client.ListFetchers(ctx)
	require.NoError(t, err)
	require.Len(t, fetchers, 1)
	assert.Equal(t, identity.PlatformGitHub, fetchers[0].Platform)
	assert.Equal(t, "1.2.0", fetchers[0].Version)
	assert.True(t, fetchers[0].Simulated)
}

func TestRegisterRejectsInvalidMeta(t *testing.T) {
	client, _ := testClient(t)
	err := client.RegisterFetcher(context.Background(), FetcherMeta{Platform: "myspace"})
	require.Error(t, err)
}

func TestHeartbeatHealth(t *testing.T) {
	client, mr := testClient(t)
	ctx := context.Background()

	healthy, err := client.IsHealthy(ctx, identity.PlatformGitHub)
	require.NoError(t, err)
	assert.False(t, healthy)

	require.NoError(t, client.Heartbeat(ctx, identity.PlatformGitHub))
	healthy, err = client.IsHealthy(ctx, identity.PlatformGitHub)
	require.NoError(t, err)
	assert.True(t, healthy)

	// Heartbeats expire without refresh.
	mr.FastForward(time.Minute)
	healthy, err = client.IsHealthy(ctx, identity.PlatformGitHub)
	require.NoError(t, err)
	assert.False(t, healthy)
}

func TestWorkerCounts(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	count, err := client.GetWorkerCount(ctx, identity.PlatformGitHub)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, client.IncrementWorkerCount(ctx, identity.PlatformGitHub))
	require.NoError(t, client.IncrementWorkerCount(ctx, identity.PlatformGitHub))
	require.NoError(t, client.DecrementWorkerCount(ctx, identity.PlatformGitHub))

	count, err = client.GetWorkerCount(ctx, identity.PlatformGitHub)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunWorkerProcessesJobs(t *testing.T) {
	client, _ := testClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := client.Subscribe(ctx, "batch-1")
	require.NoError(t, err)

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- RunWorker(ctx, fetch.NewSimulatedFetcher(identity.PlatformGitHub), WorkerOptions{
			Client:      client,
			Concurrency: 1,
			Simulated:   true,
			Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	}()

	job := FetchJob{
		JobID:       "batch-1",
		Index:       0,
		Total:       1,
		Platform:    identity.PlatformGitHub,
		Identifier:  "alice",
		SubmittedAt: time.Now().UnixMilli(),
	}
	require.NoError(t, client.Push(context.Background(), job))

	select {
	case result := <-results:
		require.NoError(t, result.IsValid())
		assert.False(t, result.HasError())

		node, err := result.Node()
		require.NoError(t, err)
		assert.Equal(t, identity.PlatformGitHub, node.Platform)
		assert.Equal(t, "alice", node.Identifier)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for worker result")
	}

	// Worker registered itself and counted in.
	fetchers, err := client.ListFetchers(context.Background())
	require.NoError(t, err)
	require.Len(t, fetchers, 1)
	assert.True(t, fetchers[0].Simulated)

	cancel()
	select {
	case err := <-workerDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not shut down")
	}

	// Worker counted out on shutdown.
	count, err := client.GetWorkerCount(context.Background(), identity.PlatformGitHub)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
