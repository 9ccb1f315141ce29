package sdk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-outreach/sdk/checkpoint"
	"github.com/nexus-outreach/sdk/config"
	"github.com/nexus-outreach/sdk/fetch"
	"github.com/nexus-outreach/sdk/identity"
	"github.com/nexus-outreach/sdk/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, opts ...ClientOption) *Client {
	t.Helper()
	opts = append(opts, WithLogger(testLogger()))
	client, err := NewClient(opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientDefaults(t *testing.T) {
	client := testClient(t)
	assert.Empty(t, client.Platforms())
}

func TestNewClientInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Momentum.DecayFactor = 2.0

	_, err := NewClient(WithConfig(cfg), WithLogger(testLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &SDKError{Kind: KindConfiguration}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewClientMissingConfigFile(t *testing.T) {
	_, err := NewClient(WithConfigFile("/does/not/exist.yaml"), WithLogger(testLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &SDKError{Kind: KindConfiguration}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRegisterFetcher(t *testing.T) {
	client := testClient(t)

	require.NoError(t, client.RegisterFetcher(fetch.NewSimulatedFetcher(identity.PlatformGitHub)))
	assert.Equal(t, []identity.Platform{identity.PlatformGitHub}, client.Platforms())

	t.Run("duplicate platform rejected", func(t *testing.T) {
		err := client.RegisterFetcher(fetch.NewSimulatedFetcher(identity.PlatformGitHub))
		require.Error(t, err)
		assert.True(t, errors.Is(err, &SDKError{Kind: KindValidation}))
	})
}

func TestClientAnalyze(t *testing.T) {
	client := testClient(t,
		WithSimulatedFetchers(identity.PlatformGitHub, identity.PlatformTwitter))

	report, err := client.Analyze(context.Background(), pipeline.Target{
		Identities: []pipeline.TargetIdentity{
			{Platform: identity.PlatformGitHub, Identifier: "jane-doe"},
			{Platform: identity.PlatformTwitter, Identifier: "jane-doe"},
		},
		ContextSimilarity: 0.8,
	})
	require.NoError(t, err)

	assert.Equal(t, "jane-doe", report.Name)
	assert.Len(t, report.Graph.Nodes, 2)
	assert.NotEmpty(t, report.WinProbability.Recommendation)
}

func TestClientAnalyzeInvalidTarget(t *testing.T) {
	client := testClient(t, WithSimulatedFetchers(identity.PlatformGitHub))

	_, err := client.Analyze(context.Background(), pipeline.Target{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &SDKError{Op: "Client.Analyze", Kind: KindExecution}))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestClientLoadReport(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	client := testClient(t,
		WithSimulatedFetchers(identity.PlatformGitHub),
		WithCheckpointStore(store))

	ctx := context.Background()
	target := pipeline.Target{
		Identities:        []pipeline.TargetIdentity{{Platform: identity.PlatformGitHub, Identifier: "jane-doe"}},
		ContextSimilarity: 0.5,
	}

	report, err := client.Analyze(ctx, target)
	require.NoError(t, err)

	restored, err := client.LoadReport(ctx, "jane-doe")
	require.NoError(t, err)
	assert.Equal(t, report.WinProbability.Probability, restored.WinProbability.Probability)

	t.Run("unknown name", func(t *testing.T) {
		_, err := client.LoadReport(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, errors.Is(err, &SDKError{Kind: KindNotFound}))
		assert.True(t, errors.Is(err, checkpoint.ErrNotFound))
	})
}

func TestClientLoadReportWithoutStore(t *testing.T) {
	client := testClient(t)
	_, err := client.LoadReport(context.Background(), "jane-doe")
	require.ErrorIs(t, err, ErrNoCheckpoints)
}
