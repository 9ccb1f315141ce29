package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-outreach/sdk/identity"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		f := NewSimulatedFetcher(identity.PlatformGitHub)
		require.NoError(t, r.Register(f))

		got, ok := r.Get(identity.PlatformGitHub)
		require.True(t, ok)
		assert.Same(t, f, got)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("rejects duplicate platform", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewSimulatedFetcher(identity.PlatformGitHub)))
		err := r.Register(NewSimulatedFetcher(identity.PlatformGitHub))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("replace overwrites", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewSimulatedFetcher(identity.PlatformGitHub)))
		replacement := NewSimulatedFetcher(identity.PlatformGitHub)
		require.NoError(t, r.Replace(replacement))

		got, ok := r.Get(identity.PlatformGitHub)
		require.True(t, ok)
		assert.Same(t, replacement, got)
	})

	t.Run("rejects nil and invalid platform", func(t *testing.T) {
		r := NewRegistry()
		require.Error(t, r.Register(nil))
		require.Error(t, r.Register(NewSimulatedFetcher(identity.Platform("myspace"))))
	})

	t.Run("lookup returns the fetcher", func(t *testing.T) {
		r := NewRegistry()
		f := NewSimulatedFetcher(identity.PlatformGitHub)
		require.NoError(t, r.Register(f))

		got, err := r.Lookup(identity.PlatformGitHub)
		require.NoError(t, err)
		assert.Same(t, f, got)
	})

	t.Run("lookup of unregistered platform", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Lookup(identity.PlatformTwitter)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetcherNotFound)
		assert.Contains(t, err.Error(), "twitter")
	})

	t.Run("platforms sorted", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewSimulatedFetcher(identity.PlatformTwitter)))
		require.NoError(t, r.Register(NewSimulatedFetcher(identity.PlatformGitHub)))
		assert.Equal(t,
			[]identity.Platform{identity.PlatformGitHub, identity.PlatformTwitter},
			r.Platforms())
	})
}

func TestSimulatedFetcher(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("produces a valid successful node", func(t *testing.T) {
		f := NewSimulatedFetcher(identity.PlatformGitHub).WithClock(clock)
		node, err := f.Fetch(context.Background(), "jane-doe")
		require.NoError(t, err)

		require.NoError(t, node.Validate())
		assert.Equal(t, identity.PlatformGitHub, node.Platform)
		assert.Equal(t, identity.FetchSuccess, node.FetchStatus)
		assert.Equal(t, SimulatedConfidence, node.ConfidenceScore)
		assert.Equal(t, "Jane Doe", node.Name())
		assert.NotEmpty(t, node.Activities)
		assert.NotEmpty(t, node.CrossReferences)
	})

	t.Run("deterministic for the same identifier", func(t *testing.T) {
		f := NewSimulatedFetcher(identity.PlatformGitHub).WithClock(clock)
		a, err := f.Fetch(context.Background(), "jane-doe")
		require.NoError(t, err)
		b, err := f.Fetch(context.Background(), "jane-doe")
		require.NoError(t, err)

		assert.Equal(t, a.Profile, b.Profile)
		assert.Equal(t, len(a.Activities), len(b.Activities))
	})

	t.Run("github node cross-references twitter", func(t *testing.T) {
		f := NewSimulatedFetcher(identity.PlatformGitHub).WithClock(clock)
		node, err := f.Fetch(context.Background(), "jane-doe")
		require.NoError(t, err)
		assert.True(t, node.References(identity.PlatformTwitter, "jane-doe"))
	})

	t.Run("activities carry recency metadata", func(t *testing.T) {
		f := NewSimulatedFetcher(identity.PlatformTwitter).WithClock(clock)
		node, err := f.Fetch(context.Background(), "jane-doe")
		require.NoError(t, err)

		wantWeights := map[string]float64{
			"last_week":     1.0,
			"last_month":    0.8,
			"last_3_months": 0.5,
		}
		for _, act := range node.Activities {
			require.Contains(t, act.Metadata, "recency_bucket")
			require.Contains(t, act.Metadata, "recency_weight")
			bucket := act.Metadata["recency_bucket"].(string)
			assert.Equal(t, wantWeights[bucket], act.Metadata["recency_weight"])
			assert.Equal(t, time.UTC, act.Timestamp.Location())
		}
	})

	t.Run("rejects empty identifier", func(t *testing.T) {
		f := NewSimulatedFetcher(identity.PlatformGitHub)
		_, err := f.Fetch(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		f := NewSimulatedFetcher(identity.PlatformGitHub)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Fetch(ctx, "jane-doe")
		require.ErrorIs(t, err, context.Canceled)
	})
}
