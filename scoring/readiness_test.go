package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-outreach/sdk/identity"
)

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	require.NoError(t, Weights{Context: 0.2, Timing: 0.6, Intent: 0.2}.Validate())

	assert.Error(t, Weights{Context: 0.3, Timing: 0.3, Intent: 0.3}.Validate(), "sum below 1.0")
	assert.Error(t, Weights{Context: 0.5, Timing: 0.5, Intent: 0.5}.Validate(), "sum above 1.0")
	assert.Error(t, Weights{Context: -0.1, Timing: 0.9, Intent: 0.2}.Validate(), "negative weight")
}

func TestIntentConfigValidate(t *testing.T) {
	require.NoError(t, DefaultIntentConfig().Validate())

	cfg := DefaultIntentConfig()
	cfg.Keywords = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultIntentConfig()
	cfg.MaxScore = 0
	assert.Error(t, cfg.Validate())
}

func TestNewReadinessScorerRejectsBadConfig(t *testing.T) {
	_, err := NewReadinessScorer(Weights{Context: 0.5, Timing: 0.5, Intent: 0.5}, DefaultIntentConfig())
	require.Error(t, err)

	_, err = NewReadinessScorer(DefaultWeights(), IntentConfig{MaxScore: 100})
	require.Error(t, err)
}

func TestReadinessCalculate(t *testing.T) {
	scorer, err := NewReadinessScorer(DefaultWeights(), DefaultIntentConfig())
	require.NoError(t, err)

	t.Run("weighted blend", func(t *testing.T) {
		// 0.3*0.70 + 0.5*0.10 + 0.2*0 = 0.26
		assert.Equal(t, 26.0, scorer.Calculate(70, 10, 0))
	})

	t.Run("all components zero", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.Calculate(0, 0, 0))
	})

	t.Run("maximal components reach 100 for any valid weights", func(t *testing.T) {
		for _, w := range []Weights{
			DefaultWeights(),
			{Context: 0.2, Timing: 0.6, Intent: 0.2},
			{Context: 1, Timing: 0, Intent: 0},
		} {
			s, err := NewReadinessScorer(w, DefaultIntentConfig())
			require.NoError(t, err)
			assert.Equal(t, 100.0, s.Calculate(100, 100, 100), "weights=%+v", w)
		}
	})
}

func TestDetectIntentSignals(t *testing.T) {
	scorer, err := NewReadinessScorer(DefaultWeights(), DefaultIntentConfig())
	require.NoError(t, err)

	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("no signals score zero", func(t *testing.T) {
		node := identity.NewNode(identity.PlatformGitHub, "alice").
			WithProfile(identity.Profile{Bio: "Distributed systems engineer"})
		assert.Equal(t, 0.0, scorer.DetectIntentSignals(node))
	})

	t.Run("bio keywords add twenty each", func(t *testing.T) {
		node := identity.NewNode(identity.PlatformGitHub, "alice").
			WithProfile(identity.Profile{Bio: "Hiring engineers, open to collaboration"})
		// hiring + open to + collaboration = 60.
		assert.Equal(t, 60.0, scorer.DetectIntentSignals(node))
	})

	t.Run("bio fallback through description extra", func(t *testing.T) {
		node := identity.NewNode(identity.PlatformTwitter, "alice").
			WithProfile(identity.Profile{Extra: map[string]any{"description": "open to new roles"}})
		assert.Equal(t, 20.0, scorer.DetectIntentSignals(node))
	})

	t.Run("activity keywords add ten per activity", func(t *testing.T) {
		node := identity.NewNode(identity.PlatformGitHub, "alice")
		node.AddActivity(identity.NewActivityEvent(
			identity.PlatformGitHub, "post", "DM me if interested", base))
		node.AddActivity(identity.NewActivityEvent(
			identity.PlatformGitHub, "post", "shipped a release", base.Add(time.Hour)))
		assert.Equal(t, 10.0, scorer.DetectIntentSignals(node))
	})

	t.Run("only the most recent activities are scanned", func(t *testing.T) {
		node := identity.NewNode(identity.PlatformGitHub, "alice")
		// Signal-bearing activity first, then five newer plain ones pushing
		// it out of the recent window.
		node.AddActivity(identity.NewActivityEvent(
			identity.PlatformGitHub, "post", "open to collaboration", base))
		for i := 1; i <= 5; i++ {
			node.AddActivity(identity.NewActivityEvent(
				identity.PlatformGitHub, "commit", "routine work",
				base.Add(time.Duration(i)*time.Hour)))
		}
		assert.Equal(t, 0.0, scorer.DetectIntentSignals(node))
	})

	t.Run("clamped at max score", func(t *testing.T) {
		node := identity.NewNode(identity.PlatformGitHub, "alice").
			WithProfile(identity.Profile{
				Bio: "hiring, looking for, seeking, open to, available for, dm me, connect",
			})
		// 7 bio hits * 20 = 140, clamped.
		assert.Equal(t, 100.0, scorer.DetectIntentSignals(node))
	})
}
