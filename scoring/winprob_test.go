package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-outreach/sdk/identity"
)

func newCalculator(t *testing.T, now time.Time) *WinProbabilityCalculator {
	t.Helper()
	momentum := NewMomentumScorer(DefaultMomentumConfig())
	readiness, err := NewReadinessScorer(DefaultWeights(), DefaultIntentConfig())
	require.NoError(t, err)
	return NewWinProbabilityCalculator(momentum, readiness).WithClock(fixedClock(now))
}

func TestThresholdsRecommend(t *testing.T) {
	th := DefaultThresholds()

	cases := []struct {
		name      string
		readiness float64
		momentum  float64
		intent    float64
		want      Recommendation
	}{
		{"act now", 80, 65, 0, RecommendationActNow},
		{"good time", 60, 45, 0, RecommendationGoodTime},
		{"wait on low momentum", 40, 20, 0, RecommendationWait},
		{"consider on intent", 40, 35, 60, RecommendationConsider},
		{"monitor fallthrough", 40, 35, 10, RecommendationMonitor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := th.Recommend(ComponentScores{Timing: tc.momentum, Intent: tc.intent}, tc.readiness)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("act now takes precedence over later rows", func(t *testing.T) {
		got := th.Recommend(ComponentScores{Timing: 65, Intent: 90}, 80)
		assert.Equal(t, RecommendationActNow, got)
	})

	t.Run("wait fires even with high readiness", func(t *testing.T) {
		// Readiness can clear the GOOD TIME bar on context alone while the
		// person is dormant; low momentum still forces WAIT.
		got := th.Recommend(ComponentScores{Timing: 10, Intent: 0}, 55)
		assert.Equal(t, RecommendationWait, got)
	})
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	th := DefaultThresholds()
	th.WaitMomentum = 150
	assert.Error(t, th.Validate())
}

func TestWinProbabilityCalculate(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("rejects out-of-range context similarity", func(t *testing.T) {
		calc := newCalculator(t, now)
		node := identity.NewNode(identity.PlatformGitHub, "alice")
		_, err := calc.Calculate(node, 1.5)
		require.Error(t, err)
		_, err = calc.Calculate(node, -0.1)
		require.Error(t, err)
	})

	t.Run("dormant node with decent match waits", func(t *testing.T) {
		calc := newCalculator(t, now)
		node := identity.NewNode(identity.PlatformGitHub, "alice")
		node.AddActivity(commitAt(now.Add(-time.Hour)))
		node.AddActivity(commitAt(now.Add(-2 * time.Hour)))
		node.AddActivity(commitAt(now.AddDate(0, 0, -1)))

		result, err := calc.Calculate(node, 0.7)
		require.NoError(t, err)

		// Momentum (1+1+0.8)/30*100 = 9.33; readiness 0.3*70 + 0.5*9.33 = 25.67.
		assert.Equal(t, 9.33, result.MomentumScore)
		assert.Equal(t, 0.0, result.IntentScore)
		assert.Equal(t, 70.0, result.ContextScore)
		assert.InDelta(t, 25.67, result.Probability, 0.01)
		assert.Equal(t, RecommendationWait, result.Recommendation)
		assert.Contains(t, result.Reasoning, "low recent activity")
		assert.Contains(t, result.Reasoning, "strong profile match")
	})

	t.Run("highly active node acts now", func(t *testing.T) {
		calc := newCalculator(t, now)
		node := identity.NewNode(identity.PlatformGitHub, "alice").
			WithProfile(identity.Profile{Bio: "open to collaboration, hiring"})
		for i := 0; i < 25; i++ {
			node.AddActivity(commitAt(now.Add(-time.Duration(i) * time.Minute)))
		}

		result, err := calc.Calculate(node, 0.9)
		require.NoError(t, err)

		// Momentum 25/30*100 = 83.33, intent 60, context 90:
		// readiness 0.3*90 + 0.5*83.33 + 0.2*60 = 80.67.
		assert.Equal(t, 83.33, result.MomentumScore)
		assert.Equal(t, 60.0, result.IntentScore)
		assert.InDelta(t, 80.67, result.Probability, 0.01)
		assert.Equal(t, RecommendationActNow, result.Recommendation)
		assert.Contains(t, result.Reasoning, "currently very active")
		assert.Contains(t, result.Reasoning, "open signals")
	})

	t.Run("components echo the top-level scores", func(t *testing.T) {
		calc := newCalculator(t, now)
		node := identity.NewNode(identity.PlatformGitHub, "alice")
		node.AddActivity(commitAt(now.Add(-time.Hour)))

		result, err := calc.Calculate(node, 0.5)
		require.NoError(t, err)
		assert.Equal(t, result.MomentumScore, result.Components.Timing)
		assert.Equal(t, result.IntentScore, result.Components.Intent)
		assert.Equal(t, result.ContextScore, result.Components.Context)
	})
}

type fixedPolicy struct {
	rec Recommendation
	ok  bool
}

func (p fixedPolicy) Recommend(ComponentScores, float64) (Recommendation, bool) {
	return p.rec, p.ok
}

func TestWinProbabilityPolicyOverride(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	node := identity.NewNode(identity.PlatformGitHub, "alice")
	node.AddActivity(commitAt(now.Add(-time.Hour)))

	t.Run("policy result wins", func(t *testing.T) {
		calc := newCalculator(t, now).WithPolicy(fixedPolicy{RecommendationGoodTime, true})
		result, err := calc.Calculate(node, 0.5)
		require.NoError(t, err)
		assert.Equal(t, RecommendationGoodTime, result.Recommendation)
	})

	t.Run("declining policy falls through to the default table", func(t *testing.T) {
		calc := newCalculator(t, now).WithPolicy(fixedPolicy{ok: false})
		result, err := calc.Calculate(node, 0.5)
		require.NoError(t, err)
		assert.Equal(t, RecommendationWait, result.Recommendation)
	})
}

func TestPredictBestTime(t *testing.T) {
	t.Run("recent burst means now", func(t *testing.T) {
		now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
		calc := newCalculator(t, now)

		node := identity.NewNode(identity.PlatformGitHub, "alice")
		day := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			node.AddActivity(commitAt(day.Add(time.Duration(i) * time.Minute)))
		}

		best, ok := calc.PredictBestTime(node, 7)
		require.True(t, ok)
		assert.Equal(t, BestTimeNow, best)
	})

	t.Run("older burst projects a future date", func(t *testing.T) {
		now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
		calc := newCalculator(t, now)

		node := identity.NewNode(identity.PlatformGitHub, "alice")
		day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			node.AddActivity(commitAt(day.Add(time.Duration(i) * time.Minute)))
		}

		// Burst 4 whole days ago, 7-day cadence: 3 days from now.
		best, ok := calc.PredictBestTime(node, 7)
		require.True(t, ok)
		assert.Equal(t, "2024-01-08", best)
	})

	t.Run("no burst in the window", func(t *testing.T) {
		now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
		calc := newCalculator(t, now)

		node := identity.NewNode(identity.PlatformGitHub, "alice")
		node.AddActivity(commitAt(now.Add(-time.Hour)))

		_, ok := calc.PredictBestTime(node, 7)
		assert.False(t, ok)
	})

	t.Run("no activities at all", func(t *testing.T) {
		now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
		calc := newCalculator(t, now)
		_, ok := calc.PredictBestTime(identity.NewNode(identity.PlatformGitHub, "alice"), 7)
		assert.False(t, ok)
	})
}
