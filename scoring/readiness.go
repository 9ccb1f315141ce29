package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nexus-outreach/sdk/identity"
)

// Weights blends the three readiness components. The weights must sum to
// 1.0; a configuration that does not is a caller error rejected by Validate,
// never silently renormalized.
//
// Timing (momentum) is weighted highest by default: when you reach out
// matters more than how well-matched you are.
type Weights struct {
	// Context weights the externally supplied profile-match score.
	Context float64 `json:"context" yaml:"context"`

	// Timing weights the momentum score.
	Timing float64 `json:"timing" yaml:"timing"`

	// Intent weights the explicit intent-signal score.
	Intent float64 `json:"intent" yaml:"intent"`
}

// DefaultWeights returns the calibrated defaults: 0.3 context, 0.5 timing,
// 0.2 intent.
func DefaultWeights() Weights {
	return Weights{Context: 0.3, Timing: 0.5, Intent: 0.2}
}

// weightSumTolerance absorbs float rounding when checking the sum.
const weightSumTolerance = 1e-9

// Validate rejects negative weights and weight sums different from 1.0.
func (w Weights) Validate() error {
	if w.Context < 0 || w.Timing < 0 || w.Intent < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if sum := w.Context + w.Timing + w.Intent; math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// IntentConfig tunes the keyword-based intent heuristic. The scoring is a
// simple additive heuristic, not a proportional model: each keyword present
// in a text adds its points once, and the total is clamped to MaxScore.
type IntentConfig struct {
	// Keywords are the openness cues scanned for, case-insensitively.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// BioPoints is added per keyword found in the bio.
	BioPoints float64 `json:"bio_points" yaml:"bio_points"`

	// ActivityPoints is added per keyword found in a recent activity.
	ActivityPoints float64 `json:"activity_points" yaml:"activity_points"`

	// RecentActivityCount bounds the scan to the N most recent activities
	// by timestamp.
	RecentActivityCount int `json:"recent_activity_count" yaml:"recent_activity_count"`

	// MaxScore clamps the total.
	MaxScore float64 `json:"max_score" yaml:"max_score"`
}

// DefaultIntentConfig returns the calibrated defaults: 20 points per bio
// hit, 10 per activity hit over the 5 most recent activities, clamped
// at 100.
func DefaultIntentConfig() IntentConfig {
	return IntentConfig{
		Keywords: []string{
			"hiring", "looking for", "seeking", "open to",
			"available for", "dm me", "connect", "collaboration",
			"opportunities", "recruiting", "join", "help wanted",
		},
		BioPoints:           20,
		ActivityPoints:      10,
		RecentActivityCount: 5,
		MaxScore:            100,
	}
}

// Validate checks the configuration for usable values.
func (c IntentConfig) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("intent keyword list is empty")
	}
	if c.BioPoints < 0 || c.ActivityPoints < 0 {
		return fmt.Errorf("intent points must be non-negative")
	}
	if c.RecentActivityCount < 0 {
		return fmt.Errorf("recent activity count must be non-negative, got %d", c.RecentActivityCount)
	}
	if c.MaxScore <= 0 {
		return fmt.Errorf("max score must be positive, got %v", c.MaxScore)
	}
	return nil
}

// ReadinessScorer blends context, momentum and intent into a single 0-100
// readiness value, and detects explicit intent signals on a node.
type ReadinessScorer struct {
	weights Weights
	intent  IntentConfig
}

// NewReadinessScorer creates a scorer from the given weights and intent
// configuration, validating both.
func NewReadinessScorer(weights Weights, intent IntentConfig) (*ReadinessScorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	if err := intent.Validate(); err != nil {
		return nil, fmt.Errorf("invalid intent config: %w", err)
	}
	return &ReadinessScorer{weights: weights, intent: intent}, nil
}

// Weights returns the scorer's weight configuration.
func (s *ReadinessScorer) Weights() Weights {
	return s.weights
}

// Calculate blends the three component scores (each assumed 0-100) into a
// weighted readiness score in [0,100], rounded to two decimals. Pure
// function, no side effects.
func (s *ReadinessScorer) Calculate(contextScore, momentumScore, intentScore float64) float64 {
	readiness := s.weights.Context*(contextScore/100) +
		s.weights.Timing*(momentumScore/100) +
		s.weights.Intent*(intentScore/100)
	return round2(readiness * 100)
}

// DetectIntentSignals scans the node's bio and most recent activities for
// the configured openness keywords and returns an intent score in
// [0,MaxScore].
//
// Each keyword present in the bio adds BioPoints once; each keyword present
// in one of the RecentActivityCount most recent activities adds
// ActivityPoints per activity it appears in. Absent bio or activities
// contribute zero.
func (s *ReadinessScorer) DetectIntentSignals(node *identity.Node) float64 {
	score := 0.0

	bio := strings.ToLower(node.Bio())
	if bio != "" {
		for _, keyword := range s.intent.Keywords {
			if strings.Contains(bio, keyword) {
				score += s.intent.BioPoints
			}
		}
	}

	for _, act := range recentActivities(node.Activities, s.intent.RecentActivityCount) {
		content := strings.ToLower(act.Content)
		for _, keyword := range s.intent.Keywords {
			if strings.Contains(content, keyword) {
				score += s.intent.ActivityPoints
			}
		}
	}

	return math.Min(s.intent.MaxScore, score)
}

// recentActivities returns the n most recent activities by timestamp,
// without mutating the input slice.
func recentActivities(activities []identity.ActivityEvent, n int) []identity.ActivityEvent {
	if n <= 0 || len(activities) == 0 {
		return nil
	}
	sorted := make([]identity.ActivityEvent, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
