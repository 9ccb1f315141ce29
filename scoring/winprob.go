package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// Recommendation is the action suggested by the win-probability decision
// table.
type Recommendation string

const (
	// RecommendationActNow signals a high engagement window.
	RecommendationActNow Recommendation = "ACT NOW - high engagement window"

	// RecommendationGoodTime signals moderately favorable timing.
	RecommendationGoodTime Recommendation = "GOOD TIME - moderately active"

	// RecommendationWait signals a dormant period.
	RecommendationWait Recommendation = "WAIT - low activity (dormant period)"

	// RecommendationConsider signals openness despite low activity.
	RecommendationConsider Recommendation = "CONSIDER - open but not very active"

	// RecommendationMonitor signals waiting for higher activity.
	RecommendationMonitor Recommendation = "MONITOR - wait for higher activity"
)

// BestTimeNow is returned by PredictBestTime when the most recent burst is
// close enough that the best time to reach out is immediately.
const BestTimeNow = "now"

// Thresholds drives the recommendation decision table. Rows are evaluated
// in order; the first match wins.
type Thresholds struct {
	// ActNowReadiness and ActNowMomentum gate the ACT NOW row.
	ActNowReadiness float64 `json:"act_now_readiness" yaml:"act_now_readiness"`
	ActNowMomentum  float64 `json:"act_now_momentum" yaml:"act_now_momentum"`

	// GoodTimeReadiness and GoodTimeMomentum gate the GOOD TIME row.
	GoodTimeReadiness float64 `json:"good_time_readiness" yaml:"good_time_readiness"`
	GoodTimeMomentum  float64 `json:"good_time_momentum" yaml:"good_time_momentum"`

	// WaitMomentum is the momentum below which WAIT fires.
	WaitMomentum float64 `json:"wait_momentum" yaml:"wait_momentum"`

	// ConsiderIntent is the intent at or above which CONSIDER fires.
	ConsiderIntent float64 `json:"consider_intent" yaml:"consider_intent"`
}

// DefaultThresholds returns the calibrated decision-table defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActNowReadiness:   75,
		ActNowMomentum:    60,
		GoodTimeReadiness: 50,
		GoodTimeMomentum:  40,
		WaitMomentum:      30,
		ConsiderIntent:    50,
	}
}

// Validate checks the thresholds for usable values.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"act_now_readiness":   t.ActNowReadiness,
		"act_now_momentum":    t.ActNowMomentum,
		"good_time_readiness": t.GoodTimeReadiness,
		"good_time_momentum":  t.GoodTimeMomentum,
		"wait_momentum":       t.WaitMomentum,
		"consider_intent":     t.ConsiderIntent,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("threshold %s must be in [0,100], got %v", name, v)
		}
	}
	return nil
}

// ComponentScores echoes the three readiness components of a win
// probability result.
type ComponentScores struct {
	// Context is the caller-supplied similarity, rescaled to 0-100.
	Context float64 `json:"context"`

	// Timing is the momentum score.
	Timing float64 `json:"timing"`

	// Intent is the intent-signal score.
	Intent float64 `json:"intent"`
}

// WinProbability is the final outcome of the scoring pipeline for one node:
// plain structured data, suitable for JSON serialization.
type WinProbability struct {
	// Probability is the readiness score, 0-100.
	Probability float64 `json:"probability"`

	// MomentumScore, IntentScore and ContextScore are the components.
	MomentumScore float64 `json:"momentum_score"`
	IntentScore   float64 `json:"intent_score"`
	ContextScore  float64 `json:"context_score"`

	// Recommendation is the first matching decision-table row.
	Recommendation Recommendation `json:"recommendation"`

	// Reasoning is a short human-readable explanation from the score bands.
	Reasoning string `json:"reasoning"`

	// Components echoes the three component scores.
	Components ComponentScores `json:"component_scores"`
}

// RecommendationPolicy lets hosts override the built-in decision table,
// for example with compiled rule expressions. Recommend returns false to
// fall through to the default table.
type RecommendationPolicy interface {
	Recommend(scores ComponentScores, readiness float64) (Recommendation, bool)
}

// WinProbabilityCalculator orchestrates the momentum and readiness scorers
// into a final recommendation and a best-time-to-contact prediction.
type WinProbabilityCalculator struct {
	momentum   *MomentumScorer
	readiness  *ReadinessScorer
	thresholds Thresholds
	policy     RecommendationPolicy
	now        func() time.Time
}

// NewWinProbabilityCalculator creates a calculator over the given scorers
// with the default decision thresholds.
func NewWinProbabilityCalculator(momentum *MomentumScorer, readiness *ReadinessScorer) *WinProbabilityCalculator {
	return &WinProbabilityCalculator{
		momentum:   momentum,
		readiness:  readiness,
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
}

// WithThresholds overrides the decision-table thresholds and returns the
// calculator for chaining.
func (c *WinProbabilityCalculator) WithThresholds(t Thresholds) *WinProbabilityCalculator {
	c.thresholds = t
	return c
}

// WithPolicy installs a custom recommendation policy consulted before the
// built-in decision table, and returns the calculator for chaining.
func (c *WinProbabilityCalculator) WithPolicy(p RecommendationPolicy) *WinProbabilityCalculator {
	c.policy = p
	return c
}

// WithClock overrides the calculator's time source (and the underlying
// momentum scorer's) and returns the calculator for chaining. Intended for
// tests.
func (c *WinProbabilityCalculator) WithClock(now func() time.Time) *WinProbabilityCalculator {
	if now != nil {
		c.now = now
		c.momentum.WithClock(now)
	}
	return c
}

// Calculate computes the win probability for reaching out to the node's
// owner now.
//
// contextSimilarity is the externally computed profile-match quality in
// [0,1]; this calculator treats it as an opaque input and does not compute
// semantic similarity itself. An out-of-range value is rejected.
func (c *WinProbabilityCalculator) Calculate(node *identity.Node, contextSimilarity float64) (WinProbability, error) {
	if contextSimilarity < 0 || contextSimilarity > 1 {
		return WinProbability{}, fmt.Errorf("context similarity must be in [0,1], got %v", contextSimilarity)
	}

	momentum := c.momentum.Calculate(node.Activities)
	intent := c.readiness.DetectIntentSignals(node)
	context := contextSimilarity * 100

	readiness := c.readiness.Calculate(context, momentum, intent)

	scores := ComponentScores{Context: context, Timing: momentum, Intent: intent}
	recommendation := c.recommend(scores, readiness)

	return WinProbability{
		Probability:    readiness,
		MomentumScore:  momentum,
		IntentScore:    intent,
		ContextScore:   context,
		Recommendation: recommendation,
		Reasoning:      buildReasoning(momentum, intent, context),
		Components:     scores,
	}, nil
}

// recommend consults the custom policy first, then walks the built-in
// decision table in order, first match wins.
func (c *WinProbabilityCalculator) recommend(scores ComponentScores, readiness float64) Recommendation {
	if c.policy != nil {
		if rec, ok := c.policy.Recommend(scores, readiness); ok {
			return rec
		}
	}
	return c.thresholds.Recommend(scores, readiness)
}

// Recommend evaluates the decision table for the given scores. Exposed so
// custom policies can fall back to the default rows explicitly.
func (t Thresholds) Recommend(scores ComponentScores, readiness float64) Recommendation {
	momentum := scores.Timing
	intent := scores.Intent

	switch {
	case readiness >= t.ActNowReadiness && momentum >= t.ActNowMomentum:
		return RecommendationActNow
	case readiness >= t.GoodTimeReadiness && momentum >= t.GoodTimeMomentum:
		return RecommendationGoodTime
	case momentum < t.WaitMomentum:
		return RecommendationWait
	case intent >= t.ConsiderIntent:
		return RecommendationConsider
	default:
		return RecommendationMonitor
	}
}

// buildReasoning concatenates qualitative descriptions of the momentum,
// intent and context bands.
func buildReasoning(momentum, intent, context float64) string {
	var reasons []string

	switch {
	case momentum >= 70:
		reasons = append(reasons, "currently very active")
	case momentum >= 40:
		reasons = append(reasons, "moderately active")
	default:
		reasons = append(reasons, "low recent activity")
	}

	if intent >= 50 {
		reasons = append(reasons, "shows open signals in profile/activity")
	} else if intent > 0 {
		reasons = append(reasons, "some receptivity signals detected")
	}

	if context >= 70 {
		reasons = append(reasons, "strong profile match")
	} else if context >= 50 {
		reasons = append(reasons, "good profile alignment")
	}

	return strings.Join(reasons, "; ")
}

// PredictBestTime predicts the best day within the next daysAhead days to
// reach out, based on the node's most recent activity burst.
//
// It returns BestTimeNow when the latest burst was at most two days ago, an
// ISO date assuming a naive daysAhead-day periodicity otherwise, and
// ok=false when no burst exists within the lookback. The periodicity is a
// heuristic placeholder: it looks only at the single most recent burst, not
// at an actual recurring cadence.
func (c *WinProbabilityCalculator) PredictBestTime(node *identity.Node, daysAhead int) (string, bool) {
	if daysAhead <= 0 {
		daysAhead = 7
	}

	// Bound the burst lookback to the prediction horizon so the projected
	// date always lands in the future.
	bursts := c.momentum.BurstPeriods(node.Activities, daysAhead)
	if len(bursts) == 0 {
		return "", false
	}

	burstDate, err := time.Parse(time.DateOnly, bursts[0].Date)
	if err != nil {
		return "", false
	}

	now := c.now().UTC()
	daysSince := wholeDaysBetween(burstDate, now)
	if daysSince <= 2 {
		return BestTimeNow, true
	}

	next := now.AddDate(0, 0, daysAhead-daysSince)
	return next.Format(time.DateOnly), true
}
