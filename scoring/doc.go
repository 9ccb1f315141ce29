// Package scoring computes outreach-timing scores over identity nodes.
//
// Three layers build on each other:
//
//   - MomentumScorer: a 0-100 activity-recency score using exponential time
//     decay, plus activity-burst detection over calendar dates.
//   - ReadinessScorer: a weighted blend of context match, momentum and
//     explicit intent signals (keyword detection over bio/activity text).
//   - WinProbabilityCalculator: orchestrates the scorers into a final
//     recommendation and a best-time-to-contact prediction.
//
// All scorers are pure in-memory computation with no I/O and no logging.
// Every tunable (decay factor, normalization divisor, weights, keyword
// lists, decision thresholds) is named configuration with documented
// defaults rather than a hardcoded literal, so the model can be recalibrated
// without code changes.
//
// # Usage
//
//	momentum := scoring.NewMomentumScorer(scoring.DefaultMomentumConfig())
//	readiness, err := scoring.NewReadinessScorer(
//	    scoring.DefaultWeights(), scoring.DefaultIntentConfig())
//	if err != nil {
//	    return err
//	}
//
//	calc := scoring.NewWinProbabilityCalculator(momentum, readiness)
//	result, err := calc.Calculate(node, 0.7)
//
// Scores assume all activity timestamps are UTC-normalized; the identity
// package enforces this at construction.
package scoring
