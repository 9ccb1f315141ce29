package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// MomentumConfig tunes the momentum model. All values are hand-calibrated
// design parameters, not derived quantities.
type MomentumConfig struct {
	// DecayFactor is the base of the exponential time decay, in (0,1).
	// A same-day activity weighs 1.0, an activity one day old weighs
	// DecayFactor, two days old DecayFactor squared, and so on.
	DecayFactor float64 `json:"decay_factor" yaml:"decay_factor"`

	// NormalizationDivisor encodes the calibration assumption that this
	// many same-day-equivalent activity units represent maximum momentum.
	NormalizationDivisor float64 `json:"normalization_divisor" yaml:"normalization_divisor"`

	// BurstThreshold is the minimum activity count on one calendar date
	// for the date to qualify as a burst.
	BurstThreshold int `json:"burst_threshold" yaml:"burst_threshold"`

	// HighBurstThreshold is the activity count at which a burst is labeled
	// high intensity instead of moderate.
	HighBurstThreshold int `json:"high_burst_threshold" yaml:"high_burst_threshold"`

	// BurstWindowDays bounds the burst lookback: activities older than
	// this many days are excluded before grouping. Zero or negative
	// disables the filter.
	BurstWindowDays int `json:"burst_window_days" yaml:"burst_window_days"`
}

// DefaultMomentumConfig returns the calibrated defaults: 0.8 decay, 30-unit
// normalization, bursts at 3 activities per day (high at 5), 7-day window.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		DecayFactor:          0.8,
		NormalizationDivisor: 30,
		BurstThreshold:       3,
		HighBurstThreshold:   5,
		BurstWindowDays:      7,
	}
}

// Validate checks the configuration for usable values.
func (c MomentumConfig) Validate() error {
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("decay factor must be in (0,1), got %v", c.DecayFactor)
	}
	if c.NormalizationDivisor <= 0 {
		return fmt.Errorf("normalization divisor must be positive, got %v", c.NormalizationDivisor)
	}
	if c.BurstThreshold < 1 {
		return fmt.Errorf("burst threshold must be at least 1, got %d", c.BurstThreshold)
	}
	if c.HighBurstThreshold < c.BurstThreshold {
		return fmt.Errorf("high burst threshold %d is below burst threshold %d",
			c.HighBurstThreshold, c.BurstThreshold)
	}
	return nil
}

// BurstIntensity labels how strong a burst day was.
type BurstIntensity string

const (
	// IntensityModerate marks a burst at or above the burst threshold.
	IntensityModerate BurstIntensity = "moderate"

	// IntensityHigh marks a burst at or above the high threshold.
	IntensityHigh BurstIntensity = "high"
)

// BurstPeriod describes one calendar date whose activity count crossed the
// burst threshold.
type BurstPeriod struct {
	// Date is the calendar date in ISO format (UTC).
	Date string `json:"date"`

	// ActivityCount is the number of activities on that date.
	ActivityCount int `json:"activity_count"`

	// Intensity is high or moderate.
	Intensity BurstIntensity `json:"intensity"`
}

// MomentumScorer computes activity-recency momentum with exponential time
// decay. High momentum means actively engaged: a good time to connect.
type MomentumScorer struct {
	cfg MomentumConfig
	now func() time.Time
}

// NewMomentumScorer creates a scorer with the given configuration. Invalid
// fields are replaced by defaults; call cfg.Validate first to reject them
// instead.
func NewMomentumScorer(cfg MomentumConfig) *MomentumScorer {
	def := DefaultMomentumConfig()
	if cfg.DecayFactor <= 0 || cfg.DecayFactor >= 1 {
		cfg.DecayFactor = def.DecayFactor
	}
	if cfg.NormalizationDivisor <= 0 {
		cfg.NormalizationDivisor = def.NormalizationDivisor
	}
	if cfg.BurstThreshold < 1 {
		cfg.BurstThreshold = def.BurstThreshold
	}
	if cfg.HighBurstThreshold < cfg.BurstThreshold {
		cfg.HighBurstThreshold = cfg.BurstThreshold + (def.HighBurstThreshold - def.BurstThreshold)
	}
	return &MomentumScorer{cfg: cfg, now: time.Now}
}

// WithClock overrides the scorer's time source and returns the scorer for
// chaining. Intended for tests.
func (s *MomentumScorer) WithClock(now func() time.Time) *MomentumScorer {
	if now != nil {
		s.now = now
	}
	return s
}

// Config returns the scorer's effective configuration.
func (s *MomentumScorer) Config() MomentumConfig {
	return s.cfg
}

// Calculate returns the momentum score in [0,100] for the given activities.
//
// Each activity contributes DecayFactor raised to the whole days elapsed
// since it occurred; the contributions are summed, normalized against
// NormalizationDivisor, clamped to 100 and rounded to two decimals. An empty
// list scores exactly 0.
//
// Interpretive bands: 0-30 dormant, 30-60 moderate, 60-80 active,
// 80-100 very active. See MomentumBand.
func (s *MomentumScorer) Calculate(activities []identity.ActivityEvent) float64 {
	if len(activities) == 0 {
		return 0.0
	}

	now := s.now().UTC()
	sum := 0.0
	for _, act := range activities {
		daysAgo := wholeDaysBetween(act.Timestamp, now)
		sum += math.Pow(s.cfg.DecayFactor, float64(daysAgo))
	}

	score := math.Min(100, sum/s.cfg.NormalizationDivisor*100)
	return round2(score)
}

// BurstPeriods groups activities by calendar date and returns the dates
// whose count reached the burst threshold, most recent first.
//
// windowDays bounds the lookback from now; activities older than the window
// are excluded before grouping. Pass 0 or a negative value to consider the
// full activity list.
func (s *MomentumScorer) BurstPeriods(activities []identity.ActivityEvent, windowDays int) []BurstPeriod {
	if len(activities) == 0 {
		return nil
	}

	now := s.now().UTC()
	var cutoff time.Time
	if windowDays > 0 {
		cutoff = now.AddDate(0, 0, -windowDays)
	}

	counts := make(map[string]int)
	for _, act := range activities {
		if windowDays > 0 && act.Timestamp.Before(cutoff) {
			continue
		}
		counts[act.Timestamp.UTC().Format(time.DateOnly)]++
	}

	var bursts []BurstPeriod
	for date, count := range counts {
		if count < s.cfg.BurstThreshold {
			continue
		}
		intensity := IntensityModerate
		if count >= s.cfg.HighBurstThreshold {
			intensity = IntensityHigh
		}
		bursts = append(bursts, BurstPeriod{
			Date:          date,
			ActivityCount: count,
			Intensity:     intensity,
		})
	}

	// ISO dates sort lexicographically; descending puts the most recent first.
	sort.Slice(bursts, func(i, j int) bool {
		return bursts[i].Date > bursts[j].Date
	})
	return bursts
}

// MomentumBand returns the interpretive label for a momentum score:
// dormant, moderate, active, or very active.
func MomentumBand(score float64) string {
	switch {
	case score >= 80:
		return "very active"
	case score >= 60:
		return "active"
	case score >= 30:
		return "moderate"
	default:
		return "dormant"
	}
}

// wholeDaysBetween returns the number of whole days from a to b, floored,
// matching calendar-difference semantics: a future timestamp yields a
// negative count.
func wholeDaysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
