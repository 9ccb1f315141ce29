package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexus-outreach/sdk/checkpoint"
	"github.com/nexus-outreach/sdk/config"
	"github.com/nexus-outreach/sdk/fetch"
	"github.com/nexus-outreach/sdk/graph"
	"github.com/nexus-outreach/sdk/identity"
	"github.com/nexus-outreach/sdk/scoring"
)

// ErrNoCheckpoints is returned by LoadReport when the orchestrator was
// built without a checkpoint store.
var ErrNoCheckpoints = errors.New("no checkpoint store configured")

// TargetIdentity names one platform handle of the person being analyzed.
type TargetIdentity struct {
	Platform   identity.Platform `json:"platform"`
	Identifier string            `json:"identifier"`
}

// Target describes one person to analyze across platforms.
type Target struct {
	// Name labels the report and its checkpoint key. Defaults to the first
	// identifier.
	Name string `json:"name,omitempty"`

	// Identities are the platform handles to fetch and correlate.
	Identities []TargetIdentity `json:"identities"`

	// ContextSimilarity is the externally computed profile-match quality in
	// [0,1], passed through to the win-probability calculation.
	ContextSimilarity float64 `json:"context_similarity"`
}

// Validate checks the target for usable values.
func (t Target) Validate() error {
	if len(t.Identities) == 0 {
		return fmt.Errorf("target needs at least one identity")
	}
	for i, id := range t.Identities {
		if !id.Platform.IsValid() {
			return fmt.Errorf("identity %d: invalid platform %s", i, id.Platform)
		}
		if id.Identifier == "" {
			return fmt.Errorf("identity %d: identifier is required", i)
		}
	}
	if t.ContextSimilarity < 0 || t.ContextSimilarity > 1 {
		return fmt.Errorf("context similarity must be in [0,1], got %v", t.ContextSimilarity)
	}
	return nil
}

// name returns the report label.
func (t Target) name() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Identities[0].Identifier
}

// FetchFailure records one platform fetch that did not produce data. The
// failed node still participates in the graph with FetchFailed status.
type FetchFailure struct {
	Platform   identity.Platform `json:"platform"`
	Identifier string            `json:"identifier"`
	Error      string            `json:"error"`
}

// Report is the complete analysis outcome for one target.
type Report struct {
	// SessionID uniquely identifies this analysis run.
	SessionID string `json:"session_id"`

	// Name is the target's label.
	Name string `json:"name"`

	// GeneratedAt is when the analysis completed.
	GeneratedAt time.Time `json:"generated_at"`

	// CrossValidation is the graph-wide identity confidence in [0,1].
	CrossValidation float64 `json:"cross_validation"`

	// Profile is the synthesized cross-platform profile.
	Profile graph.UnifiedProfile `json:"profile"`

	// WinProbability is the outreach scoring outcome.
	WinProbability scoring.WinProbability `json:"win_probability"`

	// BestTime is the predicted best day to reach out: "now", an ISO date,
	// or empty when no recent burst exists.
	BestTime string `json:"best_time,omitempty"`

	// Bursts lists detected activity bursts, most recent first.
	Bursts []scoring.BurstPeriod `json:"bursts,omitempty"`

	// Failures lists platforms whose fetch failed.
	Failures []FetchFailure `json:"failures,omitempty"`

	// Graph is the full node export for inspection and persistence.
	Graph graph.Export `json:"graph"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCheckpoints persists each report to the given store under the
// target's name.
func WithCheckpoints(store checkpoint.Store) Option {
	return func(o *Orchestrator) { o.checkpoints = store }
}

// WithClock overrides the orchestrator's time source (and its scorers').
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs the analysis pipeline.
type Orchestrator struct {
	fetchers    *fetch.Registry
	cfg         config.Config
	momentum    *scoring.MomentumScorer
	calc        *scoring.WinProbabilityCalculator
	checkpoints checkpoint.Store
	logger      *slog.Logger
	otelTracer  trace.Tracer
	otelMeter   metric.Meter
	otel        *otelInstruments
	now         func() time.Time
}

// New creates an orchestrator from validated configuration. Scorers and the
// optional CEL rule policy are built from cfg.
func New(fetchers *fetch.Registry, cfg config.Config, opts ...Option) (*Orchestrator, error) {
	if fetchers == nil {
		return nil, fmt.Errorf("fetcher registry is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	momentum := scoring.NewMomentumScorer(cfg.Momentum)
	readiness, err := scoring.NewReadinessScorer(cfg.Weights, cfg.Intent)
	if err != nil {
		return nil, err
	}

	calc := scoring.NewWinProbabilityCalculator(momentum, readiness).
		WithThresholds(cfg.Thresholds)
	if policy, err := cfg.CompileRules(); err != nil {
		return nil, err
	} else if policy != nil {
		calc.WithPolicy(policy)
	}

	o := &Orchestrator{
		fetchers: fetchers,
		cfg:      cfg,
		momentum: momentum,
		calc:     calc,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	calc.WithClock(o.now)

	if err := o.initOTel(); err != nil {
		return nil, err
	}
	return o, nil
}

// fetchOutcome pairs one target identity with its fetched node.
type fetchOutcome struct {
	index int
	node  *identity.Node
	err   error
}

// Analyze runs the full pipeline for one target: concurrent platform
// fetches, graph assembly, cross-validation, profile synthesis and scoring.
//
// A failed platform fetch does not abort the analysis; the failure is
// recorded on a FetchFailed node so downstream consumers see which sources
// are missing.
func (o *Orchestrator) Analyze(ctx context.Context, target Target) (*Report, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	name := target.name()
	sessionID := uuid.New().String()
	logger := o.logger.With("target", name, "session", sessionID)

	ctx, span := o.startSpan(ctx, name, sessionID, len(target.Identities))
	defer span.end()

	start := o.now()
	logger.Info("analysis started", "identities", len(target.Identities))

	outcomes := o.fetchAll(ctx, target.Identities)

	g := graph.NewGraph(graph.WithClock(o.now))
	var failures []FetchFailure
	for _, outcome := range outcomes {
		id := target.Identities[outcome.index]
		node := outcome.node
		if outcome.err != nil {
			node = identity.NewNode(id.Platform, id.Identifier)
			node.MarkFailed(outcome.err.Error())
			failures = append(failures, FetchFailure{
				Platform:   id.Platform,
				Identifier: id.Identifier,
				Error:      outcome.err.Error(),
			})
			logger.Warn("fetch failed", "platform", id.Platform, "error", outcome.err)
		}
		g.AddNode(node)
	}

	crossVal := g.CrossValidationScore()
	profile := g.SynthesizeProfile()

	aggregate := o.aggregateNode(target, profile, pooledActivities(g))
	win, err := o.calc.Calculate(aggregate, target.ContextSimilarity)
	if err != nil {
		return nil, err
	}

	bestTime, _ := o.calc.PredictBestTime(aggregate, o.cfg.Momentum.BurstWindowDays)
	bursts := o.momentum.BurstPeriods(aggregate.Activities, o.cfg.Momentum.BurstWindowDays)

	report := &Report{
		SessionID:       sessionID,
		Name:            name,
		GeneratedAt:     o.now().UTC(),
		CrossValidation: crossVal,
		Profile:         *profile,
		WinProbability:  win,
		BestTime:        bestTime,
		Bursts:          bursts,
		Failures:        failures,
		Graph:           g.ExportGraph(),
	}

	o.saveCheckpoint(ctx, name, report, logger)
	o.recordAnalysis(ctx, span, report, o.now().Sub(start))

	logger.Info("analysis complete",
		"cross_validation", crossVal,
		"probability", win.Probability,
		"recommendation", win.Recommendation,
		"failures", len(failures),
		"duration", o.now().Sub(start),
	)
	return report, nil
}

// fetchAll runs the platform fetches with bounded concurrency and a
// per-fetch timeout.
func (o *Orchestrator) fetchAll(ctx context.Context, identities []TargetIdentity) []fetchOutcome {
	timeout := time.Duration(o.cfg.Pipeline.FetchTimeoutSeconds) * time.Second
	sem := make(chan struct{}, o.cfg.Pipeline.FetchConcurrency)
	results := make(chan fetchOutcome, len(identities))

	for i, id := range identities {
		go func(index int, id TargetIdentity) {
			sem <- struct{}{}
			defer func() { <-sem }()

			fetcher, err := o.fetchers.Lookup(id.Platform)
			if err != nil {
				results <- fetchOutcome{index: index, err: err}
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			fetchCtx, done := o.traceFetch(fetchCtx, string(id.Platform))
			node, err := fetcher.Fetch(fetchCtx, id.Identifier)
			done(err)
			results <- fetchOutcome{index: index, node: node, err: err}
		}(i, id)
	}

	outcomes := make([]fetchOutcome, len(identities))
	for range identities {
		outcome := <-results
		outcomes[outcome.index] = outcome
	}
	return outcomes
}

// pooledActivities collects every node's full activity stream, newest
// first. The unified profile's aggregated list is capped for display; the
// scorers see everything.
func pooledActivities(g *graph.Graph) []identity.ActivityEvent {
	var activities []identity.ActivityEvent
	for _, node := range g.Nodes() {
		activities = append(activities, node.Activities...)
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	return activities
}

// aggregateNode builds the node the scorers run on: the synthesized profile
// fields plus the pooled activity stream.
func (o *Orchestrator) aggregateNode(target Target, profile *graph.UnifiedProfile, activities []identity.ActivityEvent) *identity.Node {
	node := identity.NewNode(target.Identities[0].Platform, target.name()).
		WithProfile(identity.Profile{
			Name:     profile.Name,
			Bio:      profile.Bio,
			Location: profile.Location,
			Company:  profile.Company,
		}).
		WithConfidence(profile.OverallConfidence)
	node.Activities = activities
	node.MarkSuccess(o.now())
	return node
}

// saveCheckpoint persists the report when a store is configured. Failures
// are logged, not fatal: the report is already in hand.
func (o *Orchestrator) saveCheckpoint(ctx context.Context, name string, report *Report, logger *slog.Logger) {
	if o.checkpoints == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		logger.Error("failed to marshal report for checkpoint", "error", err)
		return
	}
	if err := o.checkpoints.Save(ctx, name, data); err != nil {
		logger.Error("failed to save checkpoint", "error", err)
	}
}

// LoadReport restores a previously checkpointed report.
// Returns ErrNoCheckpoints when the orchestrator has no store.
func (o *Orchestrator) LoadReport(ctx context.Context, name string) (*Report, error) {
	if o.checkpoints == nil {
		return nil, ErrNoCheckpoints
	}

	data, err := o.checkpoints.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode checkpointed report: %w", err)
	}
	return &report, nil
}
