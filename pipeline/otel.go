package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithOTel enables OpenTelemetry instrumentation: one span per analysis
// plus histograms and counters for the scores. Either argument may be nil
// to enable only tracing or only metrics.
func WithOTel(tracer trace.Tracer, meter metric.Meter) Option {
	return func(o *Orchestrator) {
		o.otelTracer = tracer
		o.otelMeter = meter
	}
}

// otelInstruments holds the metric instruments, created once in New and
// reused for every analysis.
type otelInstruments struct {
	// crossValHistogram records graph cross-validation scores (0.0 to 1.0).
	crossValHistogram metric.Float64Histogram

	// probabilityHistogram records win probabilities (0 to 100).
	probabilityHistogram metric.Float64Histogram

	// durationHistogram records analysis duration in milliseconds.
	durationHistogram metric.Float64Histogram

	// analysisCounter increments per analysis performed.
	analysisCounter metric.Int64Counter

	// fetchCounter increments per platform fetch attempted.
	fetchCounter metric.Int64Counter

	// failureCounter increments per failed platform fetch.
	failureCounter metric.Int64Counter
}

// initOTel creates the metric instruments when a meter is configured.
func (o *Orchestrator) initOTel() error {
	if o.otelMeter == nil {
		return nil
	}

	inst := &otelInstruments{}
	var err error

	inst.crossValHistogram, err = o.otelMeter.Float64Histogram(
		"pipeline.cross_validation",
		metric.WithDescription("Graph cross-validation score from 0.0 (contradictory) to 1.0 (confirmed)"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create cross-validation histogram: %w", err)
	}

	inst.probabilityHistogram, err = o.otelMeter.Float64Histogram(
		"pipeline.win_probability",
		metric.WithDescription("Outreach win probability from 0 to 100"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create probability histogram: %w", err)
	}

	inst.durationHistogram, err = o.otelMeter.Float64Histogram(
		"pipeline.duration",
		metric.WithDescription("Analysis duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}

	inst.analysisCounter, err = o.otelMeter.Int64Counter(
		"pipeline.analyses",
		metric.WithDescription("Number of analyses performed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create analysis counter: %w", err)
	}

	inst.fetchCounter, err = o.otelMeter.Int64Counter(
		"pipeline.fetches",
		metric.WithDescription("Number of platform fetches attempted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create fetch counter: %w", err)
	}

	inst.failureCounter, err = o.otelMeter.Int64Counter(
		"pipeline.fetch_failures",
		metric.WithDescription("Number of failed platform fetches"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create failure counter: %w", err)
	}

	o.otel = inst
	return nil
}

// analysisSpan wraps the optional trace span so the pipeline code stays
// nil-safe when tracing is off.
type analysisSpan struct {
	span trace.Span
}

func (s analysisSpan) end() {
	if s.span != nil {
		s.span.End()
	}
}

// startSpan opens the analysis span when a tracer is configured.
func (o *Orchestrator) startSpan(ctx context.Context, target, sessionID string, identities int) (context.Context, analysisSpan) {
	if o.otelTracer == nil {
		return ctx, analysisSpan{}
	}

	ctx, span := o.otelTracer.Start(ctx, "pipeline.analyze")
	span.SetAttributes(
		attribute.String("target.name", target),
		attribute.String("session.id", sessionID),
		attribute.Int("target.identities", identities),
	)
	return ctx, analysisSpan{span: span}
}

// traceFetch wraps one platform fetch in a child span and counts it. The
// returned done func records the outcome.
func (o *Orchestrator) traceFetch(ctx context.Context, platform string) (context.Context, func(err error)) {
	if o.otel != nil {
		o.otel.fetchCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("platform", platform)))
	}

	if o.otelTracer == nil {
		return ctx, func(error) {}
	}

	ctx, span := o.otelTracer.Start(ctx, "pipeline.fetch")
	span.SetAttributes(attribute.String("platform", platform))
	return ctx, func(err error) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// recordAnalysis captures span attributes and metrics for a completed
// analysis. Skips silently when OTel is not configured.
func (o *Orchestrator) recordAnalysis(ctx context.Context, span analysisSpan, report *Report, duration time.Duration) {
	if span.span != nil {
		span.span.SetAttributes(
			attribute.Float64("pipeline.cross_validation", report.CrossValidation),
			attribute.Float64("pipeline.win_probability", report.WinProbability.Probability),
			attribute.String("pipeline.recommendation", string(report.WinProbability.Recommendation)),
			attribute.Int("pipeline.fetch_failures", len(report.Failures)),
			attribute.Float64("pipeline.duration_ms", float64(duration.Milliseconds())),
		)
		if len(report.Failures) == len(report.Graph.Nodes) && len(report.Failures) > 0 {
			span.span.SetStatus(codes.Error, "all platform fetches failed")
		} else {
			span.span.SetStatus(codes.Ok, "")
		}
	}

	if o.otel == nil {
		return
	}

	opts := metric.WithAttributes(attribute.String("target.name", report.Name))
	o.otel.crossValHistogram.Record(ctx, report.CrossValidation, opts)
	o.otel.probabilityHistogram.Record(ctx, report.WinProbability.Probability, opts)
	o.otel.durationHistogram.Record(ctx, float64(duration.Milliseconds()), opts)
	o.otel.analysisCounter.Add(ctx, 1, opts)
	if len(report.Failures) > 0 {
		o.otel.failureCounter.Add(ctx, int64(len(report.Failures)), opts)
	}
}
