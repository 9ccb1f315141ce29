package sdk

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexus-outreach/sdk/checkpoint"
	"github.com/nexus-outreach/sdk/config"
	"github.com/nexus-outreach/sdk/fetch"
	"github.com/nexus-outreach/sdk/identity"
)

// ClientOption configures the Client.
type ClientOption func(*clientConfig)

// clientConfig holds configuration for the Client instance.
type clientConfig struct {
	configPath  string
	cfg         *config.Config
	logger      *slog.Logger
	tracer      trace.Tracer
	meter       metric.Meter
	checkpoints checkpoint.Store
	fetchers    []fetch.Fetcher
}

// WithConfigFile sets the configuration file path for the client. The file
// may be YAML or JSON and overrides the built-in defaults section by
// section.
func WithConfigFile(path string) ClientOption {
	return func(c *clientConfig) {
		c.configPath = path
	}
}

// WithConfig sets the full configuration directly, bypassing file loading.
// Takes precedence over WithConfigFile.
func WithConfig(cfg config.Config) ClientOption {
	return func(c *clientConfig) {
		c.cfg = &cfg
	}
}

// WithLogger sets a custom logger for the client.
// If not provided, a default logger will be created.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for distributed tracing.
// Each analysis produces one span with score attributes.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *clientConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter. Score histograms and analysis
// counters are recorded per analysis.
func WithMeter(meter metric.Meter) ClientOption {
	return func(c *clientConfig) {
		c.meter = meter
	}
}

// WithCheckpointStore persists every report to the given store under the
// target's name, and enables LoadReport.
func WithCheckpointStore(store checkpoint.Store) ClientOption {
	return func(c *clientConfig) {
		c.checkpoints = store
	}
}

// WithFetchers registers the given fetchers at construction time.
// Additional fetchers can be registered later with RegisterFetcher.
func WithFetchers(fetchers ...fetch.Fetcher) ClientOption {
	return func(c *clientConfig) {
		c.fetchers = append(c.fetchers, fetchers...)
	}
}

// WithSimulatedFetchers registers deterministic simulated fetchers for the
// given platforms. Useful for development and tests without live platform
// access.
func WithSimulatedFetchers(platforms ...identity.Platform) ClientOption {
	return func(c *clientConfig) {
		for _, p := range platforms {
			c.fetchers = append(c.fetchers, fetch.NewSimulatedFetcher(p))
		}
	}
}
