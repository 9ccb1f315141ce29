package sdk

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nexus-outreach/sdk/config"
	"github.com/nexus-outreach/sdk/fetch"
	"github.com/nexus-outreach/sdk/identity"
	"github.com/nexus-outreach/sdk/pipeline"
)

// Client is the high-level entry point: a fetcher registry plus the
// analysis pipeline behind one API.
type Client struct {
	fetchers     *fetch.Registry
	orchestrator *pipeline.Orchestrator
	logger       *slog.Logger
}

// NewClient creates a client instance.
//
// Example:
//
//	client, err := sdk.NewClient(
//	    sdk.WithConfigFile("/path/to/config.yaml"),
//	    sdk.WithSimulatedFetchers(identity.PlatformGitHub),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewClient(opts ...ClientOption) (*Client, error) {
	cc := &clientConfig{}
	for _, opt := range opts {
		opt(cc)
	}

	if cc.logger == nil {
		cc.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	cfg, err := resolveConfig(cc)
	if err != nil {
		return nil, NewConfigurationError("Client.New", fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	fetchers := fetch.NewRegistry()
	for _, f := range cc.fetchers {
		if err := fetchers.Register(f); err != nil {
			return nil, NewValidationError("Client.New", err)
		}
	}

	pipelineOpts := []pipeline.Option{pipeline.WithLogger(cc.logger)}
	if cc.checkpoints != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithCheckpoints(cc.checkpoints))
	}
	if cc.tracer != nil || cc.meter != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithOTel(cc.tracer, cc.meter))
	}

	orchestrator, err := pipeline.New(fetchers, cfg, pipelineOpts...)
	if err != nil {
		return nil, NewConfigurationError("Client.New", fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	return &Client{
		fetchers:     fetchers,
		orchestrator: orchestrator,
		logger:       cc.logger,
	}, nil
}

// resolveConfig picks the effective configuration: explicit struct, then
// config file, then built-in defaults.
func resolveConfig(cc *clientConfig) (config.Config, error) {
	if cc.cfg != nil {
		return *cc.cfg, nil
	}
	if cc.configPath != "" {
		return config.Load(cc.configPath)
	}
	return config.Default(), nil
}

// RegisterFetcher adds a platform fetcher to the client.
// Only one fetcher per platform is allowed.
func (c *Client) RegisterFetcher(f fetch.Fetcher) error {
	if err := c.fetchers.Register(f); err != nil {
		return NewValidationError("Client.RegisterFetcher", err)
	}
	return nil
}

// Platforms returns the platforms with a registered fetcher, sorted.
func (c *Client) Platforms() []identity.Platform {
	return c.fetchers.Platforms()
}

// Analyze runs the full pipeline for one target and returns the report.
func (c *Client) Analyze(ctx context.Context, target pipeline.Target) (*pipeline.Report, error) {
	report, err := c.orchestrator.Analyze(ctx, target)
	if err != nil {
		return nil, NewExecutionError("Client.Analyze", fmt.Errorf("%w: %w", ErrAnalysisFailed, err)).
			WithContext(map[string]any{
				"identities": len(target.Identities),
			})
	}
	return report, nil
}

// LoadReport restores a previously checkpointed report by target name.
// Requires WithCheckpointStore.
func (c *Client) LoadReport(ctx context.Context, name string) (*pipeline.Report, error) {
	report, err := c.orchestrator.LoadReport(ctx, name)
	if err != nil {
		return nil, NewNotFoundError("Client.LoadReport", err).WithContext(map[string]any{
			"name": name,
		})
	}
	return report, nil
}
