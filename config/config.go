package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nexus-outreach/sdk/rules"
	"github.com/nexus-outreach/sdk/scoring"
)

// PipelineConfig holds the orchestrator's operational knobs.
type PipelineConfig struct {
	// FetchConcurrency bounds the number of platform fetches running at
	// once.
	FetchConcurrency int `json:"fetch_concurrency" yaml:"fetch_concurrency"`

	// FetchTimeoutSeconds is the per-platform fetch deadline.
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds"`
}

// Validate checks the pipeline configuration for usable values.
func (c PipelineConfig) Validate() error {
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.FetchTimeoutSeconds < 1 {
		return fmt.Errorf("fetch timeout must be at least 1 second, got %d", c.FetchTimeoutSeconds)
	}
	return nil
}

// Config aggregates every tunable of the engine.
type Config struct {
	// Momentum tunes the activity-decay model.
	Momentum scoring.MomentumConfig `json:"momentum" yaml:"momentum"`

	// Weights blends the readiness components.
	Weights scoring.Weights `json:"weights" yaml:"weights"`

	// Intent tunes the keyword-based intent heuristic.
	Intent scoring.IntentConfig `json:"intent" yaml:"intent"`

	// Thresholds drives the recommendation decision table.
	Thresholds scoring.Thresholds `json:"thresholds" yaml:"thresholds"`

	// Rules optionally override the decision table with CEL expressions,
	// evaluated before the thresholds.
	Rules []rules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// Pipeline holds the orchestrator knobs.
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
}

// Default returns the calibrated default configuration.
func Default() Config {
	return Config{
		Momentum:   scoring.DefaultMomentumConfig(),
		Weights:    scoring.DefaultWeights(),
		Intent:     scoring.DefaultIntentConfig(),
		Thresholds: scoring.DefaultThresholds(),
		Pipeline: PipelineConfig{
			FetchConcurrency:    4,
			FetchTimeoutSeconds: 30,
		},
	}
}

// Validate checks every section, including compilability of the rule
// expressions.
func (c Config) Validate() error {
	if err := c.Momentum.Validate(); err != nil {
		return fmt.Errorf("momentum: %w", err)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if err := c.Intent.Validate(); err != nil {
		return fmt.Errorf("intent: %w", err)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if _, err := rules.NewRuleSet(c.Rules); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// CompileRules compiles the configured override rules into a policy, or
// returns nil when no rules are configured.
func (c Config) CompileRules() (*rules.RuleSet, error) {
	if len(c.Rules) == 0 {
		return nil, nil
	}
	return rules.NewRuleSet(c.Rules)
}

// Load reads a configuration file, detecting the format by extension
// (.json, .yaml, .yml). Sections absent from the file keep their defaults;
// the merged result is validated before being returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s (supported: .json, .yaml, .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
