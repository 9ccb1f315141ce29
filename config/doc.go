// Package config loads engine configuration from JSON or YAML files.
//
// Config aggregates every tunable of the scoring model plus the pipeline's
// operational knobs, so a deployment can recalibrate the engine without code
// changes. Load detects the format by file extension and validates the
// result; Default returns the hand-calibrated defaults.
package config
