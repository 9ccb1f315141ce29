// Package pipeline orchestrates the full analysis flow: fan out platform
// fetches, assemble the identity graph, cross-validate, synthesize the
// unified profile and compute the outreach scores, ending in a single
// Report.
//
// The orchestrator is configured from config.Config, fetches through a
// fetch.Registry, and optionally persists reports to a checkpoint.Store and
// emits OpenTelemetry spans and metrics.
package pipeline
