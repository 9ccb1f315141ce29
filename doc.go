// Package sdk provides the client SDK for the Nexus outreach intelligence
// engine.
//
// Nexus aggregates a person's public digital footprint across platforms
// (GitHub, Twitter, LinkedIn, Dev.to, Hashnode and others), cross-validates
// that the accounts belong to the same person, synthesizes a unified
// profile, and scores when to reach out: activity momentum, readiness, and
// a final win probability with a concrete recommendation.
//
// # Core Concepts
//
// The SDK is organized around several key concepts:
//
//   - Fetchers: per-platform sources that resolve an identifier into an
//     identity node with profile data and recent activity
//   - Graph: the cross-platform identity graph that cross-validates nodes
//     against each other and synthesizes a unified profile
//   - Scoring: momentum, readiness and win-probability calculations over
//     the aggregated activity stream
//   - Pipeline: the orchestrator tying fetch, graph and scoring into a
//     single Report per target
//
// # Getting Started
//
// Create a client, register fetchers, and analyze a target:
//
//	client, err := sdk.NewClient(
//	    sdk.WithSimulatedFetchers(identity.PlatformGitHub, identity.PlatformTwitter),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := client.Analyze(ctx, pipeline.Target{
//	    Identities: []pipeline.TargetIdentity{
//	        {Platform: identity.PlatformGitHub, Identifier: "jane-doe"},
//	        {Platform: identity.PlatformTwitter, Identifier: "jane-doe"},
//	    },
//	    ContextSimilarity: 0.8,
//	})
//
// The report carries the cross-validation score, unified profile, win
// probability with reasoning, predicted best outreach time, and the full
// graph export.
//
// # Distributed Fetching
//
// For production deployments the queue package runs fetchers as separate
// worker processes behind Redis job queues, and the registry package
// provides etcd-based worker discovery. The pipeline works identically
// against in-process fetchers, which is the default.
package sdk
