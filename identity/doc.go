// Package identity provides the core value types for cross-platform identity
// resolution: platforms, activity events, cross-references, and identity nodes.
//
// An IdentityNode represents one platform-scoped identity (for example, a
// person's GitHub account). Nodes are populated by fetchers, added to a
// graph.Graph for cross-validation, and consumed read-only by the scoring
// packages.
//
// # Creating Nodes
//
// Nodes are built with a fluent API:
//
//	node := identity.NewNode(identity.PlatformGitHub, "alice").
//	    WithProfile(identity.Profile{
//	        Name:     "Alice Smith",
//	        Bio:      "Distributed systems. Open to collaboration.",
//	        Location: "Berlin",
//	    }).
//	    WithConfidence(1.0)
//
//	node.AddCrossReference(identity.PlatformTwitter, "alice", "bio")
//	node.AddActivity(identity.NewActivityEvent(
//	    identity.PlatformGitHub, "commit", "fix flaky retry test", time.Now()))
//	node.MarkSuccess(time.Now())
//
// # Timestamp Normalization
//
// All activity timestamps are normalized to UTC by NewActivityEvent so that
// events from different platforms are directly comparable. Nodes built by
// hand can be checked with Validate, which rejects non-UTC activity
// timestamps rather than stripping timezone information silently.
package identity
