package graph

import (
	"sort"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// DefaultActivityLimit caps the aggregated activity list of a unified
// profile at the most recent entries.
const DefaultActivityLimit = 50

// PlatformProfile is one platform's contribution to a unified profile.
type PlatformProfile struct {
	// Identifier is the handle on the platform.
	Identifier string `json:"identifier"`

	// Confidence is the node's producer-defined confidence score.
	Confidence float64 `json:"confidence"`

	// Profile is the node's raw profile data.
	Profile identity.Profile `json:"profile"`
}

// UnifiedProfile is the synthesized single view of a person across all of
// their identity nodes. It is plain structured data with no behavior,
// suitable for JSON serialization.
type UnifiedProfile struct {
	// Name, Bio, Location and Company are taken from the primary node: the
	// node with the most populated profile fields. They are not merged
	// field-by-field across nodes.
	Name     string `json:"name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
	Company  string `json:"company,omitempty"`

	// OverallConfidence is the graph's cross-validation score.
	OverallConfidence float64 `json:"overall_confidence"`

	// Platforms maps each platform to its identity's contribution.
	Platforms map[identity.Platform]PlatformProfile `json:"platforms,omitempty"`

	// AggregatedActivity pools all nodes' activities, sorted by timestamp
	// descending and truncated to the most recent DefaultActivityLimit.
	AggregatedActivity []identity.ActivityEvent `json:"aggregated_activity,omitempty"`

	// LastUpdated is when this profile was synthesized.
	LastUpdated time.Time `json:"last_updated"`
}

// SynthesizeProfile merges all nodes into a unified profile and caches it on
// the graph for ExportGraph. Calling it repeatedly is idempotent given
// unchanged node contents, apart from the embedded synthesis timestamp.
//
// An empty graph yields an empty profile (not nil), which is not cached.
func (g *Graph) SynthesizeProfile() *UnifiedProfile {
	if len(g.nodes) == 0 {
		return &UnifiedProfile{}
	}

	primary := g.primaryNode()

	platforms := make(map[identity.Platform]PlatformProfile, len(g.nodes))
	var activities []identity.ActivityEvent
	for _, node := range g.Nodes() {
		platforms[node.Platform] = PlatformProfile{
			Identifier: node.Identifier,
			Confidence: node.ConfidenceScore,
			Profile:    node.Profile,
		}
		activities = append(activities, node.Activities...)
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > DefaultActivityLimit {
		activities = activities[:DefaultActivityLimit]
	}

	unified := &UnifiedProfile{
		Name:               primary.Name(),
		Bio:                primary.Bio(),
		Location:           primary.Location(),
		Company:            primary.Company(),
		OverallConfidence:  g.CrossValidationScore(),
		Platforms:          platforms,
		AggregatedActivity: activities,
		LastUpdated:        g.now().UTC(),
	}

	g.unified = unified
	return unified
}

// primaryNode selects the node with the most populated profile fields.
// Ties break by insertion order, which keeps synthesis deterministic.
func (g *Graph) primaryNode() *identity.Node {
	var primary *identity.Node
	best := -1
	for _, node := range g.Nodes() {
		if count := node.Profile.FieldCount(); count > best {
			best = count
			primary = node
		}
	}
	return primary
}
