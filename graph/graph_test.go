package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-outreach/sdk/identity"
)

func newTestNode(platform identity.Platform, id string, profile identity.Profile) *identity.Node {
	node := identity.NewNode(platform, id).WithProfile(profile).WithConfidence(1.0)
	node.MarkSuccess(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	return node
}

func TestAddAndGetNode(t *testing.T) {
	g := NewGraph()

	key := g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{}))
	assert.Equal(t, "github:alice", key)
	assert.Equal(t, 1, g.Len())

	node, ok := g.GetNode(identity.PlatformGitHub, "alice")
	require.True(t, ok)
	assert.Equal(t, "alice", node.Identifier)

	_, ok = g.GetNode(identity.PlatformTwitter, "alice")
	assert.False(t, ok)
}

func TestAddNodeOverwritesSilently(t *testing.T) {
	g := NewGraph()
	g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{Name: "Old"}))
	g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{Name: "New"}))

	assert.Equal(t, 1, g.Len())
	node, _ := g.GetNode(identity.PlatformGitHub, "alice")
	assert.Equal(t, "New", node.Name())
}

func TestSingleNodeNeutrality(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, 0.5, g.CrossValidationScore(), "empty graph is neutral")

	g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{
		Name: "Alice Smith", Bio: "lots of data", Location: "Berlin", Company: "Acme",
	}))
	assert.Equal(t, 0.5, g.CrossValidationScore(),
		"single node is neutral regardless of content")
}

func TestCrossValidationSymmetry(t *testing.T) {
	n1 := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{
		Name: "Alice Smith", Location: "Berlin",
	})
	n1.AddCrossReference(identity.PlatformTwitter, "alice", "bio")
	n2 := newTestNode(identity.PlatformTwitter, "alice", identity.Profile{
		Name: "Alice", Location: "Berlin, Germany",
	})

	forward := NewGraph()
	forward.AddNode(n1)
	forward.AddNode(n2)

	reverse := NewGraph()
	reverse.AddNode(n2)
	reverse.AddNode(n1)

	assert.Equal(t, forward.CrossValidationScore(), reverse.CrossValidationScore())
}

func TestPerfectMatchCeiling(t *testing.T) {
	n1 := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{
		Name:     "Alice Smith",
		Bio:      "distributed systems and observability tooling",
		Location: "Berlin",
		Company:  "Acme",
	})
	n1.AddCrossReference(identity.PlatformTwitter, "alice", "bio")

	n2 := newTestNode(identity.PlatformTwitter, "alice", identity.Profile{
		Name:     "Alice Smith",
		Bio:      "distributed systems and observability tooling",
		Location: "Berlin",
		Company:  "Acme",
	})
	n2.AddCrossReference(identity.PlatformGitHub, "alice", "bio")

	g := NewGraph()
	g.AddNode(n1)
	g.AddNode(n2)

	assert.InDelta(t, 1.0, g.CrossValidationScore(), 1e-9)
}

func TestNoSignalFloor(t *testing.T) {
	g := NewGraph()
	g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{}))
	g.AddNode(newTestNode(identity.PlatformTwitter, "zorblatt", identity.Profile{}))

	assert.Equal(t, 0.0, g.CrossValidationScore())
}

func TestBidirectionalPlusNameScenario(t *testing.T) {
	// Name (0.3) + bidirectional reference (0.4); bio/location/company
	// absent and contributing zero.
	n1 := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{Name: "Alice Smith"})
	n1.AddCrossReference(identity.PlatformTwitter, "alice", "bio")
	n2 := newTestNode(identity.PlatformTwitter, "alice", identity.Profile{Name: "Alice Smith"})
	n2.AddCrossReference(identity.PlatformGitHub, "alice", "bio")

	g := NewGraph()
	g.AddNode(n1)
	g.AddNode(n2)

	assert.InDelta(t, 0.70, g.CrossValidationScore(), 1e-9)
}

func TestUnidirectionalReferenceCounts(t *testing.T) {
	// The 0.4 weight fires on a one-way link too: either side naming the
	// other is sufficient.
	n1 := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{})
	n1.AddCrossReference(identity.PlatformTwitter, "alice", "bio")
	n2 := newTestNode(identity.PlatformTwitter, "alice", identity.Profile{})

	g := NewGraph()
	g.AddNode(n1)
	g.AddNode(n2)

	assert.InDelta(t, 0.40, g.CrossValidationScore(), 1e-9)
}

func TestFuzzyMatch(t *testing.T) {
	cases := []struct {
		name   string
		a, b   string
		expect bool
	}{
		{"exact", "Alice Smith", "Alice Smith", true},
		{"case insensitive", "alice smith", "ALICE SMITH", true},
		{"substring", "Alice", "Alice Smith", true},
		{"punctuation stripped", "alice-smith", "alicesmith", true},
		{"different people", "Alice Smith", "Bob Jones", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, fuzzyMatch(tc.a, tc.b))
		})
	}
}

func TestKeywordOverlap(t *testing.T) {
	t.Run("identical bios overlap fully", func(t *testing.T) {
		sim := keywordOverlap("golang distributed systems", "golang distributed systems")
		assert.InDelta(t, 1.0, sim, 1e-9)
	})

	t.Run("stopwords are ignored", func(t *testing.T) {
		sim := keywordOverlap("the a an and or golang", "golang")
		assert.InDelta(t, 1.0, sim, 1e-9)
	})

	t.Run("disjoint bios", func(t *testing.T) {
		assert.Equal(t, 0.0, keywordOverlap("golang servers", "watercolor painting"))
	})

	t.Run("stopword-only bio", func(t *testing.T) {
		assert.Equal(t, 0.0, keywordOverlap("the and or", "golang"))
	})
}

func TestSynthesizeProfile(t *testing.T) {
	fixed := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	g := NewGraph(WithClock(func() time.Time { return fixed }))

	t.Run("empty graph yields empty profile", func(t *testing.T) {
		unified := g.SynthesizeProfile()
		require.NotNil(t, unified)
		assert.Empty(t, unified.Name)
		assert.Empty(t, unified.Platforms)
	})

	sparse := newTestNode(identity.PlatformTwitter, "alice", identity.Profile{Name: "Alice"})
	sparse.AddActivity(identity.NewActivityEvent(
		identity.PlatformTwitter, "tweet", "old tweet",
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	rich := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{
		Name: "Alice Smith", Bio: "systems", Location: "Berlin", Company: "Acme",
	})
	rich.AddActivity(identity.NewActivityEvent(
		identity.PlatformGitHub, "commit", "new commit",
		time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)))

	g.AddNode(sparse)
	g.AddNode(rich)

	unified := g.SynthesizeProfile()

	t.Run("primary is most populated node", func(t *testing.T) {
		assert.Equal(t, "Alice Smith", unified.Name)
		assert.Equal(t, "Berlin", unified.Location)
		assert.Equal(t, "Acme", unified.Company)
	})

	t.Run("platforms map covers all nodes", func(t *testing.T) {
		require.Len(t, unified.Platforms, 2)
		assert.Equal(t, "alice", unified.Platforms[identity.PlatformGitHub].Identifier)
		assert.Equal(t, 1.0, unified.Platforms[identity.PlatformTwitter].Confidence)
	})

	t.Run("activities sorted descending", func(t *testing.T) {
		require.Len(t, unified.AggregatedActivity, 2)
		assert.Equal(t, "new commit", unified.AggregatedActivity[0].Content)
		assert.Equal(t, "old tweet", unified.AggregatedActivity[1].Content)
	})

	t.Run("synthesis timestamp uses injected clock", func(t *testing.T) {
		assert.Equal(t, fixed, unified.LastUpdated)
	})
}

func TestSynthesizeProfileTieBreakByInsertionOrder(t *testing.T) {
	first := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{Name: "First"})
	second := newTestNode(identity.PlatformTwitter, "alice", identity.Profile{Name: "Second"})

	g := NewGraph()
	g.AddNode(first)
	g.AddNode(second)

	unified := g.SynthesizeProfile()
	assert.Equal(t, "First", unified.Name, "equal field counts break by insertion order")
}

func TestAggregatedActivityCap(t *testing.T) {
	node := newTestNode(identity.PlatformGitHub, "alice", identity.Profile{})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < DefaultActivityLimit+20; i++ {
		node.AddActivity(identity.NewActivityEvent(
			identity.PlatformGitHub, "commit", "c", base.Add(time.Duration(i)*time.Hour)))
	}

	g := NewGraph()
	g.AddNode(node)

	unified := g.SynthesizeProfile()
	require.Len(t, unified.AggregatedActivity, DefaultActivityLimit)
	// Most recent survives the cut.
	assert.Equal(t, base.Add(time.Duration(DefaultActivityLimit+19)*time.Hour),
		unified.AggregatedActivity[0].Timestamp)
}

func TestExportGraphReusesCachedProfile(t *testing.T) {
	g := NewGraph()
	g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{Name: "Alice"}))

	unified := g.SynthesizeProfile()
	export := g.ExportGraph()

	assert.Same(t, unified, export.UnifiedProfile)
	require.Contains(t, export.Nodes, "github:alice")
}

func TestExportGraphSynthesizesWhenUncached(t *testing.T) {
	g := NewGraph()
	g.AddNode(newTestNode(identity.PlatformGitHub, "alice", identity.Profile{Name: "Alice"}))

	export := g.ExportGraph()
	require.NotNil(t, export.UnifiedProfile)
	assert.Equal(t, "Alice", export.UnifiedProfile.Name)
}
