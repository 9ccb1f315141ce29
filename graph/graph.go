package graph

import (
	"fmt"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// Graph holds the identity nodes of one analysis session, keyed by their
// composite "platform:identifier" key. At most one node exists per key;
// adding a node under an existing key silently replaces the prior entry.
type Graph struct {
	nodes map[string]*identity.Node

	// order preserves insertion order of keys for deterministic pairwise
	// iteration and primary-node tie-breaks. Replacing a node keeps its
	// original position.
	order []string

	unified *UnifiedProfile

	now func() time.Time
}

// Option configures a Graph.
type Option func(*Graph)

// WithClock overrides the time source used for synthesis timestamps.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGraph creates an empty identity graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		nodes: make(map[string]*identity.Node),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the composite graph key for a platform and identifier.
func Key(platform identity.Platform, identifier string) string {
	return fmt.Sprintf("%s:%s", platform, identifier)
}

// AddNode inserts the node under its "platform:identifier" key and returns
// the key. An existing node under the same key is overwritten silently.
//
// No validation is performed: a failed-fetch node may be added deliberately,
// as evidence of absence. Filtering failed nodes before synthesis is the
// caller's responsibility.
func (g *Graph) AddNode(node *identity.Node) string {
	key := node.Key()
	if _, exists := g.nodes[key]; !exists {
		g.order = append(g.order, key)
	}
	g.nodes[key] = node
	return key
}

// GetNode looks up a node by platform and identifier.
func (g *Graph) GetNode(platform identity.Platform, identifier string) (*identity.Node, bool) {
	node, ok := g.nodes[Key(platform, identifier)]
	return node, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*identity.Node {
	nodes := make([]*identity.Node, 0, len(g.order))
	for _, key := range g.order {
		nodes = append(nodes, g.nodes[key])
	}
	return nodes
}

// CrossValidationScore estimates how confidently the graph's nodes belong to
// one real person, from 0.0 to 1.0.
//
// With fewer than two nodes there is nothing to corroborate against and a
// neutral 0.5 is returned. Otherwise the score is the arithmetic mean of the
// pairwise comparison over every unordered node pair.
func (g *Graph) CrossValidationScore() float64 {
	if len(g.nodes) < 2 {
		return 0.5
	}

	nodes := g.Nodes()
	total := 0.0
	comparisons := 0

	for i, n1 := range nodes {
		for _, n2 := range nodes[i+1:] {
			total += compareNodes(n1, n2)
			comparisons++
		}
	}

	return total / float64(comparisons)
}

// Export is the JSON-serializable view of a whole graph.
type Export struct {
	// Nodes maps composite keys to their nodes.
	Nodes map[string]*identity.Node `json:"nodes"`

	// UnifiedProfile is the synthesized merge of all nodes.
	UnifiedProfile *UnifiedProfile `json:"unified_profile"`
}

// ExportGraph returns the full graph plus its unified profile, reusing the
// cached profile from the last SynthesizeProfile call when available.
func (g *Graph) ExportGraph() Export {
	unified := g.unified
	if unified == nil {
		unified = g.SynthesizeProfile()
	}
	nodes := make(map[string]*identity.Node, len(g.nodes))
	for key, node := range g.nodes {
		nodes[key] = node
	}
	return Export{
		Nodes:          nodes,
		UnifiedProfile: unified,
	}
}
