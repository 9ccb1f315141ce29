// Package graph provides the identity graph: a collection of platform-scoped
// identity nodes with pairwise cross-validation and unified profile
// synthesis.
//
// A Graph is built and consumed by one logical analysis session (one person)
// and then discarded. It is not safe for concurrent use; hosts analyzing
// multiple people concurrently should use one Graph per analysis.
//
// # Cross-Validation
//
// CrossValidationScore estimates the confidence (0.0 to 1.0) that all nodes
// in the graph belong to the same real person. Every unordered pair of nodes
// is compared with four independent checks, each contributing its weight only
// when its inputs are present:
//
//   - fuzzy name match (0.30)
//   - bidirectional cross-reference (0.40)
//   - fuzzy location match (0.10) and fuzzy company match (0.10)
//   - bio keyword overlap above 0.5 Jaccard similarity (0.10)
//
// The explicit mutual link carries the highest weight: two different people
// can share a name or a city, but rarely link to each other's profiles.
//
// # Usage
//
//	g := graph.NewGraph()
//	g.AddNode(githubNode)
//	g.AddNode(twitterNode)
//
//	confidence := g.CrossValidationScore()
//	unified := g.SynthesizeProfile()
package graph
