package graph

import (
	"strings"
	"unicode"

	"github.com/nexus-outreach/sdk/identity"
)

// Pairwise check weights. They sum to 1.0 so a pair with every signal
// present scores exactly 1.0. The bidirectional reference is weighted
// highest: an explicit mutual link is stronger evidence than any fuzzy
// text match.
const (
	weightName          = 0.30
	weightBidirectional = 0.40
	weightLocation      = 0.10
	weightCompany       = 0.10
	weightBio           = 0.10
)

// bioOverlapThreshold is the Jaccard similarity above which the bio check
// contributes its full weight. The check is a binary threshold, not
// proportional.
const bioOverlapThreshold = 0.5

// bioStopwords are removed from bio text before computing keyword overlap.
var bioStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
}

// compareNodes scores the likelihood that two nodes describe the same
// person. Each check only fires when both sides carry the relevant field;
// absent data contributes zero, never a penalty. The comparison is
// symmetric.
func compareNodes(n1, n2 *identity.Node) float64 {
	score := 0.0

	if n1.Name() != "" && n2.Name() != "" && fuzzyMatch(n1.Name(), n2.Name()) {
		score += weightName
	}

	if hasBidirectionalReference(n1, n2) {
		score += weightBidirectional
	}

	if n1.Location() != "" && n2.Location() != "" && fuzzyMatch(n1.Location(), n2.Location()) {
		score += weightLocation
	}

	if n1.Company() != "" && n2.Company() != "" && fuzzyMatch(n1.Company(), n2.Company()) {
		score += weightCompany
	}

	if n1.Bio() != "" && n2.Bio() != "" && keywordOverlap(n1.Bio(), n2.Bio()) > bioOverlapThreshold {
		score += weightBio
	}

	return score
}

// fuzzyMatch normalizes both strings (lowercase, alphanumerics and spaces
// only) and reports whether either is a substring of the other, including
// exact equality.
func fuzzyMatch(s1, s2 string) bool {
	a := normalizeForMatch(s1)
	b := normalizeForMatch(s2)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalizeForMatch(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// keywordOverlap computes the Jaccard similarity of the two bios'
// whitespace-tokenized, lowercased word sets after stopword removal.
func keywordOverlap(bio1, bio2 string) float64 {
	words1 := bioWords(bio1)
	words2 := bioWords(bio2)

	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection

	return float64(intersection) / float64(union)
}

func bioWords(bio string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(bio)) {
		if _, stop := bioStopwords[w]; !stop {
			words[w] = struct{}{}
		}
	}
	return words
}

// hasBidirectionalReference reports whether either node holds a
// cross-reference naming the other's (platform, identifier) pair.
func hasBidirectionalReference(n1, n2 *identity.Node) bool {
	return n1.References(n2.Platform, n2.Identifier) ||
		n2.References(n1.Platform, n1.Identifier)
}
