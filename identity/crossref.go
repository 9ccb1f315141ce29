package identity

import "strings"

// CrossReference is a directed, confidence-weighted assertion that the
// identity owning it is the same person as an identifier on another platform.
// It is created by fetchers when they detect an embedded reference, such as a
// Twitter handle in a GitHub bio, and never mutates the node it names.
type CrossReference struct {
	// Platform is the platform the reference points at.
	Platform Platform `json:"platform"`

	// Identifier is the handle/username on the target platform.
	Identifier string `json:"identifier"`

	// SourceField records where the reference was found, e.g. "bio",
	// "website", "blog", "twitter_username", "github_username".
	SourceField string `json:"source_field"`

	// Confidence is the producer's confidence in the assertion, 0.0 to 1.0.
	Confidence float64 `json:"confidence"`
}

// Matches reports whether the reference names the given platform and
// identifier. Identifier comparison is case-insensitive.
func (r CrossReference) Matches(platform Platform, identifier string) bool {
	return r.Platform == platform && strings.EqualFold(r.Identifier, identifier)
}
