package identity

import (
	"errors"
	"fmt"
	"time"
)

// Profile holds the cross-validation-relevant profile fields as named
// optional fields, plus an open side channel for platform-specific extras.
// Absence of any field is a valid state and contributes zero to every
// calculation; none of the fields is required.
type Profile struct {
	// Name is the person's display name.
	Name string `json:"name,omitempty"`

	// Bio is the profile description/summary text.
	Bio string `json:"bio,omitempty"`

	// Location is the free-form location string.
	Location string `json:"location,omitempty"`

	// Company is the company/organization string.
	Company string `json:"company,omitempty"`

	// Extra carries arbitrary platform-specific fields, e.g. "followers",
	// "twitter_username", "blog".
	Extra map[string]any `json:"extra,omitempty"`
}

// FieldCount returns the number of populated profile fields. Named fields
// count when non-empty; every Extra key counts. Used to pick the primary
// node during profile synthesis.
func (p Profile) FieldCount() int {
	count := len(p.Extra)
	for _, v := range []string{p.Name, p.Bio, p.Location, p.Company} {
		if v != "" {
			count++
		}
	}
	return count
}

// extraString returns the first non-empty string value among the given Extra
// keys. Non-string values are ignored.
func (p Profile) extraString(keys ...string) string {
	for _, key := range keys {
		if v, ok := p.Extra[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Node is one platform-scoped identity: a profile, a list of activity
// events, a list of outgoing cross-references, and fetch metadata. A node is
// written once by its producing fetcher and treated as read-only afterwards.
//
// The (Platform, Identifier) pair is the node's unique key within a graph.
type Node struct {
	// Platform is the platform this identity lives on.
	Platform Platform `json:"platform"`

	// Identifier is the handle/username on the platform.
	Identifier string `json:"identifier"`

	// Profile holds the profile fields found by the fetch.
	Profile Profile `json:"profile"`

	// CrossReferences are outgoing references in discovery order.
	CrossReferences []CrossReference `json:"cross_references,omitempty"`

	// Activities are the node's activity events in producer order. No
	// ordering invariant is enforced; callers sort as needed.
	Activities []ActivityEvent `json:"activities,omitempty"`

	// ConfidenceScore is producer-defined: 1.0 for a primary authenticated
	// fetch, lower for derived or simulated data.
	ConfidenceScore float64 `json:"confidence_score"`

	// LastUpdated is the time of the last successful fetch.
	LastUpdated time.Time `json:"last_updated"`

	// FetchStatus records the outcome of the populating fetch.
	FetchStatus FetchStatus `json:"fetch_status"`

	// ErrorMessage is set if and only if FetchStatus is FetchFailed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewNode creates an empty node for the given platform and identifier with
// FetchPending status.
func NewNode(platform Platform, identifier string) *Node {
	return &Node{
		Platform:    platform,
		Identifier:  identifier,
		FetchStatus: FetchPending,
	}
}

// WithProfile sets the profile and returns the node for chaining.
func (n *Node) WithProfile(profile Profile) *Node {
	n.Profile = profile
	return n
}

// WithConfidence sets the confidence score and returns the node for chaining.
func (n *Node) WithConfidence(score float64) *Node {
	n.ConfidenceScore = score
	return n
}

// AddCrossReference appends an outgoing reference to another platform,
// recording the field it was discovered in.
func (n *Node) AddCrossReference(platform Platform, identifier, sourceField string) {
	n.CrossReferences = append(n.CrossReferences, CrossReference{
		Platform:    platform,
		Identifier:  identifier,
		SourceField: sourceField,
	})
}

// AddActivity appends an activity event to the node.
func (n *Node) AddActivity(event ActivityEvent) {
	n.Activities = append(n.Activities, event)
}

// MarkSuccess records a successful fetch at the given time and clears any
// error message.
func (n *Node) MarkSuccess(at time.Time) {
	n.FetchStatus = FetchSuccess
	n.LastUpdated = at.UTC()
	n.ErrorMessage = ""
}

// MarkFailed records a failed fetch with the given cause.
func (n *Node) MarkFailed(message string) {
	n.FetchStatus = FetchFailed
	n.ErrorMessage = message
}

// Key returns the composite "platform:identifier" key for the node.
func (n *Node) Key() string {
	return fmt.Sprintf("%s:%s", n.Platform, n.Identifier)
}

// Name returns the display name, falling back to the "full_name" extra.
// Empty means absent.
func (n *Node) Name() string {
	if n.Profile.Name != "" {
		return n.Profile.Name
	}
	return n.Profile.extraString("full_name")
}

// Bio returns the bio text, falling back to the "description" and "summary"
// extras. Empty means absent.
func (n *Node) Bio() string {
	if n.Profile.Bio != "" {
		return n.Profile.Bio
	}
	return n.Profile.extraString("description", "summary")
}

// Location returns the location string. Empty means absent.
func (n *Node) Location() string {
	return n.Profile.Location
}

// Company returns the company, falling back to the "organization" extra.
// Empty means absent.
func (n *Node) Company() string {
	if n.Profile.Company != "" {
		return n.Profile.Company
	}
	return n.Profile.extraString("organization")
}

// References reports whether the node holds a cross-reference naming the
// given platform and identifier (case-insensitive identifier comparison).
func (n *Node) References(platform Platform, identifier string) bool {
	for _, ref := range n.CrossReferences {
		if ref.Matches(platform, identifier) {
			return true
		}
	}
	return false
}

// Validate checks the node's structural invariants:
//
//   - Platform is a supported value and Identifier is non-empty
//   - FetchStatus is a defined value
//   - ErrorMessage is populated if and only if FetchStatus is FetchFailed
//   - every activity timestamp is UTC (comparable across platforms)
//
// Nodes built through NewActivityEvent always satisfy the timestamp check;
// the explicit validation guards hand-built nodes at the graph boundary
// instead of silently stripping timezone information later.
func (n *Node) Validate() error {
	if !n.Platform.IsValid() {
		return fmt.Errorf("invalid platform: %s", n.Platform)
	}
	if n.Identifier == "" {
		return errors.New("identifier is required")
	}
	if !n.FetchStatus.IsValid() {
		return fmt.Errorf("invalid fetch status: %s", n.FetchStatus)
	}
	if n.FetchStatus == FetchFailed && n.ErrorMessage == "" {
		return errors.New("failed node must carry an error message")
	}
	if n.FetchStatus != FetchFailed && n.ErrorMessage != "" {
		return errors.New("error message is only valid on a failed node")
	}
	for i, act := range n.Activities {
		if act.Timestamp.Location() != time.UTC {
			return fmt.Errorf("activity %d timestamp is not UTC", i)
		}
	}
	return nil
}
