package fetch

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// SimulatedConfidence is the confidence score assigned to simulated nodes,
// below the 1.0 of an authenticated live fetch.
const SimulatedConfidence = 0.85

// Recency buckets attached to simulated activity metadata, mirroring what
// live fetchers report.
const (
	bucketLastWeek    = "last_week"
	bucketLastMonth   = "last_month"
	bucket3Months     = "last_3_months"
	weightLastWeek    = 1.0
	weightLastMonth   = 0.8
	weightLast3Months = 0.5
)

// SimulatedFetcher generates a deterministic plausible identity for any
// identifier, seeded from the identifier itself so repeated fetches agree.
// Useful for demos, offline development and pipeline tests.
type SimulatedFetcher struct {
	platform identity.Platform
	now      func() time.Time
}

// NewSimulatedFetcher creates a simulated fetcher for the given platform.
func NewSimulatedFetcher(platform identity.Platform) *SimulatedFetcher {
	return &SimulatedFetcher{platform: platform, now: time.Now}
}

// WithClock overrides the fetcher's time source and returns the fetcher for
// chaining. Intended for tests.
func (f *SimulatedFetcher) WithClock(now func() time.Time) *SimulatedFetcher {
	if now != nil {
		f.now = now
	}
	return f
}

// Platform returns the platform this fetcher simulates.
func (f *SimulatedFetcher) Platform() identity.Platform {
	return f.platform
}

var (
	simLocations = []string{
		"San Francisco, CA", "Berlin, Germany", "London, UK",
		"Toronto, Canada", "Amsterdam, Netherlands", "Lagos, Nigeria",
	}
	simCompanies = []string{
		"Acme Corp", "Initech", "Hooli", "Vandelay Industries", "Globex",
	}
	simBioTopics = []string{
		"distributed systems", "developer tooling", "data pipelines",
		"web performance", "platform engineering",
	}
	simOpenness = []string{
		"Open to collaboration.", "DM me about interesting projects.", "",
	}
)

// Fetch generates the simulated node. It never fails except on context
// cancellation.
func (f *SimulatedFetcher) Fetch(ctx context.Context, identifier string) (*identity.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}

	seed := fnv.New64a()
	seed.Write([]byte(string(f.platform)))
	seed.Write([]byte(strings.ToLower(identifier)))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	now := f.now().UTC()
	node := identity.NewNode(f.platform, identifier).
		WithProfile(f.buildProfile(identifier, rng)).
		WithConfidence(SimulatedConfidence)

	f.addCrossReferences(node, identifier)
	f.addActivities(node, rng, now)
	node.MarkSuccess(now)
	return node, nil
}

// buildProfile fills the platform-flavored profile fields.
func (f *SimulatedFetcher) buildProfile(identifier string, rng *rand.Rand) identity.Profile {
	topic := simBioTopics[rng.Intn(len(simBioTopics))]
	openness := simOpenness[rng.Intn(len(simOpenness))]
	bio := strings.TrimSpace(fmt.Sprintf("Working on %s. %s", topic, openness))

	profile := identity.Profile{
		Name:     displayName(identifier),
		Bio:      bio,
		Location: simLocations[rng.Intn(len(simLocations))],
		Company:  simCompanies[rng.Intn(len(simCompanies))],
		Extra:    map[string]any{"followers": 50 + rng.Intn(5000)},
	}

	switch f.platform {
	case identity.PlatformGitHub:
		profile.Extra["blog"] = fmt.Sprintf("https://%s.dev", strings.ToLower(identifier))
		profile.Extra["twitter_username"] = identifier
	case identity.PlatformTwitter:
		profile.Extra["github_username"] = identifier
	}
	return profile
}

// addCrossReferences links the node to its sibling platforms with the source
// field a live fetcher would have discovered the link in.
func (f *SimulatedFetcher) addCrossReferences(node *identity.Node, identifier string) {
	switch f.platform {
	case identity.PlatformGitHub:
		node.AddCrossReference(identity.PlatformTwitter, identifier, "twitter_username")
		node.AddCrossReference(identity.PlatformDevTo, identifier, "blog")
	case identity.PlatformTwitter:
		node.AddCrossReference(identity.PlatformGitHub, identifier, "bio")
	case identity.PlatformDevTo, identity.PlatformHashnode:
		node.AddCrossReference(identity.PlatformGitHub, identifier, "github_username")
	case identity.PlatformLinkedIn:
		node.AddCrossReference(identity.PlatformGitHub, identifier, "contact_info")
	}
}

// addActivities generates a recency-weighted activity history: a cluster in
// the last week plus a tail over the last three months.
func (f *SimulatedFetcher) addActivities(node *identity.Node, rng *rand.Rand, now time.Time) {
	eventType := f.eventType()

	recent := 2 + rng.Intn(5)
	for i := 0; i < recent; i++ {
		ts := now.AddDate(0, 0, -rng.Intn(7)).Add(-time.Duration(rng.Intn(12)) * time.Hour)
		node.AddActivity(f.event(eventType, rng, ts, bucketLastWeek, weightLastWeek))
	}

	tail := 3 + rng.Intn(6)
	for i := 0; i < tail; i++ {
		daysAgo := 7 + rng.Intn(83)
		bucket, weight := bucketLastMonth, weightLastMonth
		if daysAgo > 30 {
			bucket, weight = bucket3Months, weightLast3Months
		}
		ts := now.AddDate(0, 0, -daysAgo)
		node.AddActivity(f.event(eventType, rng, ts, bucket, weight))
	}
}

func (f *SimulatedFetcher) event(eventType string, rng *rand.Rand, ts time.Time, bucket string, weight float64) identity.ActivityEvent {
	topic := simBioTopics[rng.Intn(len(simBioTopics))]
	content := fmt.Sprintf("Notes on %s", topic)
	return identity.NewActivityEvent(f.platform, eventType, content, ts).
		WithMetadata("recency_bucket", bucket).
		WithMetadata("recency_weight", weight)
}

// eventType returns the platform's dominant activity type.
func (f *SimulatedFetcher) eventType() string {
	switch f.platform {
	case identity.PlatformGitHub:
		return "commit"
	case identity.PlatformTwitter:
		return "tweet"
	case identity.PlatformLinkedIn:
		return "post"
	default:
		return "article"
	}
}

// displayName derives a human name from a handle: "jane-doe" becomes
// "Jane Doe".
func displayName(identifier string) string {
	parts := strings.FieldsFunc(identifier, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
