package identity

import "fmt"

// Platform identifies a supported social/developer platform.
//
// Platform is a closed enumeration used as a type-safe key component for
// identity nodes and cross-references, so a typo cannot silently break
// cross-reference matching.
type Platform string

const (
	// PlatformGitHub is the GitHub code hosting platform.
	PlatformGitHub Platform = "github"

	// PlatformTwitter is the Twitter/X microblogging platform.
	PlatformTwitter Platform = "twitter"

	// PlatformDevTo is the dev.to blogging platform.
	PlatformDevTo Platform = "devto"

	// PlatformLinkedIn is the LinkedIn professional network.
	PlatformLinkedIn Platform = "linkedin"

	// PlatformHashnode is the Hashnode blogging platform.
	PlatformHashnode Platform = "hashnode"
)

// IsValid returns true if the platform is one of the supported values.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformGitHub, PlatformTwitter, PlatformDevTo, PlatformLinkedIn, PlatformHashnode:
		return true
	default:
		return false
	}
}

// String returns the string representation of the platform.
func (p Platform) String() string {
	return string(p)
}

// ParsePlatform parses a string into a Platform value.
// Returns an error if the string is not a supported platform.
func ParsePlatform(s string) (Platform, error) {
	platform := Platform(s)
	if !platform.IsValid() {
		return "", fmt.Errorf("invalid platform: %s", s)
	}
	return platform, nil
}

// AllPlatforms returns all supported platforms in a stable order.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformGitHub,
		PlatformTwitter,
		PlatformDevTo,
		PlatformLinkedIn,
		PlatformHashnode,
	}
}
