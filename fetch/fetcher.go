package fetch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nexus-outreach/sdk/identity"
)

// ErrFetcherNotFound is returned by Lookup when a platform has no
// registered fetcher. Check with errors.Is.
var ErrFetcherNotFound = errors.New("no fetcher registered")

// Fetcher produces an identity node for one platform.
type Fetcher interface {
	// Platform returns the platform this fetcher serves.
	Platform() identity.Platform

	// Fetch retrieves the identity behind the given identifier. A failed
	// fetch returns an error; the caller decides whether to record a failed
	// node or abort.
	Fetch(ctx context.Context, identifier string) (*identity.Node, error)
}

// Registry is a concurrency-safe fetcher lookup keyed by platform.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[identity.Platform]Fetcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[identity.Platform]Fetcher)}
}

// Register adds a fetcher. Registering a second fetcher for the same
// platform is an error; use Replace to swap one in deliberately.
func (r *Registry) Register(f Fetcher) error {
	if f == nil {
		return fmt.Errorf("fetcher cannot be nil")
	}
	platform := f.Platform()
	if !platform.IsValid() {
		return fmt.Errorf("fetcher has invalid platform: %s", platform)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fetchers[platform]; exists {
		return fmt.Errorf("fetcher already registered for platform %s", platform)
	}
	r.fetchers[platform] = f
	return nil
}

// Replace installs a fetcher, overwriting any existing one for the platform.
func (r *Registry) Replace(f Fetcher) error {
	if f == nil {
		return fmt.Errorf("fetcher cannot be nil")
	}
	platform := f.Platform()
	if !platform.IsValid() {
		return fmt.Errorf("fetcher has invalid platform: %s", platform)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[platform] = f
	return nil
}

// Get returns the fetcher for a platform.
func (r *Registry) Get(platform identity.Platform) (Fetcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[platform]
	return f, ok
}

// Lookup returns the fetcher for a platform, or ErrFetcherNotFound.
func (r *Registry) Lookup(platform identity.Platform) (Fetcher, error) {
	f, ok := r.Get(platform)
	if !ok {
		return nil, fmt.Errorf("%w for platform %s", ErrFetcherNotFound, platform)
	}
	return f, nil
}

// Platforms returns the registered platforms in sorted order.
func (r *Registry) Platforms() []identity.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]identity.Platform, 0, len(r.fetchers))
	for p := range r.fetchers {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

// Len returns the number of registered fetchers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fetchers)
}
