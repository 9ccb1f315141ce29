// Package registry provides etcd-backed discovery of fetcher worker
// instances.
//
// Fetcher workers register themselves on startup and maintain presence via
// lease keepalives; coordinators discover which platforms have live capacity
// and watch for membership changes. Leases with TTL automatically remove
// entries when a worker crashes or loses connectivity, so the registry is
// the single source of truth for live capacity.
package registry

import (
	"context"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// FetcherInfo describes a registered fetcher worker instance.
//
// Multiple workers for the same platform can run simultaneously, each with
// a unique InstanceID.
type FetcherInfo struct {
	// Platform is the platform this worker fetches.
	Platform identity.Platform `json:"platform"`

	// Version is the semantic version of the fetcher implementation.
	Version string `json:"version"`

	// InstanceID uniquely identifies this worker instance (typically UUID).
	InstanceID string `json:"instance_id"`

	// Endpoint is the address where the worker exposes health/debug
	// endpoints, "host:port".
	Endpoint string `json:"endpoint,omitempty"`

	// Simulated marks generated-data fetchers.
	Simulated bool `json:"simulated"`

	// Metadata carries worker-specific attributes, e.g. rate-limit budget
	// or auth scope.
	Metadata map[string]string `json:"metadata,omitempty"`

	// StartedAt is when this instance started.
	StartedAt time.Time `json:"started_at"`
}

// Registry defines the fetcher registration and discovery interface.
//
// Implementations must be safe for concurrent use. Entries are tied to
// leases with TTL so stale workers disappear automatically.
type Registry interface {
	// Register adds this worker instance to the registry. The entry stays
	// discoverable as long as the lease is renewed; implementations renew
	// every TTL/3. Re-registering the same InstanceID updates the entry.
	Register(ctx context.Context, info FetcherInfo) error

	// Deregister removes this worker instance, revoking its lease. A no-op
	// if the instance is not registered.
	Deregister(ctx context.Context, info FetcherInfo) error

	// Discover returns all live worker instances for a platform. The slice
	// may be empty; order is arbitrary.
	Discover(ctx context.Context, platform identity.Platform) ([]FetcherInfo, error)

	// DiscoverAll returns all live worker instances across platforms.
	DiscoverAll(ctx context.Context) ([]FetcherInfo, error)

	// Watch returns a channel that receives the current instance list for a
	// platform whenever membership changes. The initial state is sent
	// immediately. The channel closes when the context is cancelled or the
	// registry is closed.
	Watch(ctx context.Context, platform identity.Platform) (<-chan []FetcherInfo, error)

	// Close releases resources and stops all background goroutines. After
	// Close, all other methods return errors.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints, ["host1:2379", ...].
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix. Entries live under
	// /{namespace}/fetchers/{platform}/{instance-id}. Default "nexus".
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. Workers must renew within
	// this interval or be removed. Default 30.
	TTL int `json:"ttl"`

	// TLS holds optional TLS configuration for secure etcd communication.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds TLS certificate configuration for mutual TLS with etcd.
type TLSConfig struct {
	// Enabled determines whether TLS is active. If false, the remaining
	// fields are ignored.
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate (PEM).
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key (PEM).
	KeyFile string `json:"key_file"`

	// CAFile is the path to the certificate authority bundle (PEM) used to
	// verify the etcd server.
	CAFile string `json:"ca_file"`
}
