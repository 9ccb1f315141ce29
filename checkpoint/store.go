package checkpoint

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Common errors returned by checkpoint operations.
var (
	// ErrNotFound is returned when no checkpoint exists for a key.
	ErrNotFound = errors.New("checkpoint: not found")

	// ErrInvalidKey is returned when a key is empty or otherwise invalid.
	ErrInvalidKey = errors.New("checkpoint: invalid key")

	// ErrStorageFailed is returned when the underlying backend fails.
	ErrStorageFailed = errors.New("checkpoint: storage operation failed")
)

// Store persists serialized pipeline state under string keys.
type Store interface {
	// Save writes a checkpoint, replacing any existing one for the key.
	// Returns ErrInvalidKey if the key is empty.
	Save(ctx context.Context, key string, data []byte) error

	// Load reads a checkpoint.
	// Returns ErrNotFound if no checkpoint exists for the key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes a checkpoint.
	// Returns ErrNotFound if no checkpoint exists for the key.
	Delete(ctx context.Context, key string) error

	// List returns all checkpoint keys in sorted order.
	List(ctx context.Context) ([]string, error)
}

// MemoryStore is an in-process Store backed by a map. Safe for concurrent
// use; contents are lost when the process exits.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save writes a checkpoint, replacing any existing one for the key.
func (s *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load reads a checkpoint.
func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// Delete removes a checkpoint.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// List returns all checkpoint keys in sorted order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
