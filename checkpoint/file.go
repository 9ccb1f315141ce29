package checkpoint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// checkpointExt is the file extension for stored checkpoints.
const checkpointExt = ".ckpt"

// FileStore persists checkpoints as one file per key under a directory.
// Keys are sanitized into filenames, so distinct keys that differ only in
// sanitized characters collide; pipeline keys (platform:identifier) are safe.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("checkpoint directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrStorageFailed, dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes a checkpoint, replacing any existing one for the key.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorageFailed, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", ErrStorageFailed, path, err)
	}
	return nil
}

// Load reads a checkpoint.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorageFailed, key, err)
	}
	return data, nil
}

// Delete removes a checkpoint.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: removing %s: %v", ErrStorageFailed, key, err)
	}
	return nil
}

// List returns all checkpoint keys in sorted order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", ErrStorageFailed, s.dir, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, checkpointExt) {
			continue
		}
		keys = append(keys, unsanitizeKey(strings.TrimSuffix(name, checkpointExt)))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+checkpointExt)
}

// sanitizeKey maps the pipeline's "platform:identifier" keys onto safe
// filenames.
func sanitizeKey(key string) string {
	return strings.ReplaceAll(key, ":", "__")
}

func unsanitizeKey(name string) string {
	return strings.ReplaceAll(name, "__", ":")
}
