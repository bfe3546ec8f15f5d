package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStore serves blobs from a directory on disk. It backs offline runs
// and tests; keys map to paths relative to the root.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access storage directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path %s is not a directory", dir)
	}
	return &LocalStore{root: dir}, nil
}

// Get reads the file the key resolves to under the root. Keys may not escape
// the root directory.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	clean := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(key)))
	if !strings.HasPrefix(clean, filepath.Clean(s.root)+string(filepath.Separator)) {
		return nil, fmt.Errorf("key %q escapes storage root", key)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// List walks the root and returns the slash-separated relative paths of all
// files whose key starts with prefix.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
