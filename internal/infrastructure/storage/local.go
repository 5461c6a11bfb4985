package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore persists blobs as flat files under a content directory. Standup
// audio lives here; the serving layer exposes the directory under a public
// path prefix.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a store rooted at baseDir. The directory is created
// lazily on first write.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// BaseDir returns the content directory path
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// Write persists data under the given filename, creating the content
// directory on demand.
func (s *LocalStore) Write(filename string, data []byte) error {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create content directory: %w", err)
	}
	path := filepath.Join(s.baseDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Path resolves a filename to its absolute location under the content dir
func (s *LocalStore) Path(filename string) string {
	return filepath.Join(s.baseDir, filename)
}

// Exists reports whether the file is present
func (s *LocalStore) Exists(filename string) bool {
	info, err := os.Stat(s.Path(filename))
	return err == nil && !info.IsDir()
}

// Remove deletes a file. A missing file is not an error.
func (s *LocalStore) Remove(filename string) error {
	if err := os.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// List returns the names of all regular files in the content directory. A
// missing directory yields an empty listing.
func (s *LocalStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list content directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Size returns the byte size of a stored file
func (s *LocalStore) Size(filename string) (int64, error) {
	info, err := os.Stat(s.Path(filename))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
