package imager

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is the asset folder images are written to when none is configured.
const DefaultDir = "Assets/FigmaImages"

// FileStore writes images into a directory on the local file system.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir, DefaultDir if empty.
// The directory is created on the first Save.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileStore{Dir: dir}
}

// Save writes data to Dir/key, replacing any previous file, and returns the
// slash-separated path of the written file.
func (s *FileStore) Save(key string, data []byte) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid image key %q", key)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %q: %w", s.Dir, err)
	}

	destPath := filepath.Join(s.Dir, key)
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %q: %w", destPath, err)
	}

	return filepath.ToSlash(destPath), nil
}
