package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatFromPath picks the manifest format from a file extension; YAML is the default.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode writes the scene manifest to w.
func (s *Scene) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported scene format %q (must be yaml or json)", format)
	}
}

// Decode reads a scene manifest from r.
func Decode(r io.Reader, format string) (*Scene, error) {
	s := New()

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(s); err != nil {
			return nil, fmt.Errorf("failed to parse scene: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.NewDecoder(r).Decode(s); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse scene: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scene format %q (must be yaml or json)", format)
	}

	return s, nil
}

// LoadFile reads the scene manifest at path. A missing file yields an empty scene.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, err
	}
	defer f.Close()

	return Decode(f, FormatFromPath(path))
}

// SaveFile writes the scene manifest to path, creating parent directories as needed.
func (s *Scene) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", path, err)
	}

	if err := s.Encode(f, FormatFromPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write scene %q: %w", path, err)
	}

	return f.Close()
}
