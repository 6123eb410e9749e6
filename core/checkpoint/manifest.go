package checkpoint

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const manifestName = "manifest.yaml"

// manifest is the on-disk record of one checkpoint, stored as manifest.yaml
// inside the checkpoint directory.
type manifest struct {
	ID        string      `yaml:"id"`
	Note      string      `yaml:"note,omitempty"`
	CreatedAt time.Time   `yaml:"created_at"`
	Files     []fileEntry `yaml:"files"`
}

// fileEntry describes one tracked path. An empty Archive means the path did
// not exist when the checkpoint was taken, so rollback removes it.
type fileEntry struct {
	Path    string      `yaml:"path"`
	Archive string      `yaml:"archive,omitempty"`
	Mode    fs.FileMode `yaml:"mode,omitempty"`
}

func loadManifest(dir string) (manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return manifest{}, fmt.Errorf("%s: %w: %w", filepath.Base(dir), ErrCheckpointCorrupt, err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("%s: %w: %w", filepath.Base(dir), ErrCheckpointCorrupt, err)
	}
	return m, nil
}

func saveManifest(dir string, m manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w: %w", ErrCheckpointIO, err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w: %w", ErrCheckpointIO, err)
	}
	return nil
}
