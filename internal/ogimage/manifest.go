package ogimage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docpostbuild/internal/storage"
)

// ManifestFile is written into the output directory and records what was
// rendered for which page.
const ManifestFile = "manifest.json"

const manifestVersion = 2

// Manifest maps image file names to the page they were rendered for. File
// names are unique per run even when records share an ID.
type Manifest struct {
	Version int                  `json:"version"`
	Pages   map[string]PageEntry `json:"pages"`
}

type PageEntry struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
}

func newManifest() *Manifest {
	return &Manifest{Version: manifestVersion, Pages: map[string]PageEntry{}}
}

// errManifestCorrupt marks a manifest that exists but cannot be used.
var errManifestCorrupt = errors.New("image manifest is unreadable")

// loadManifest returns an empty manifest when none exists yet.
func loadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return newManifest(), nil
		}
		return newManifest(), fmt.Errorf("%w: %w", errManifestCorrupt, err)
	}
	m := newManifest()
	if err := json.Unmarshal(data, m); err != nil {
		return newManifest(), fmt.Errorf("%w: %w", errManifestCorrupt, err)
	}
	if m.Version != manifestVersion {
		return newManifest(), fmt.Errorf("%w: version %d", errManifestCorrupt, m.Version)
	}
	if m.Pages == nil {
		m.Pages = map[string]PageEntry{}
	}
	return m, nil
}

func (m *Manifest) save(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal image manifest: %w", err)
	}
	return storage.WriteFile(filepath.Join(dir, ManifestFile), append(data, '\n'), 0o644)
}
