package retrieval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/natefinch/atomic"
)

// manifestPath is dir/manifest-<collection>.json; every collection tracks its own sources.
func manifestPath(dir, collection string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, collection)
	return filepath.Join(dir, "manifest-"+name+".json")
}

// Manifest records which source files are indexed and under which chunk ids.
type Manifest struct {
	Collection string                   `json:"collection"`
	Files      map[string]ManifestEntry `json:"files"`
}

type ManifestEntry struct {
	SHA256    string    `json:"sha256"`
	ChunkIDs  []string  `json:"chunk_ids"`
	IndexedAt time.Time `json:"indexed_at"`
}

// LoadManifest reads the manifest of collection under dir. A missing file, or one
// recorded for another collection, yields an empty manifest.
func LoadManifest(dir, collection string) (*Manifest, error) {
	m := &Manifest{Collection: collection, Files: make(map[string]ManifestEntry)}

	data, err := os.ReadFile(manifestPath(dir, collection))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}

	var stored Manifest
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if stored.Collection != collection {
		return m, nil
	}
	for path, entry := range stored.Files {
		m.Files[path] = entry
	}
	return m, nil
}

// Save replaces the collection's manifest under dir atomically.
func (m *Manifest) Save(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(manifestPath(dir, m.Collection), bytes.NewReader(data))
}
