package retrieval

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model"
)

var ingestExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Indexer embeds documents and loads them into a ChromemStore.
type Indexer struct {
	store       *ChromemStore
	embedder    model.Embedder
	dir         string
	chunkSize   int
	lockTimeout time.Duration
}

type IndexerOptions struct {
	// Dir holds the manifest and the lock file; usually the store path.
	Dir         string
	ChunkSize   int
	LockTimeout time.Duration
}

// IngestReport summarizes one Ingest call.
type IngestReport struct {
	Indexed []string
	Skipped []string
	Chunks  int
}

func NewIndexer(store *ChromemStore, embedder model.Embedder, opts IndexerOptions) *Indexer {
	return &Indexer{
		store:       store,
		embedder:    embedder,
		dir:         opts.Dir,
		chunkSize:   opts.ChunkSize,
		lockTimeout: durationOr(opts.LockTimeout, 10*time.Second),
	}
}

// Ingest indexes every text or markdown file under paths. Files whose content hash
// matches the manifest are skipped; changed files have their old chunks replaced.
func (ix *Indexer) Ingest(ctx context.Context, paths []string) (*IngestReport, error) {
	log := logger.From(ctx)

	lock, err := AcquireStoreLock(ctx, ix.dir, ix.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	manifest, err := LoadManifest(ix.dir, ix.store.Collection())
	if err != nil {
		return nil, err
	}

	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return report, fmt.Errorf("read %s: %w", path, err)
		}

		sum := sha256.Sum256(data)
		digest := hex.EncodeToString(sum[:])

		previous, known := manifest.Files[path]
		if known && previous.SHA256 == digest {
			report.Skipped = append(report.Skipped, path)
			log.Debug("Source unchanged, skipping", "path", path)
			continue
		}

		docs, err := ix.embedChunks(ctx, path, string(data))
		if err != nil {
			return report, err
		}

		if known {
			if err := ix.store.Delete(ctx, previous.ChunkIDs...); err != nil {
				return report, fmt.Errorf("drop stale chunks of %s: %w", path, err)
			}
		}
		if err := ix.store.Upsert(ctx, docs); err != nil {
			return report, fmt.Errorf("store chunks of %s: %w", path, err)
		}

		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		manifest.Files[path] = ManifestEntry{SHA256: digest, ChunkIDs: ids, IndexedAt: time.Now().UTC()}
		if err := manifest.Save(ix.dir); err != nil {
			return report, fmt.Errorf("save manifest: %w", err)
		}

		report.Indexed = append(report.Indexed, path)
		report.Chunks += len(docs)
		log.Info("Source indexed", "path", path, "chunks", len(docs))
	}

	return report, nil
}

func (ix *Indexer) embedChunks(ctx context.Context, path, text string) ([]Document, error) {
	chunks := SplitParagraphs(text, ix.chunkSize)
	entropy := ulid.Monotonic(rand.Reader, 0)

	docs := make([]Document, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := ix.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, path, err)
		}
		if len(vector) == 0 {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, path, ragentErrors.ErrEmbeddingUnavailable)
		}

		docs = append(docs, Document{
			ID:        ulid.MustNew(ulid.Now(), entropy).String(),
			Content:   chunk,
			Embedding: vector,
			Source:    path,
		})
	}
	return docs, nil
}

func collectFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if _, ok := seen[abs]; !ok {
			seen[abs] = struct{}{}
			files = append(files, abs)
		}
		return nil
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !ingestExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
