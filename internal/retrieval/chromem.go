package retrieval

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/philippgille/chromem-go"
)

const metadataSource = "source"

// ChromemStore is the embedded vector store. Embeddings are always supplied by the
// caller, so collections are opened without an embedding func.
type ChromemStore struct {
	db         *chromem.DB
	collection string
}

// OpenChromemStore opens a persistent store under path, or an in-memory one when
// path is empty.
func OpenChromemStore(path, collection string) (*ChromemStore, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("retrieval collection name is empty")
	}

	if strings.TrimSpace(path) == "" {
		return &ChromemStore{db: chromem.NewDB(), collection: collection}, nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector dir: %w", err)
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to init vector db: %w", err)
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

func (s *ChromemStore) Collection() string {
	return s.collection
}

// Count is the number of stored chunks; a missing collection counts as zero.
func (s *ChromemStore) Count() int {
	col := s.db.GetCollection(s.collection, nil)
	if col == nil {
		return 0
	}
	return col.Count()
}

func (s *ChromemStore) Retrieve(ctx context.Context, vector []float32, threshold float32, maxResults int) ([]Chunk, error) {
	col := s.db.GetCollection(s.collection, nil)
	if col == nil || maxResults <= 0 {
		return []Chunk{}, nil
	}

	n := maxResults
	if count := col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return []Chunk{}, nil
	}

	docs, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, unavailable(err, "chromem")
	}

	chunks := make([]Chunk, 0, len(docs))
	for _, doc := range docs {
		chunks = append(chunks, Chunk{
			ID:         doc.ID,
			Content:    doc.Content,
			Similarity: doc.Similarity,
			Metadata:   doc.Metadata,
		})
	}
	return selectChunks(chunks, threshold, maxResults), nil
}

// Document is a chunk ready to be stored, embedding included.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Source    string
}

// Upsert adds or replaces documents by id.
func (s *ChromemStore) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	col, err := s.db.GetOrCreateCollection(s.collection, nil, nil)
	if err != nil {
		return err
	}

	batch := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Embedding: d.Embedding,
			Metadata:  map[string]string{metadataSource: d.Source},
		})
	}
	return col.AddDocuments(ctx, batch, 1)
}

// Delete removes documents by id. Unknown ids are ignored.
func (s *ChromemStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	col := s.db.GetCollection(s.collection, nil)
	if col == nil {
		return nil
	}
	return col.Delete(ctx, nil, nil, ids...)
}
