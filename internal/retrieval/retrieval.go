package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
)

// Chunk is one stored passage returned by a similarity search.
type Chunk struct {
	ID         string
	Content    string
	Similarity float32
	Metadata   map[string]string
}

// Retriever finds chunks similar to a query vector. Results hold only chunks with
// Similarity >= threshold, in descending similarity order, at most maxResults.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, threshold float32, maxResults int) ([]Chunk, error)
}

// New builds the retriever selected by cfg.Backend.
func New(cfg config.RetrievalConfig) (Retriever, error) {
	switch cfg.Backend {
	case "", config.RetrievalBackendChromem:
		return OpenChromemStore(cfg.Path, cfg.Collection)
	case config.RetrievalBackendRPC:
		timeout, err := config.DurationOrDefault(cfg.RPC.Timeout, config.DefaultRetrievalRPCTimeout)
		if err != nil {
			return nil, ragentErrors.InvalidInput(fmt.Sprintf("retrieval.rpc.timeout: %v", err))
		}
		return NewRPCRetriever(RPCOptions{
			BaseURL:  cfg.RPC.BaseURL,
			Function: cfg.RPC.Function,
			APIKey:   cfg.RPC.APIKey,
			Timeout:  timeout,
		})
	default:
		return nil, ragentErrors.InvalidInput(fmt.Sprintf("unknown retrieval backend %q", cfg.Backend))
	}
}

// selectChunks applies the Retriever contract to whatever a backend returned.
func selectChunks(chunks []Chunk, threshold float32, maxResults int) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Similarity >= threshold {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})

	if maxResults >= 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func unavailable(err error, backend string) error {
	return ragentErrors.WrapWithCategory(err, backend+" search failed", ragentErrors.ErrRetrievalUnavailable)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
