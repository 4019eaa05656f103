package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harunnryd/ragent/internal/config"
)

const maxRPCResponseSize = 4 << 20

// RPCRetriever calls a PostgREST stored function (Supabase `rpc`) that performs
// the similarity search server side.
type RPCRetriever struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

type RPCOptions struct {
	BaseURL  string
	Function string
	APIKey   string
	Timeout  time.Duration
	Client   *http.Client
}

type rpcRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float32   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

type rpcRow struct {
	ID         json.RawMessage `json:"id"`
	Content    string          `json:"content"`
	Similarity *float32        `json:"similarity"`
}

func NewRPCRetriever(opts RPCOptions) (*RPCRetriever, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("retrieval.rpc.base_url is required")
	}

	function := strings.TrimSpace(opts.Function)
	if function == "" {
		function = config.DefaultRetrievalRPCFunction
	}

	endpoint, err := url.JoinPath(base, "rest", "v1", "rpc", function)
	if err != nil {
		return nil, fmt.Errorf("invalid retrieval.rpc.base_url: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: durationOr(opts.Timeout, 10*time.Second)}
	}

	return &RPCRetriever{client: client, endpoint: endpoint, apiKey: opts.APIKey}, nil
}

func (r *RPCRetriever) Retrieve(ctx context.Context, vector []float32, threshold float32, maxResults int) ([]Chunk, error) {
	body, err := json.Marshal(rpcRequest{
		QueryEmbedding: vector,
		MatchThreshold: threshold,
		MatchCount:     maxResults,
	})
	if err != nil {
		return nil, unavailable(err, "rpc")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, unavailable(err, "rpc")
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, unavailable(err, "rpc")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRPCResponseSize))
	if err != nil {
		return nil, unavailable(err, "rpc")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, unavailable(fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(data))), "rpc")
	}

	var rows []rpcRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, unavailable(fmt.Errorf("decode rows: %w", err), "rpc")
	}

	chunks := make([]Chunk, 0, len(rows))
	for _, row := range rows {
		chunk := Chunk{ID: rowID(row.ID), Content: row.Content, Similarity: threshold}
		// Without a score the server's match_threshold is the only bound known.
		if row.Similarity != nil {
			chunk.Similarity = *row.Similarity
		}
		chunks = append(chunks, chunk)
	}
	return selectChunks(chunks, threshold, maxResults), nil
}

func rowID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
