package model

import (
	"context"

	"github.com/harunnryd/ragent/internal/model/contract"
)

// Completer is the Completion Client the agents depend on.
type Completer interface {
	Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
}

// Embedder is the Embedding Client: one text in, one vector out.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Provider interface {
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
	Type() string
}
