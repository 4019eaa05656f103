package model

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model/contract"
	anthropicProvider "github.com/harunnryd/ragent/internal/model/providers/anthropic"
	geminiProvider "github.com/harunnryd/ragent/internal/model/providers/gemini"
	openaiProvider "github.com/harunnryd/ragent/internal/model/providers/openai"
)

// Router resolves model names to providers. It is the process-wide Completion and
// Embedding client, built once at startup and injected into the agents.
type Router struct {
	defaultModel   string
	embeddingModel string
	providers      map[string]Provider
	mu             sync.RWMutex
}

var (
	_ Completer = (*Router)(nil)
	_ Embedder  = (*Router)(nil)
)

// NewRouter builds providers for every registry entry. Entries that cannot be built
// (usually a missing API key) are skipped with a warning.
func NewRouter(ctx context.Context, cfg config.ModelsConfig) (*Router, error) {
	router := &Router{
		defaultModel:   cfg.Default,
		embeddingModel: cfg.Embedding,
		providers:      make(map[string]Provider),
	}

	for _, entry := range cfg.Registry {
		provider, err := createProvider(ctx, entry)
		if err != nil {
			slog.Warn("Failed to create provider", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		router.providers[entry.Name] = provider
		slog.Debug("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	if len(router.providers) == 0 && len(cfg.Registry) > 0 {
		return nil, ragentErrors.Internal("no providers initialized")
	}

	return router, nil
}

// NewRouterWithProviders wires pre-built providers, keyed by Provider.Name().
func NewRouterWithProviders(defaultModel, embeddingModel string, providers ...Provider) *Router {
	router := &Router{
		defaultModel:   defaultModel,
		embeddingModel: embeddingModel,
		providers:      make(map[string]Provider, len(providers)),
	}
	for _, p := range providers {
		router.providers[p.Name()] = p
	}
	return router
}

// Complete sends the request to req.Model, or to the default model when it is empty.
func (r *Router) Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if req.Model == "" {
		req.Model = r.defaultModel
	}

	provider, err := r.resolve(req.Model)
	if err != nil {
		return nil, ragentErrors.WrapWithCategory(err, "completion model unavailable", ragentErrors.ErrCompletionUnavailable)
	}

	logger.From(ctx).Debug("Routing completion request", "model", req.Model, "provider", provider.Type(), "messages", len(req.Messages), "tools", len(req.Tools))

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return nil, ragentErrors.WrapWithCategory(err, fmt.Sprintf("completion via %s", req.Model), ragentErrors.ErrCompletionUnavailable)
	}
	return resp, nil
}

// Embed embeds one text with the configured embedding model.
func (r *Router) Embed(ctx context.Context, text string) ([]float32, error) {
	provider, err := r.resolve(r.embeddingModel)
	if err != nil {
		return nil, ragentErrors.WrapWithCategory(err, "embedding model unavailable", ragentErrors.ErrEmbeddingUnavailable)
	}

	logger.From(ctx).Debug("Routing embedding request", "model", r.embeddingModel, "provider", provider.Type())

	vector, err := provider.Embed(ctx, text)
	if err != nil {
		return nil, ragentErrors.WrapWithCategory(err, "embedding failed", ragentErrors.ErrEmbeddingUnavailable)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty vector from %s: %w", r.embeddingModel, ragentErrors.ErrEmbeddingUnavailable)
	}
	return vector, nil
}

func (r *Router) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for name := range r.providers {
		models = append(models, name)
	}
	return models
}

func (r *Router) resolve(model string) (Provider, error) {
	r.mu.RLock()
	provider, exists := r.providers[model]
	r.mu.RUnlock()

	if !exists {
		return nil, ragentErrors.NotFound(fmt.Sprintf("model %s not configured", model))
	}
	return provider, nil
}

func createProvider(ctx context.Context, entry config.ModelRegistry) (Provider, error) {
	timeout, err := config.DurationOrDefault(entry.RequestTimeout, config.DefaultModelRequestTimeout)
	if err != nil {
		return nil, ragentErrors.InvalidInput(fmt.Sprintf("invalid request_timeout for model %s: %v", entry.Name, err))
	}

	providerType := strings.ToLower(entry.Provider)
	switch providerType {
	case "openai", "mistral":
		if entry.APIKey == "" {
			return nil, ragentErrors.InvalidInput(fmt.Sprintf("API key required for %s provider", entry.Provider))
		}

		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
			if providerType == "mistral" {
				baseURL = config.DefaultMistralBaseURL
			}
		}

		return openaiProvider.New(openaiProvider.Options{
			APIKey:     entry.APIKey,
			BaseURL:    baseURL,
			Model:      entry.Name,
			Type:       providerType,
			HTTPClient: &http.Client{Timeout: timeout},
		}), nil

	case "ollama":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOllamaBaseURL
		}

		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = config.DefaultOllamaAPIKey
		}

		return openaiProvider.New(openaiProvider.Options{
			APIKey:     apiKey,
			BaseURL:    baseURL,
			Model:      entry.Name,
			Type:       "ollama",
			HTTPClient: &http.Client{Timeout: timeout},
		}), nil

	case "anthropic":
		if entry.APIKey == "" {
			return nil, ragentErrors.InvalidInput("API key required for Anthropic provider")
		}

		return anthropicProvider.New(anthropicProvider.Options{
			APIKey:         entry.APIKey,
			BaseURL:        entry.BaseURL,
			Model:          entry.Name,
			MaxTokens:      entry.MaxTokens,
			RequestTimeout: timeout,
		}), nil

	case "gemini":
		if entry.APIKey == "" {
			return nil, ragentErrors.InvalidInput("API key required for Gemini provider")
		}

		provider, err := geminiProvider.New(ctx, entry.APIKey, entry.Name)
		if err != nil {
			return nil, ragentErrors.WrapWithCategory(err, "failed to create Gemini provider", ragentErrors.ErrInternal)
		}
		return provider, nil

	default:
		return nil, ragentErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
