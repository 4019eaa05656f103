package agent

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model"
	"github.com/harunnryd/ragent/internal/model/contract"
	"github.com/harunnryd/ragent/internal/retrieval"
)

type RAGOptions struct {
	// Model is sent with every completion request; empty means the router default.
	Model          string
	Threshold      float32
	MatchCount     int
	Separator      string
	PromptTemplate string
	FallbackAnswer string
	Timeout        time.Duration
}

func RAGOptionsFromConfig(cfg *config.Config) (RAGOptions, error) {
	timeout, err := cfg.Agent.TimeoutDuration()
	if err != nil {
		return RAGOptions{}, fmt.Errorf("agent.timeout: %w", err)
	}

	return RAGOptions{
		Model:          cfg.Models.Default,
		Threshold:      float32(cfg.Retrieval.Threshold),
		MatchCount:     cfg.Retrieval.MatchCount,
		Separator:      cfg.Retrieval.Separator,
		PromptTemplate: cfg.Prompts.RAGTemplate,
		FallbackAnswer: cfg.Agent.FallbackAnswer,
		Timeout:        timeout,
	}, nil
}

type promptData struct {
	Context string
	Query   string
}

// RAGAgent answers in one round trip: embed, retrieve, complete.
type RAGAgent struct {
	embedder  model.Embedder
	retriever retrieval.Retriever
	completer model.Completer
	prompt    *template.Template
	opts      RAGOptions
}

var _ Answerer = (*RAGAgent)(nil)

func NewRAGAgent(embedder model.Embedder, retriever retrieval.Retriever, completer model.Completer, opts RAGOptions) (*RAGAgent, error) {
	if opts.PromptTemplate == "" {
		opts.PromptTemplate = config.DefaultRAGTemplate
	}
	if opts.FallbackAnswer == "" {
		opts.FallbackAnswer = config.DefaultAgentFallbackAnswer
	}
	if opts.MatchCount <= 0 {
		opts.MatchCount = config.DefaultRetrievalMatchCount
	}

	prompt, err := template.New("rag").Option("missingkey=error").Parse(opts.PromptTemplate)
	if err != nil {
		return nil, ragentErrors.InvalidInput(fmt.Sprintf("prompts.rag_template: %v", err))
	}

	return &RAGAgent{
		embedder:  embedder,
		retriever: retriever,
		completer: completer,
		prompt:    prompt,
		opts:      opts,
	}, nil
}

func (a *RAGAgent) Answer(ctx context.Context, query string) string {
	return answer(ctx, "rag", a.opts.Timeout, a.opts.FallbackAnswer, func(ctx context.Context) (*Result, error) {
		return a.Run(ctx, query)
	})
}

// Run executes the pipeline once. Retrieval failures degrade to an empty context;
// every other failure ends the run.
func (a *RAGAgent) Run(ctx context.Context, query string) (*Result, error) {
	log := logger.From(ctx)

	vector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, classify(ctx, err, "embed query", ragentErrors.ErrEmbeddingUnavailable)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector: %w", ragentErrors.ErrEmbeddingUnavailable)
	}

	chunks, err := a.retriever.Retrieve(ctx, vector, a.opts.Threshold, a.opts.MatchCount)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("Retrieval failed, continuing without context", "kind", ragentErrors.Kind(err), "error", err)
		chunks = nil
	}
	log.Debug("Context retrieved", "chunks", len(chunks))

	prompt, err := a.BuildPrompt(JoinChunks(chunks, a.opts.Separator), query)
	if err != nil {
		return nil, err
	}

	userMsg := contract.Message{Role: contract.RoleUser, Content: prompt}
	resp, err := a.completer.Complete(ctx, contract.CompletionRequest{
		Model:    a.opts.Model,
		Messages: []contract.Message{userMsg},
	})
	if err != nil {
		return nil, classify(ctx, err, "rag completion", ragentErrors.ErrCompletionUnavailable)
	}

	choice, ok := resp.First()
	if !ok {
		return nil, ragentErrors.ErrNoCompletionChoices
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, fmt.Errorf("completion carried no content: %w", ragentErrors.ErrNoCompletionChoices)
	}

	return &Result{
		Content:    choice.Message.Content,
		Iterations: 1,
		History:    []contract.Message{userMsg, contract.CloneMessage(choice.Message)},
	}, nil
}

// BuildPrompt renders the single user message that carries context and question.
func (a *RAGAgent) BuildPrompt(contextText, query string) (string, error) {
	var b strings.Builder
	if err := a.prompt.Execute(&b, promptData{Context: contextText, Query: query}); err != nil {
		return "", fmt.Errorf("render rag prompt: %w", err)
	}
	return b.String(), nil
}

// JoinChunks concatenates chunk contents in the order given.
func JoinChunks(chunks []retrieval.Chunk, separator string) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, separator)
}
