package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/harunnryd/ragent/internal/model/contract"

	"github.com/sashabaranov/go-openai"
)

// Provider talks to any OpenAI-compatible chat/embeddings API (OpenAI, Mistral, Ollama).
type Provider struct {
	client       *openai.Client
	model        string
	providerType string
}

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Type       string
	HTTPClient *http.Client
}

func New(opts Options) *Provider {
	cfg := openai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	providerType := opts.Type
	if providerType == "" {
		providerType = "openai"
	}

	return &Provider{
		client:       openai.NewClientWithConfig(cfg),
		model:        opts.Model,
		providerType: providerType,
	}
}

func (p *Provider) Name() string {
	return p.model
}

func (p *Provider) Type() string {
	return p.providerType
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == contract.RoleTool {
			msg.Name = m.Name
		}

		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}

		messages = append(messages, msg)
	}

	var tools []openai.Tool
	for _, t := range req.Tools {
		params := t.Parameters
		if params == nil {
			params = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Tools:    tools,
	}
	if len(tools) > 0 && req.ToolChoice != "" {
		chatReq.ToolChoice = req.ToolChoice
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", p.providerType, err)
	}

	out := &contract.CompletionResponse{Choices: make([]contract.Choice, 0, len(resp.Choices))}
	for _, choice := range resp.Choices {
		msg := contract.Message{
			Role:    contract.RoleAssistant,
			Content: choice.Message.Content,
		}
		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, &contract.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		contract.AssignToolCallIDs(msg.ToolCalls)
		out.Choices = append(out.Choices, contract.Choice{
			FinishReason: string(choice.FinishReason),
			Message:      msg,
		})
	}

	return out, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	model := p.model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, fmt.Errorf("%s embedding failed: %w", p.providerType, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}
