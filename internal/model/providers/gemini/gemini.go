package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harunnryd/ragent/internal/model/contract"

	"google.golang.org/genai"
)

const defaultEmbeddingModel = "text-embedding-004"

type Provider struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string {
	return p.model
}

func (p *Provider) Type() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	system, contents := convertContents(req.Messages)

	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			b, _ := json.Marshal(t.Parameters)
			var schema genai.Schema
			_ = json.Unmarshal(b, &schema)
			decls = append(decls, &genai.FunctionDeclaration{Name: t.Name, Description: t.Description, Parameters: &schema})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		if req.ToolChoice == contract.ToolChoiceAuto {
			cfg.ToolConfig = &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto}}
		}
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	return convertResponse(resp), nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	model := p.model
	if model == "" || !strings.Contains(model, "embedding") {
		model = defaultEmbeddingModel
	}

	resp, err := p.client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini embedding returned empty result")
	}

	return resp.Embeddings[0].Values, nil
}

func convertContents(in []contract.Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	var contents []*genai.Content

	for _, m := range in {
		switch m.Role {
		case contract.RoleSystem:
			if system == nil {
				system = &genai.Content{Role: string(genai.RoleUser)}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: m.Content})
		case contract.RoleTool:
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{ID: m.ToolCallID, Name: m.Name, Response: responsePayload(m.Content)},
			}}})
		case contract.RoleAssistant:
			content := &genai.Content{Role: string(genai.RoleModel)}
			if m.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if strings.TrimSpace(tc.Arguments) != "" {
					_ = json.Unmarshal([]byte(tc.Arguments), &args)
				}
				content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			contents = append(contents, content)
		default:
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	return system, contents
}

// responsePayload keeps JSON objects as-is and wraps anything else under "output".
func responsePayload(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"output": content}
}

func convertResponse(resp *genai.GenerateContentResponse) *contract.CompletionResponse {
	out := &contract.CompletionResponse{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}

	candidate := resp.Candidates[0]
	msg := contract.Message{Role: contract.RoleAssistant}
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				msg.Content += part.Text
			}
			if fc := part.FunctionCall; fc != nil {
				argsJSON, _ := json.Marshal(fc.Args)
				msg.ToolCalls = append(msg.ToolCalls, &contract.ToolCall{ID: fc.ID, Name: fc.Name, Arguments: string(argsJSON)})
			}
		}
	}

	contract.AssignToolCallIDs(msg.ToolCalls)

	out.Choices = []contract.Choice{{
		FinishReason: finishReason(candidate.FinishReason, len(msg.ToolCalls) > 0),
		Message:      msg,
	}}
	return out
}

// finishReason maps Gemini's reasons; STOP with function calls is a tool request.
func finishReason(reason genai.FinishReason, hasToolCalls bool) string {
	switch reason {
	case genai.FinishReasonStop, "":
		if hasToolCalls {
			return contract.FinishReasonToolCalls
		}
		return contract.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return contract.FinishReasonLength
	default:
		return strings.ToLower(string(reason))
	}
}
