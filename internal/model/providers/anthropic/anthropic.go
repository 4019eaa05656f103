package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harunnryd/ragent/internal/model/contract"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 1024

type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	RequestTimeout time.Duration
}

func New(opts Options) *Provider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.RequestTimeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.RequestTimeout))
	}

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:    anthropic.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: maxTokens,
	}
}

func (p *Provider) Name() string {
	return p.model
}

func (p *Provider) Type() string {
	return "anthropic"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	system, messages := convertMessages(req.Messages)

	var tools []anthropic.ToolUnionParam
	for _, t := range req.Tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: inputSchema(t.Parameters),
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}

	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		MaxTokens: p.maxTokens,
		System:    system,
		Messages:  messages,
		Tools:     tools,
	}
	if len(tools) > 0 && req.ToolChoice == contract.ToolChoiceAuto {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	out := contract.Message{Role: contract.RoleAssistant}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(b.Input)
			out.ToolCalls = append(out.ToolCalls, &contract.ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: string(inputJSON),
			})
		}
	}

	return &contract.CompletionResponse{Choices: []contract.Choice{{
		FinishReason: finishReason(msg.StopReason),
		Message:      out,
	}}}, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding not supported by anthropic provider")
}

// convertMessages lifts system messages into the system prompt and folds consecutive
// tool results into one user turn, which is how the Messages API expects them.
func convertMessages(in []contract.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, m := range in {
		if m.Role == contract.RoleTool {
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))
			continue
		}
		flush()

		switch m.Role {
		case contract.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case contract.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if strings.TrimSpace(m.Content) != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, toolInput(tc.Arguments), tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	flush()

	return system, out
}

func toolInput(arguments string) map[string]interface{} {
	input := map[string]interface{}{}
	if strings.TrimSpace(arguments) == "" {
		return input
	}
	_ = json.Unmarshal([]byte(arguments), &input)
	return input
}

func inputSchema(params map[string]interface{}) anthropic.ToolInputSchemaParam {
	schema := anthropic.ToolInputSchemaParam{Properties: map[string]interface{}{}}
	if params == nil {
		return schema
	}
	if props, ok := params["properties"].(map[string]interface{}); ok {
		schema.Properties = props
	}
	switch required := params["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	return schema
}

func finishReason(reason anthropic.StopReason) string {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return contract.FinishReasonStop
	case anthropic.StopReasonToolUse:
		return contract.FinishReasonToolCalls
	case anthropic.StopReasonMaxTokens:
		return contract.FinishReasonLength
	default:
		return string(reason)
	}
}
