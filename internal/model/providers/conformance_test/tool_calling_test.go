package conformance_test

import (
	"context"
	"testing"

	"github.com/harunnryd/ragent/internal/model/contract"
)

type mockProvider struct {
	calls []contract.CompletionRequest
}

func (p *mockProvider) Name() string { return "mock" }
func (p *mockProvider) Type() string { return "mock" }

func (p *mockProvider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	p.calls = append(p.calls, contract.CompletionRequest{
		Model:      req.Model,
		Messages:   contract.CloneMessages(req.Messages),
		Tools:      req.Tools,
		ToolChoice: req.ToolChoice,
	})

	if len(p.calls) == 1 {
		return &contract.CompletionResponse{Choices: []contract.Choice{{
			FinishReason: contract.FinishReasonToolCalls,
			Message: contract.Message{
				Role: contract.RoleAssistant,
				ToolCalls: []*contract.ToolCall{{
					ID:        "call_1",
					Name:      "getPaymentStatus",
					Arguments: `{"transactionId":"T1001"}`,
				}},
			},
		}}}, nil
	}

	return &contract.CompletionResponse{Choices: []contract.Choice{{
		FinishReason: contract.FinishReasonStop,
		Message:      contract.Message{Role: contract.RoleAssistant, Content: "done"},
	}}}, nil
}

func (p *mockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func TestToolCallMustBeFollowedByToolResultMessage(t *testing.T) {
	p := &mockProvider{}

	messages := []contract.Message{{Role: contract.RoleUser, Content: "is T1001 paid?"}}
	tools := []contract.ToolDef{{Name: "getPaymentStatus", Description: "payment status", Parameters: map[string]interface{}{"type": "object"}}}

	resp, err := p.Generate(context.Background(), contract.CompletionRequest{Model: "x", Messages: messages, Tools: tools, ToolChoice: contract.ToolChoiceAuto})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	choice, ok := resp.First()
	if !ok || len(choice.Message.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call")
	}

	messages = append(messages, contract.CloneMessage(choice.Message))
	messages = append(messages, contract.Message{Role: contract.RoleTool, Name: "getPaymentStatus", ToolCallID: choice.Message.ToolCalls[0].ID, Content: `{"status":"Paid"}`})

	// Mutating the provider's message must not leak into history.
	choice.Message.ToolCalls[0].ID = "mutated"

	_, err = p.Generate(context.Background(), contract.CompletionRequest{Model: "x", Messages: messages, Tools: tools, ToolChoice: contract.ToolChoiceAuto})
	if err != nil {
		t.Fatalf("generate 2: %v", err)
	}

	if len(p.calls) != 2 {
		t.Fatalf("expected 2 calls")
	}

	second := p.calls[1]
	if len(second.Messages) != 3 {
		t.Fatalf("expected 3 messages in second call, got %d", len(second.Messages))
	}
	if got := second.Messages[1].ToolCalls[0].ID; got != "call_1" {
		t.Fatalf("assistant tool call id = %q, want call_1", got)
	}
	if second.Messages[2].Role != contract.RoleTool || second.Messages[2].ToolCallID != "call_1" {
		t.Fatalf("expected tool result message with tool_call_id call_1")
	}
}
