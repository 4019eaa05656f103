package agent

import (
	"context"
	"sync"

	"github.com/harunnryd/ragent/internal/model/contract"
	"github.com/harunnryd/ragent/internal/retrieval"

	"github.com/stretchr/testify/mock"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*contract.CompletionResponse)
	return resp, args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vector, _ := args.Get(0).([]float32)
	return vector, args.Error(1)
}

type stubRetriever struct {
	chunks []retrieval.Chunk
	err    error
	calls  int
}

func (s *stubRetriever) Retrieve(ctx context.Context, vector []float32, threshold float32, maxResults int) ([]retrieval.Chunk, error) {
	s.calls++
	return s.chunks, s.err
}

// scriptedCompleter replays responses in order and records every request.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []*contract.CompletionResponse
	repeat    *contract.CompletionResponse
	requests  []contract.CompletionRequest
}

func (s *scriptedCompleter) Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.responses) > 0 {
		resp := s.responses[0]
		s.responses = s.responses[1:]
		return resp, nil
	}
	if s.repeat != nil {
		return s.repeat, nil
	}
	return &contract.CompletionResponse{}, nil
}

func (s *scriptedCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func stopResponse(content string) *contract.CompletionResponse {
	return &contract.CompletionResponse{Choices: []contract.Choice{{
		FinishReason: contract.FinishReasonStop,
		Message:      contract.Message{Role: contract.RoleAssistant, Content: content},
	}}}
}

func toolCallsResponse(calls ...*contract.ToolCall) *contract.CompletionResponse {
	return &contract.CompletionResponse{Choices: []contract.Choice{{
		FinishReason: contract.FinishReasonToolCalls,
		Message:      contract.Message{Role: contract.RoleAssistant, ToolCalls: calls},
	}}}
}

func call(id, name, args string) *contract.ToolCall {
	return &contract.ToolCall{ID: id, Name: name, Arguments: args}
}
