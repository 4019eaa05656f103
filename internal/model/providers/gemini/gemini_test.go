package gemini

import (
	"testing"

	"github.com/harunnryd/ragent/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFinishReasonMapping(t *testing.T) {
	assert.Equal(t, contract.FinishReasonStop, finishReason(genai.FinishReasonStop, false))
	assert.Equal(t, contract.FinishReasonToolCalls, finishReason(genai.FinishReasonStop, true))
	assert.Equal(t, contract.FinishReasonLength, finishReason(genai.FinishReasonMaxTokens, false))
	assert.Equal(t, "safety", finishReason(genai.FinishReasonSafety, false))
}

func TestConvertContents_RolesAndFunctionParts(t *testing.T) {
	system, contents := convertContents([]contract.Message{
		{Role: contract.RoleSystem, Content: "prefer tools"},
		{Role: contract.RoleUser, Content: "where am I?"},
		{Role: contract.RoleAssistant, ToolCalls: []*contract.ToolCall{{ID: "c1", Name: "getLocation", Arguments: "{}"}}},
		{Role: contract.RoleTool, ToolCallID: "c1", Name: "getLocation", Content: `{"city":"Paris"}`},
		{Role: contract.RoleTool, ToolCallID: "c2", Name: "getPaymentStatus", Content: "plain text"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "prefer tools", system.Parts[0].Text)

	require.Len(t, contents, 4)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "getLocation", contents[1].Parts[0].FunctionCall.Name)

	fr := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "getLocation", fr.Name)
	assert.Equal(t, "Paris", fr.Response["city"])

	assert.Equal(t, "plain text", contents[3].Parts[0].FunctionResponse.Response["output"])
}

func TestConvertResponse_SynthesizesCallIDs(t *testing.T) {
	resp := convertResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: genai.FinishReasonStop,
		Content: &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{
			{FunctionCall: &genai.FunctionCall{Name: "getLocation", Args: map[string]any{}}},
			{FunctionCall: &genai.FunctionCall{Name: "getCurrentWeather", Args: map[string]any{"location": "Paris"}}},
		}},
	}}})

	choice, ok := resp.First()
	require.True(t, ok)
	assert.Equal(t, contract.FinishReasonToolCalls, choice.FinishReason)
	require.Len(t, choice.Message.ToolCalls, 2)
	assert.Equal(t, "call_1", choice.Message.ToolCalls[0].ID)
	assert.Equal(t, "call_2", choice.Message.ToolCalls[1].ID)
	assert.JSONEq(t, `{"location":"Paris"}`, choice.Message.ToolCalls[1].Arguments)
}

func TestConvertResponse_NoCandidatesMeansNoChoices(t *testing.T) {
	resp := convertResponse(&genai.GenerateContentResponse{})
	_, ok := resp.First()
	assert.False(t, ok)
}
