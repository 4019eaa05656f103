package contract

import "fmt"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons the agents act on. Providers pass any other reason through verbatim.
const (
	FinishReasonStop      = "stop"
	FinishReasonToolCalls = "tool_calls"
	FinishReasonLength    = "length"
)

const ToolChoiceAuto = "auto"

type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	Name       string      `json:"name,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolCalls  []*ToolCall `json:"tool_calls,omitempty"`
}

type CompletionRequest struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []ToolDef `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
}

type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type CompletionResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
}

// First returns choices[0], the only choice the agents consume.
func (r *CompletionResponse) First() (Choice, bool) {
	if r == nil || len(r.Choices) == 0 {
		return Choice{}, false
	}
	return r.Choices[0], true
}

type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CloneMessage deep-copies the tool call slice so history entries never alias provider data.
// Nil entries are kept so the copy stays verbatim.
func CloneMessage(m Message) Message {
	out := m
	if len(m.ToolCalls) > 0 {
		out.ToolCalls = make([]*ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			if tc == nil {
				continue
			}
			c := *tc
			out.ToolCalls[i] = &c
		}
	}
	return out
}

// AssignToolCallIDs gives every call without an id a call_<n> id that no other call
// in the batch already uses.
func AssignToolCallIDs(calls []*ToolCall) {
	used := make(map[string]struct{}, len(calls))
	for _, tc := range calls {
		if tc != nil && tc.ID != "" {
			used[tc.ID] = struct{}{}
		}
	}

	n := 0
	for _, tc := range calls {
		if tc == nil || tc.ID != "" {
			continue
		}
		for {
			n++
			id := fmt.Sprintf("call_%d", n)
			if _, taken := used[id]; !taken {
				tc.ID = id
				used[id] = struct{}{}
				break
			}
		}
	}
}

func CloneMessages(in []Message) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		out = append(out, CloneMessage(m))
	}
	return out
}
