package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/model/contract"
)

// Tool is an executable capability the model can request by name.
type Tool interface {
	Declaration() contract.ToolDef
	Call(ctx context.Context, args string) (string, error)
}

// Handler receives arguments already decoded into A.
type Handler[A any] func(ctx context.Context, args A) (string, error)

type typedTool[A any] struct {
	decl    contract.ToolDef
	handler Handler[A]
}

// New binds a declaration to a typed handler. Arguments are checked against
// decl.Parameters and then decoded strictly into A; unknown keys are rejected.
func New[A any](decl contract.ToolDef, handler Handler[A]) Tool {
	decl.Name = NormalizeToolName(decl.Name)
	return &typedTool[A]{decl: decl, handler: handler}
}

func (t *typedTool[A]) Declaration() contract.ToolDef {
	return t.decl
}

func (t *typedTool[A]) Call(ctx context.Context, args string) (string, error) {
	raw := json.RawMessage(strings.TrimSpace(args))
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	if err := ValidateInput(t.decl.Parameters, raw); err != nil {
		return "", ragentErrors.MalformedToolArguments(t.decl.Name, err)
	}

	decoded, err := decodeStrict[A](raw)
	if err != nil {
		return "", ragentErrors.MalformedToolArguments(t.decl.Name, err)
	}

	return t.handler(ctx, decoded)
}

func decodeStrict[A any](raw json.RawMessage) (A, error) {
	var out A

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	if dec.More() {
		return out, fmt.Errorf("trailing data after arguments object")
	}
	return out, nil
}

// NoArgs is the argument type of tools that declare no properties.
type NoArgs struct{}

// JSON marshals v into the text a tool hands back to the model.
func JSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(name)
}
