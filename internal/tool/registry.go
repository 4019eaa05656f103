package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunnryd/ragent/internal/concurrency"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model/contract"
)

// Registry holds all available tools. It is filled at startup and read-only afterwards.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds t. Names must be non-empty and unique.
func (r *Registry) Register(t Tool) error {
	name := NormalizeToolName(t.Declaration().Name)
	if name == "" {
		return ragentErrors.InvalidInput("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered: %w", name, ragentErrors.ErrConflict)
	}

	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[NormalizeToolName(name)]
	return t, ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Declarations returns every tool definition in registration order.
func (r *Registry) Declarations() []contract.ToolDef {
	defs := make([]contract.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Declaration())
	}
	return defs
}

// Descriptors pairs each declaration with its metadata, in registration order.
func (r *Registry) Descriptors() []ToolDescriptor {
	descriptors := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]

		meta := normalizeToolMetadata(ToolMetadata{})
		if provider, ok := t.(MetadataProvider); ok {
			meta = normalizeToolMetadata(provider.ToolMetadata())
		}

		descriptors = append(descriptors, ToolDescriptor{
			Definition: t.Declaration(),
			Metadata:   meta,
		})
	}
	return descriptors
}

// Dispatch runs the named tool with raw JSON arguments. Failures are categorized as
// ErrUnknownTool, ErrMalformedToolArguments or ErrToolFailed; context errors pass through.
func (r *Registry) Dispatch(ctx context.Context, name, args string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", ragentErrors.UnknownTool(name)
	}
	resolved := NormalizeToolName(name)
	log := logger.From(ctx)

	start := time.Now()
	log.Debug("Executing tool", "tool", resolved)

	var result string
	err := concurrency.Guard(func() error {
		var callErr error
		result, callErr = t.Call(ctx, args)
		return callErr
	})

	duration := time.Since(start)
	if err != nil {
		log.Warn("Tool execution failed", "tool", resolved, "error", err, "duration", duration)
		return "", categorize(ctx, resolved, err)
	}

	log.Debug("Tool execution success", "tool", resolved, "duration", duration)
	return result, nil
}

func categorize(ctx context.Context, name string, err error) error {
	switch {
	case ragentErrors.Is(err, ragentErrors.ErrMalformedToolArguments):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%s: %w: %v", name, ragentErrors.ErrToolFailed, err)
	}
}

// MustRegister is Register for static setups; it panics on error.
func (r *Registry) MustRegister(tools ...Tool) *Registry {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			slog.Error("Tool registration failed", "error", err)
			panic(err)
		}
	}
	return r
}
