package logger

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
)

type contextKey string

const TraceIDKey contextKey = "trace_id"

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// EnsureTraceID keeps an existing trace id or mints a new ULID for this invocation.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return WithTraceID(ctx, id), id
}

func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// From returns the default logger annotated with the context's trace id.
func From(ctx context.Context) *slog.Logger {
	if id := GetTraceID(ctx); id != "" {
		return slog.Default().With("trace_id", id)
	}
	return slog.Default()
}
