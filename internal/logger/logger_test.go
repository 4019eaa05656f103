package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestEnsureTraceID_KeepsExisting(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-1")
	ctx, id := EnsureTraceID(ctx)
	assert.Equal(t, "trace-1", id)
	assert.Equal(t, "trace-1", GetTraceID(ctx))
}

func TestEnsureTraceID_MintsULID(t *testing.T) {
	ctx, id := EnsureTraceID(context.Background())
	assert.Len(t, id, 26)
	assert.Equal(t, id, GetTraceID(ctx))
}

func TestNewHandler_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, "warn"))

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
