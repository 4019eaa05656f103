package agent

import (
	"context"
	"time"

	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model/contract"
)

// Answerer is the boundary the host application talks to. Answer never fails:
// every internal error becomes the configured fallback text.
type Answerer interface {
	Answer(ctx context.Context, query string) string
}

// Result is the structured outcome of one Run.
type Result struct {
	Content    string
	Iterations int
	History    []contract.Message
}

// answer wraps run with a trace id and the caller-level timeout, and maps any
// failure to fallback after logging its kind.
func answer(ctx context.Context, agentName string, timeout time.Duration, fallback string, run func(context.Context) (*Result, error)) string {
	ctx, _ = logger.EnsureTraceID(ctx)
	log := logger.From(ctx).With("agent", agentName)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := run(ctx)
	if err != nil {
		log.Error("Agent run failed", "kind", ragentErrors.Kind(err), "error", err, "duration", time.Since(start))
		return fallback
	}

	log.Info("Agent run finished", "iterations", result.Iterations, "duration", time.Since(start))
	return result.Content
}

// classify makes sure err carries category unless the run was cancelled.
func classify(ctx context.Context, err error, message string, category error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if ragentErrors.Is(err, category) {
		return err
	}
	return ragentErrors.WrapWithCategory(err, message, category)
}
