package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model/contract"
)

// checkToolCalls rejects a tool_calls batch the loop cannot answer one-to-one:
// no calls, an empty entry, or an id that is missing or repeated.
func checkToolCalls(calls []*contract.ToolCall) error {
	if len(calls) == 0 {
		return fmt.Errorf("%w: tool_calls without any call", ragentErrors.ErrUnrecognizedFinishReason)
	}

	seen := make(map[string]struct{}, len(calls))
	for i, call := range calls {
		switch {
		case call == nil:
			return fmt.Errorf("%w: tool call %d is empty", ragentErrors.ErrUnrecognizedFinishReason, i)
		case call.ID == "":
			return fmt.Errorf("%w: tool call %d (%s) has no id", ragentErrors.ErrUnrecognizedFinishReason, i, call.Name)
		}
		if _, dup := seen[call.ID]; dup {
			return fmt.Errorf("%w: duplicate tool call id %q", ragentErrors.ErrUnrecognizedFinishReason, call.ID)
		}
		seen[call.ID] = struct{}{}
	}
	return nil
}

// dispatch runs every requested call and returns one tool message per call, in
// request order. With ParallelTools the calls of one batch run concurrently.
func (a *ToolAgent) dispatch(ctx context.Context, calls []*contract.ToolCall) ([]contract.Message, error) {
	results := make([]contract.Message, len(calls))

	if !a.opts.ParallelTools || len(calls) == 1 {
		for i, call := range calls {
			msg, err := a.dispatchOne(ctx, call)
			if err != nil {
				return nil, err
			}
			results[i] = msg
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(calls))
	for i, call := range calls {
		g.Go(func() error {
			msg, err := a.dispatchOne(gctx, call)
			if err != nil {
				return err
			}
			results[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// dispatchOne applies the tool error policy. Cancellation always aborts.
func (a *ToolAgent) dispatchOne(ctx context.Context, call *contract.ToolCall) (contract.Message, error) {
	log := logger.From(ctx).With("tool", call.Name, "tool_call_id", call.ID)

	content, err := a.tools.Dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return contract.Message{}, err
		}
		if a.opts.ErrorPolicy == config.ToolErrorPolicyAbort {
			return contract.Message{}, err
		}

		log.Warn("Tool call failed, reporting to model", "kind", ragentErrors.Kind(err), "error", err)
		content = toolErrorContent(err)
	}

	return contract.Message{
		Role:       contract.RoleTool,
		Name:       call.Name,
		ToolCallID: call.ID,
		Content:    content,
	}, nil
}

// toolErrorContent is the tool-result text the model sees for a failed call.
func toolErrorContent(err error) string {
	data, marshalErr := json.Marshal(map[string]string{
		"error": ragentErrors.Kind(err) + ": " + err.Error(),
	})
	if marshalErr != nil {
		return `{"error":"` + ragentErrors.Kind(err) + `"}`
	}
	return string(data)
}
