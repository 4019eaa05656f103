package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/logger"
	"github.com/harunnryd/ragent/internal/model"
	"github.com/harunnryd/ragent/internal/model/contract"
)

// ToolDispatcher is the part of tool.Registry the loop needs.
type ToolDispatcher interface {
	Declarations() []contract.ToolDef
	Dispatch(ctx context.Context, name, args string) (string, error)
}

type ToolOptions struct {
	Model          string
	SystemPrompt   string
	MaxIterations  int
	ErrorPolicy    string
	ParallelTools  bool
	FallbackAnswer string
	Timeout        time.Duration
}

func ToolOptionsFromConfig(cfg *config.Config) (ToolOptions, error) {
	if err := cfg.Agent.Validate(); err != nil {
		return ToolOptions{}, ragentErrors.InvalidInput(err.Error())
	}
	timeout, err := cfg.Agent.TimeoutDuration()
	if err != nil {
		return ToolOptions{}, err
	}

	return ToolOptions{
		Model:          cfg.Models.Default,
		SystemPrompt:   cfg.Prompts.ToolSystem,
		MaxIterations:  cfg.Agent.MaxIterations,
		ErrorPolicy:    cfg.Agent.ToolErrorPolicy,
		ParallelTools:  cfg.Agent.ParallelTools,
		FallbackAnswer: cfg.Agent.FallbackAnswer,
		Timeout:        timeout,
	}, nil
}

// ToolAgent runs the bounded model/tool loop.
type ToolAgent struct {
	completer model.Completer
	tools     ToolDispatcher
	opts      ToolOptions
}

var _ Answerer = (*ToolAgent)(nil)

func NewToolAgent(completer model.Completer, tools ToolDispatcher, opts ToolOptions) *ToolAgent {
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = config.DefaultToolSystemPrompt
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = config.DefaultAgentMaxIterations
	}
	if opts.ErrorPolicy == "" {
		opts.ErrorPolicy = config.DefaultAgentToolErrorPolicy
	}
	if opts.FallbackAnswer == "" {
		opts.FallbackAnswer = config.DefaultAgentFallbackAnswer
	}

	return &ToolAgent{
		completer: completer,
		tools:     tools,
		opts:      opts,
	}
}

func (a *ToolAgent) Answer(ctx context.Context, query string) string {
	return answer(ctx, "tools", a.opts.Timeout, a.opts.FallbackAnswer, func(ctx context.Context) (*Result, error) {
		return a.Run(ctx, query)
	})
}

// Run drives one query to DONE or ABORTED. The Result is returned in both cases so
// callers can inspect the history; err is non-nil exactly when the run aborted.
func (a *ToolAgent) Run(ctx context.Context, query string) (*Result, error) {
	state := newRunState(a.opts.SystemPrompt, query)
	declarations := a.tools.Declarations()
	log := logger.From(ctx)

	for state.Iteration < a.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return state.result(), state.abort(err)
		}
		state.Iteration++

		req := contract.CompletionRequest{
			Model:    a.opts.Model,
			Messages: contract.CloneMessages(state.History),
			Tools:    declarations,
		}
		if len(declarations) > 0 {
			req.ToolChoice = contract.ToolChoiceAuto
		}

		resp, err := a.completer.Complete(ctx, req)
		if err != nil {
			return state.result(), state.abort(classify(ctx, err, fmt.Sprintf("iteration %d", state.Iteration), ragentErrors.ErrCompletionUnavailable))
		}

		choice, ok := resp.First()
		if !ok {
			return state.result(), state.abort(ragentErrors.ErrNoCompletionChoices)
		}

		msg := contract.CloneMessage(choice.Message)
		if msg.Role == "" {
			msg.Role = contract.RoleAssistant
		}
		state.append(msg)

		log.Debug("Completion received", "iteration", state.Iteration, "finish_reason", choice.FinishReason, "tool_calls", len(msg.ToolCalls))

		switch choice.FinishReason {
		case contract.FinishReasonStop:
			state.finish(msg.Content)
			return state.result(), nil

		case contract.FinishReasonToolCalls:
			if err := checkToolCalls(msg.ToolCalls); err != nil {
				return state.result(), state.abort(err)
			}

			results, err := a.dispatch(ctx, msg.ToolCalls)
			if err != nil {
				return state.result(), state.abort(err)
			}
			state.append(results...)

		default:
			return state.result(), state.abort(fmt.Errorf("%w: %q", ragentErrors.ErrUnrecognizedFinishReason, choice.FinishReason))
		}
	}

	return state.result(), state.abort(fmt.Errorf("%w: %d iterations", ragentErrors.ErrIterationLimitExceeded, a.opts.MaxIterations))
}
