package errors

import (
	"errors"
)

// Agent failure kinds. Every failure an agent run can end with wraps exactly one of these.
var (
	// ErrEmbeddingUnavailable - the embedding service returned no vector for the input
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrRetrievalUnavailable - vector search failed (non-fatal, RAG degrades to empty context)
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrCompletionUnavailable - the completion service could not be reached or rejected the request
	ErrCompletionUnavailable = errors.New("completion unavailable")

	// ErrNoCompletionChoices - the completion service answered without any choice
	ErrNoCompletionChoices = errors.New("no completion choices")

	// ErrUnrecognizedFinishReason - the model stopped for a reason the loop cannot act on
	ErrUnrecognizedFinishReason = errors.New("unrecognized finish reason")

	// ErrIterationLimitExceeded - the tool loop hit its iteration cap while still running
	ErrIterationLimitExceeded = errors.New("iteration limit exceeded")

	// ErrUnknownTool - the model requested a tool that is not registered
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMalformedToolArguments - tool arguments do not decode into the declared shape
	ErrMalformedToolArguments = errors.New("malformed tool arguments")

	// ErrToolFailed - a registered tool returned an error while executing
	ErrToolFailed = errors.New("tool execution failed")
)

// Ambient categories shared by config, providers and storage.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrTransient    = errors.New("transient error")
	ErrInternal     = errors.New("internal error")
)
