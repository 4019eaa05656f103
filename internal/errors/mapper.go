package errors

import (
	"context"
	"errors"
	"fmt"
)

// kinds is checked in order; the first sentinel found in the chain names the failure.
var kinds = []struct {
	err  error
	name string
}{
	{ErrEmbeddingUnavailable, "EmbeddingUnavailable"},
	{ErrRetrievalUnavailable, "RetrievalUnavailable"},
	{ErrCompletionUnavailable, "CompletionUnavailable"},
	{ErrNoCompletionChoices, "NoCompletionChoices"},
	{ErrUnrecognizedFinishReason, "UnrecognizedFinishReason"},
	{ErrIterationLimitExceeded, "IterationLimitExceeded"},
	{ErrUnknownTool, "UnknownTool"},
	{ErrMalformedToolArguments, "MalformedToolArguments"},
	{ErrToolFailed, "ToolFailed"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrNotFound, "NotFound"},
	{ErrConflict, "Conflict"},
	{ErrTransient, "Transient"},
	{ErrInternal, "Internal"},
}

// Kind returns the stable name of the failure category carried by err.
// It is meant for log attributes, never for user-facing text.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

// Wrap wraps an error with context while keeping its category.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory attaches category to err. Both stay reachable through errors.Is.
func WrapWithCategory(err error, message string, category error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w: %w", message, category, err)
}

// Is reports whether err belongs to category.
func Is(err error, category error) bool {
	return errors.Is(err, category)
}

// As is errors.As, re-exported so callers only import one errors package.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is errors.New.
func New(text string) error {
	return errors.New(text)
}

func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

func UnknownTool(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

func MalformedToolArguments(tool string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w for %s", ErrMalformedToolArguments, tool)
	}
	return fmt.Errorf("%w for %s: %v", ErrMalformedToolArguments, tool, cause)
}
