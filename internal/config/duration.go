package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationOrDefault parses a duration string and falls back to defaultValue when empty.
func DurationOrDefault(value string, defaultValue string) (time.Duration, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		candidate = strings.TrimSpace(defaultValue)
	}
	if candidate == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(candidate)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", candidate, err)
	}
	return d, nil
}

// TimeoutDuration is the caller-level deadline wrapped around one agent invocation.
// Zero disables it.
func (c AgentConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "0" {
		return 0, nil
	}
	return DurationOrDefault(c.Timeout, DefaultAgentTimeout)
}

// Validate rejects settings the agents cannot run with.
func (c AgentConfig) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.MaxIterations)
	}
	switch c.ToolErrorPolicy {
	case ToolErrorPolicyReport, ToolErrorPolicyAbort:
	default:
		return fmt.Errorf("agent.tool_error_policy must be %q or %q, got %q", ToolErrorPolicyReport, ToolErrorPolicyAbort, c.ToolErrorPolicy)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return fmt.Errorf("agent.timeout: %w", err)
	}
	return nil
}
