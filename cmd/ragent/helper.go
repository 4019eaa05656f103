package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/ragent/internal/agent"
	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
	"github.com/harunnryd/ragent/internal/model"
	"github.com/harunnryd/ragent/internal/retrieval"
	"github.com/harunnryd/ragent/internal/tool"

	// built-in tools register themselves with the tool catalog
	_ "github.com/harunnryd/ragent/internal/tool/builtin"

	"github.com/spf13/cobra"
)

const (
	agentRAG   = "rag"
	agentTools = "tools"
)

// components holds what every command builds from the loaded config.
type components struct {
	cfg    *config.Config
	router *model.Router
}

func newComponents(ctx context.Context, loaded *config.Config) (*components, error) {
	router, err := model.NewRouter(ctx, loaded.Models)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize models: %w", err)
	}
	return &components{cfg: loaded, router: router}, nil
}

func (c *components) ragAgent() (*agent.RAGAgent, error) {
	retriever, err := retrieval.New(c.cfg.Retrieval)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize retrieval: %w", err)
	}
	opts, err := agent.RAGOptionsFromConfig(c.cfg)
	if err != nil {
		return nil, err
	}
	return agent.NewRAGAgent(c.router, retriever, c.router, opts)
}

func (c *components) toolRegistry() (*tool.Registry, error) {
	options, err := tool.BuiltinOptionsFromConfig(c.cfg.Tools)
	if err != nil {
		return nil, err
	}
	return tool.NewBuiltinRegistry(options, c.cfg.Tools.Enabled)
}

func (c *components) toolAgent() (*agent.ToolAgent, error) {
	registry, err := c.toolRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tools: %w", err)
	}
	opts, err := agent.ToolOptionsFromConfig(c.cfg)
	if err != nil {
		return nil, err
	}
	return agent.NewToolAgent(c.router, registry, opts), nil
}

func (c *components) agent(name string) (agent.Answerer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case agentRAG:
		return c.ragAgent()
	case agentTools:
		return c.toolAgent()
	default:
		return nil, ragentErrors.InvalidInput(fmt.Sprintf("unknown agent %q (want %s or %s)", name, agentRAG, agentTools))
	}
}

// executeWithComponents runs fn under a signal-aware context with the components built.
func executeWithComponents(cmd *cobra.Command, fn func(ctx context.Context, c *components) error) error {
	loaded, err := loadConfigForCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	signals := NewSignalHandler(cmd.Context())
	signals.Start()
	defer signals.Stop()

	c, err := newComponents(signals.Context(), loaded)
	if err != nil {
		return err
	}

	return fn(signals.Context(), c)
}
