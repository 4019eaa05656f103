package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range providerKeyEnv {
		t.Setenv(name, "")
	}
	t.Setenv(supabaseKeyEnv, "")
	t.Setenv(supabaseURLEnv, "")
}

func TestLoadDefaults(t *testing.T) {
	clearProviderEnv(t)

	// We pass nil for cmd to skip flags
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.LogLevel != DefaultServerLogLevel {
		t.Errorf("Expected default log level %s, got %s", DefaultServerLogLevel, cfg.Server.LogLevel)
	}
	if cfg.Models.Default != DefaultModelDefault {
		t.Errorf("Expected default model %s, got %s", DefaultModelDefault, cfg.Models.Default)
	}
	if cfg.Models.Embedding != DefaultModelEmbedding {
		t.Errorf("Expected default embedding model %s, got %s", DefaultModelEmbedding, cfg.Models.Embedding)
	}
	if cfg.Agent.MaxIterations != DefaultAgentMaxIterations {
		t.Errorf("Expected default max iterations %d, got %d", DefaultAgentMaxIterations, cfg.Agent.MaxIterations)
	}
	if cfg.Agent.ToolErrorPolicy != DefaultAgentToolErrorPolicy {
		t.Errorf("Expected default tool error policy %s, got %s", DefaultAgentToolErrorPolicy, cfg.Agent.ToolErrorPolicy)
	}
	if cfg.Agent.FallbackAnswer != DefaultAgentFallbackAnswer {
		t.Errorf("Expected default fallback answer, got %s", cfg.Agent.FallbackAnswer)
	}
	if cfg.Prompts.ToolSystem != DefaultToolSystemPrompt {
		t.Errorf("Expected default tool system prompt, got %s", cfg.Prompts.ToolSystem)
	}
	if cfg.Retrieval.Threshold != DefaultRetrievalThreshold {
		t.Errorf("Expected default threshold %v, got %v", DefaultRetrievalThreshold, cfg.Retrieval.Threshold)
	}
	if cfg.Retrieval.MatchCount != DefaultRetrievalMatchCount {
		t.Errorf("Expected default match count %d, got %d", DefaultRetrievalMatchCount, cfg.Retrieval.MatchCount)
	}
	if cfg.Retrieval.Separator != DefaultRetrievalSeparator {
		t.Errorf("Expected default separator %q, got %q", DefaultRetrievalSeparator, cfg.Retrieval.Separator)
	}
	if cfg.Retrieval.Backend != DefaultRetrievalBackend {
		t.Errorf("Expected default backend %s, got %s", DefaultRetrievalBackend, cfg.Retrieval.Backend)
	}
	if cfg.Retrieval.RPC.Function != DefaultRetrievalRPCFunction {
		t.Errorf("Expected default rpc function %s, got %s", DefaultRetrievalRPCFunction, cfg.Retrieval.RPC.Function)
	}
	if cfg.Tools.Weather.BaseURL != DefaultWeatherToolBaseURL {
		t.Errorf("Expected default weather base url %s, got %s", DefaultWeatherToolBaseURL, cfg.Tools.Weather.BaseURL)
	}
	if cfg.Tools.Location.BaseURL != DefaultLocationToolBaseURL {
		t.Errorf("Expected default location base url %s, got %s", DefaultLocationToolBaseURL, cfg.Tools.Location.BaseURL)
	}
	assert.ElementsMatch(t, DefaultToolsEnabled, cfg.Tools.Enabled)
	require.NoError(t, cfg.Agent.Validate())
}

func TestLoadWithConfigFlag(t *testing.T) {
	clearProviderEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := []byte(`
models:
  default: custom-model
agent:
  max_iterations: 5
  tool_error_policy: abort
`)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", configPath); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "custom-model", cfg.Models.Default)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, ToolErrorPolicyAbort, cfg.Agent.ToolErrorPolicy)
}

func TestLoadWithMissingConfigFlagReturnsError(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	if _, err := Load(cmd); err == nil {
		t.Fatal("expected error when --config points to missing file")
	}
}

func TestLoad_EnvOverridesUseDoubleUnderscoreForNesting(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("RAGENT_AGENT__MAX_ITERATIONS", "7")
	t.Setenv("RAGENT_RETRIEVAL__BACKEND", "rpc")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Agent.MaxIterations)
	assert.Equal(t, RetrievalBackendRPC, cfg.Retrieval.Backend)
}

func TestLoad_InjectsProviderKeysFromEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("MISTRAL_API_KEY", "mistral-secret")
	t.Setenv(supabaseKeyEnv, "supabase-secret")

	cfg, err := Load(nil)
	require.NoError(t, err)

	for _, m := range cfg.Models.Registry {
		if m.Provider == providerMistral {
			assert.Equal(t, "mistral-secret", m.APIKey, m.Name)
		}
		if m.Provider == providerOpenAI {
			assert.Empty(t, m.APIKey, m.Name)
		}
	}
	assert.Equal(t, "supabase-secret", cfg.Retrieval.RPC.APIKey)
}

func TestLoad_ExpandsConfiguredPaths(t *testing.T) {
	clearProviderEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	content := []byte(`
retrieval:
  path: ~/.ragent/handbook
`)
	require.NoError(t, os.WriteFile(configPath, content, 0644))

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	require.NoError(t, cmd.Flags().Set("config", configPath))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, ".ragent", "handbook"), cfg.Retrieval.Path)
}

func TestAgentConfigValidate(t *testing.T) {
	valid := AgentConfig{MaxIterations: 3, ToolErrorPolicy: ToolErrorPolicyReport, Timeout: "30s"}
	require.NoError(t, valid.Validate())

	zeroIterations := valid
	zeroIterations.MaxIterations = 0
	assert.Error(t, zeroIterations.Validate())

	badPolicy := valid
	badPolicy.ToolErrorPolicy = "retry"
	assert.Error(t, badPolicy.Validate())

	badTimeout := valid
	badTimeout.Timeout = "soon"
	assert.Error(t, badTimeout.Validate())

	disabled := valid
	disabled.Timeout = "0"
	d, err := disabled.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestLoad_DottedFlagsOverrideAndPlainFlagsAreIgnored(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("HOME", t.TempDir())

	cmd := &cobra.Command{}
	cmd.Flags().String("server.log_level", DefaultServerLogLevel, "log level")
	cmd.Flags().String("agent", "rag", "agent to use")
	require.NoError(t, cmd.Flags().Set("server.log_level", "debug"))
	require.NoError(t, cmd.Flags().Set("agent", "tools"))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, DefaultAgentMaxIterations, cfg.Agent.MaxIterations)
}
