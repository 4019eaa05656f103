package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type Config struct {
	Server    ServerConfig    `koanf:"server" yaml:"server"`
	Models    ModelsConfig    `koanf:"models" yaml:"models"`
	Agent     AgentConfig     `koanf:"agent" yaml:"agent"`
	Prompts   PromptsConfig   `koanf:"prompts" yaml:"prompts"`
	Retrieval RetrievalConfig `koanf:"retrieval" yaml:"retrieval"`
	Tools     ToolsConfig     `koanf:"tools" yaml:"tools"`
}

type ServerConfig struct {
	LogLevel string `koanf:"log_level" yaml:"log_level"`
}

type ModelsConfig struct {
	Default   string          `koanf:"default" yaml:"default"`
	Embedding string          `koanf:"embedding" yaml:"embedding"`
	Registry  []ModelRegistry `koanf:"registry" yaml:"registry"`
}

type ModelRegistry struct {
	Name           string `koanf:"name" yaml:"name"`
	Provider       string `koanf:"provider" yaml:"provider"`
	BaseURL        string `koanf:"base_url" yaml:"base_url,omitempty"`
	APIKey         string `koanf:"api_key" yaml:"api_key,omitempty"`
	RequestTimeout string `koanf:"request_timeout" yaml:"request_timeout,omitempty"`
	MaxTokens      int    `koanf:"max_tokens" yaml:"max_tokens,omitempty"`
}

// AgentConfig bounds the tool-calling loop and shapes what the host sees on failure.
type AgentConfig struct {
	MaxIterations   int    `koanf:"max_iterations" yaml:"max_iterations"`
	ToolErrorPolicy string `koanf:"tool_error_policy" yaml:"tool_error_policy"`
	ParallelTools   bool   `koanf:"parallel_tools" yaml:"parallel_tools"`
	Timeout         string `koanf:"timeout" yaml:"timeout"`
	FallbackAnswer  string `koanf:"fallback_answer" yaml:"fallback_answer"`
}

type PromptsConfig struct {
	ToolSystem  string `koanf:"tool_system" yaml:"tool_system"`
	RAGTemplate string `koanf:"rag_template" yaml:"rag_template"`
}

type RetrievalConfig struct {
	Backend     string    `koanf:"backend" yaml:"backend"`
	Path        string    `koanf:"path" yaml:"path"`
	Collection  string    `koanf:"collection" yaml:"collection"`
	Threshold   float64   `koanf:"threshold" yaml:"threshold"`
	MatchCount  int       `koanf:"match_count" yaml:"match_count"`
	Separator   string    `koanf:"separator" yaml:"separator"`
	ChunkSize   int       `koanf:"chunk_size" yaml:"chunk_size"`
	LockTimeout string    `koanf:"lock_timeout" yaml:"lock_timeout"`
	RPC         RPCConfig `koanf:"rpc" yaml:"rpc"`
}

// RPCConfig addresses a Supabase-style match function exposed through PostgREST.
type RPCConfig struct {
	BaseURL  string `koanf:"base_url" yaml:"base_url"`
	Function string `koanf:"function" yaml:"function"`
	APIKey   string `koanf:"api_key" yaml:"api_key,omitempty"`
	Timeout  string `koanf:"timeout" yaml:"timeout"`
}

type ToolsConfig struct {
	Enabled  []string           `koanf:"enabled" yaml:"enabled"`
	Weather  WeatherToolConfig  `koanf:"weather" yaml:"weather"`
	Location LocationToolConfig `koanf:"location" yaml:"location"`
}

type WeatherToolConfig struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	Timeout string `koanf:"timeout" yaml:"timeout"`
	Units   string `koanf:"units" yaml:"units"`
}

type LocationToolConfig struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	Timeout string `koanf:"timeout" yaml:"timeout"`
}

const (
	ToolErrorPolicyReport = "report"
	ToolErrorPolicyAbort  = "abort"

	RetrievalBackendChromem = "chromem"
	RetrievalBackendRPC     = "rpc"
)

const (
	DefaultServerLogLevel       = "info"
	DefaultModelDefault         = "mistral-large-latest"
	DefaultModelEmbedding       = "mistral-embed"
	DefaultModelRequestTimeout  = "60s"
	DefaultModelMaxTokens       = 1024
	DefaultOpenAIBaseURL        = "https://api.openai.com/v1"
	DefaultMistralBaseURL       = "https://api.mistral.ai/v1"
	DefaultOllamaBaseURL        = "http://localhost:11434/v1"
	DefaultOllamaAPIKey         = "ollama"
	DefaultAgentMaxIterations   = 3
	DefaultAgentToolErrorPolicy = ToolErrorPolicyReport
	DefaultAgentParallelTools   = false
	DefaultAgentTimeout         = "90s"
	DefaultAgentFallbackAnswer  = "I'm sorry, I couldn't process your request."
	DefaultToolSystemPrompt     = "You are a helpful AI agent. Give highly specific answers based on the information you're provided. Prefer to gather information with the tools provided to you rather than giving basic, generic answers."
	DefaultRAGTemplate          = "Handbook context: {{.Context}} - Question: {{.Query}}"
	DefaultRetrievalBackend     = RetrievalBackendChromem
	DefaultRetrievalCollection  = "handbook_docs"
	DefaultRetrievalThreshold   = 0.78
	DefaultRetrievalMatchCount  = 5
	DefaultRetrievalSeparator   = " "
	DefaultRetrievalChunkSize   = 1000
	DefaultRetrievalLockTimeout = "10s"
	DefaultRetrievalRPCFunction = "match_handbook_docs"
	DefaultRetrievalRPCTimeout  = "10s"
	DefaultWeatherToolBaseURL   = "https://wttr.in"
	DefaultWeatherToolTimeout   = "10s"
	DefaultWeatherToolUnits     = "fahrenheit"
	DefaultLocationToolBaseURL  = "https://ipapi.co/json/"
	DefaultLocationToolTimeout  = "10s"
	EnvPrefix                   = "RAGENT_"
	defaultConfigDirName        = ".ragent"
	defaultConfigFileName       = "config.yaml"
	defaultRetrievalDirName     = "vectors"
	providerMistral             = "mistral"
	providerOpenAI              = "openai"
	providerAnthropic           = "anthropic"
	providerGemini              = "gemini"
	providerOllama              = "ollama"
	supabaseKeyEnv              = "SUPABASE_KEY"
	supabaseURLEnv              = "SUPABASE_URL"
)

// DefaultToolsEnabled lists every built-in tool; an empty tools.enabled also means all of them.
var DefaultToolsEnabled = []string{"getCurrentWeather", "getLocation", "getPaymentDate", "getPaymentStatus"}

var providerKeyEnv = map[string]string{
	providerMistral:   "MISTRAL_API_KEY",
	providerOpenAI:    "OPENAI_API_KEY",
	providerAnthropic: "ANTHROPIC_API_KEY",
	providerGemini:    "GEMINI_API_KEY",
}

// DefaultDir is $HOME/.ragent, the home of the global config file and the vector store.
func DefaultDir() string {
	return filepath.Join(os.Getenv("HOME"), defaultConfigDirName)
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.log_level": DefaultServerLogLevel,
		"models.default":   DefaultModelDefault,
		"models.embedding": DefaultModelEmbedding,
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: providerMistral},
			{Name: DefaultModelEmbedding, Provider: providerMistral},
			{Name: "gpt-4o-mini", Provider: providerOpenAI},
			{Name: "text-embedding-3-small", Provider: providerOpenAI},
			{Name: "claude-3-5-haiku-latest", Provider: providerAnthropic},
			{Name: "gemini-2.0-flash", Provider: providerGemini},
			{Name: "local-llama", Provider: providerOllama, BaseURL: DefaultOllamaBaseURL},
		},
		"agent.max_iterations":    DefaultAgentMaxIterations,
		"agent.tool_error_policy": DefaultAgentToolErrorPolicy,
		"agent.parallel_tools":    DefaultAgentParallelTools,
		"agent.timeout":           DefaultAgentTimeout,
		"agent.fallback_answer":   DefaultAgentFallbackAnswer,
		"prompts.tool_system":     DefaultToolSystemPrompt,
		"prompts.rag_template":    DefaultRAGTemplate,
		"retrieval.backend":       DefaultRetrievalBackend,
		"retrieval.path":          filepath.Join(DefaultDir(), defaultRetrievalDirName),
		"retrieval.collection":    DefaultRetrievalCollection,
		"retrieval.threshold":     DefaultRetrievalThreshold,
		"retrieval.match_count":   DefaultRetrievalMatchCount,
		"retrieval.separator":     DefaultRetrievalSeparator,
		"retrieval.chunk_size":    DefaultRetrievalChunkSize,
		"retrieval.lock_timeout":  DefaultRetrievalLockTimeout,
		"retrieval.rpc.function":  DefaultRetrievalRPCFunction,
		"retrieval.rpc.timeout":   DefaultRetrievalRPCTimeout,
		"tools.enabled":           DefaultToolsEnabled,
		"tools.weather.base_url":  DefaultWeatherToolBaseURL,
		"tools.weather.timeout":   DefaultWeatherToolTimeout,
		"tools.weather.units":     DefaultWeatherToolUnits,
		"tools.location.base_url": DefaultLocationToolBaseURL,
		"tools.location.timeout":  DefaultLocationToolTimeout,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		globalPath := filepath.Join(DefaultDir(), defaultConfigFileName)
		if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
			slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
		}
	}

	// RAGENT_AGENT__MAX_ITERATIONS -> agent.max_iterations
	k.Load(env.Provider(EnvPrefix, ".", envKey), nil)

	// Only dotted flags map onto config keys; command-local flags like --agent stay out.
	if cmd != nil {
		flags := cmd.Flags()
		k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !strings.Contains(f.Name, ".") {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = providerOpenAI
		}
	}

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	injectEnvSecrets(&cfg)

	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// injectEnvSecrets fills empty credentials from the provider's conventional variable.
func injectEnvSecrets(cfg *Config) {
	for i, m := range cfg.Models.Registry {
		if m.APIKey != "" {
			continue
		}
		name, ok := providerKeyEnv[m.Provider]
		if !ok {
			continue
		}
		if key := os.Getenv(name); key != "" {
			cfg.Models.Registry[i].APIKey = key
		}
	}

	if cfg.Retrieval.RPC.APIKey == "" {
		cfg.Retrieval.RPC.APIKey = os.Getenv(supabaseKeyEnv)
	}
	if cfg.Retrieval.RPC.BaseURL == "" {
		cfg.Retrieval.RPC.BaseURL = os.Getenv(supabaseURLEnv)
	}
}

func normalizePathFields(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	retrievalPath, err := ExpandPath(cfg.Retrieval.Path)
	if err != nil {
		return err
	}
	if retrievalPath != "" {
		cfg.Retrieval.Path = retrievalPath
	}

	return nil
}
