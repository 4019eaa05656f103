package tool

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/harunnryd/ragent/internal/config"
	ragentErrors "github.com/harunnryd/ragent/internal/errors"
)

// BuiltinOptions carries runtime dependencies needed by built-in tool factories.
type BuiltinOptions struct {
	WeatherBaseURL  string
	WeatherTimeout  time.Duration
	WeatherUnits    string
	LocationBaseURL string
	LocationTimeout time.Duration
}

const DefaultBuiltinHTTPTimeout = 10 * time.Second

// BuiltinOptionsFromConfig resolves tool settings, parsing durations.
func BuiltinOptionsFromConfig(cfg config.ToolsConfig) (BuiltinOptions, error) {
	weatherTimeout, err := config.DurationOrDefault(cfg.Weather.Timeout, config.DefaultWeatherToolTimeout)
	if err != nil {
		return BuiltinOptions{}, fmt.Errorf("tools.weather.timeout: %w", err)
	}
	locationTimeout, err := config.DurationOrDefault(cfg.Location.Timeout, config.DefaultLocationToolTimeout)
	if err != nil {
		return BuiltinOptions{}, fmt.Errorf("tools.location.timeout: %w", err)
	}

	return BuiltinOptions{
		WeatherBaseURL:  cfg.Weather.BaseURL,
		WeatherTimeout:  weatherTimeout,
		WeatherUnits:    cfg.Weather.Units,
		LocationBaseURL: cfg.Location.BaseURL,
		LocationTimeout: locationTimeout,
	}, nil
}

type BuiltinFactory func(options BuiltinOptions) (Tool, error)

// catalog maps built-in names to factories. It is filled from init() and only read afterwards.
type catalog struct {
	mu        sync.RWMutex
	factories map[string]BuiltinFactory
}

var builtins = &catalog{factories: make(map[string]BuiltinFactory)}

func (c *catalog) add(name string, factory BuiltinFactory) error {
	if name == "" {
		return fmt.Errorf("built-in name is empty")
	}
	if factory == nil {
		return fmt.Errorf("built-in %s has no factory", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("built-in %s registered twice", name)
	}
	c.factories[name] = factory
	return nil
}

func (c *catalog) get(name string) (BuiltinFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	factory, ok := c.factories[name]
	return factory, ok
}

func (c *catalog) names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.factories))
}

// RegisterBuiltin adds a factory to the catalog. Built-in tool files call it from init(),
// so a bad registration panics at startup.
func RegisterBuiltin(name string, factory BuiltinFactory) {
	if err := builtins.add(NormalizeToolName(name), factory); err != nil {
		panic("tool: " + err.Error())
	}
}

// BuiltinNames lists every registered built-in, sorted.
func BuiltinNames() []string {
	return builtins.names()
}

func IsBuiltinName(name string) bool {
	_, ok := builtins.get(NormalizeToolName(name))
	return ok
}

// InstantiateBuiltins constructs the enabled built-ins in the order given.
// An empty enabled list means every built-in, sorted by name.
func InstantiateBuiltins(options BuiltinOptions, enabled []string) ([]Tool, error) {
	names := enabled
	if len(names) == 0 {
		names = BuiltinNames()
	}

	tools := make([]Tool, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = NormalizeToolName(name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		factory, ok := builtins.get(name)
		if !ok {
			return nil, ragentErrors.InvalidInput(fmt.Sprintf("unknown built-in tool %q", name))
		}

		t, err := factory(options)
		if err != nil {
			return nil, fmt.Errorf("instantiate built-in %q: %w", name, err)
		}
		tools = append(tools, t)
	}

	return tools, nil
}

// NewBuiltinRegistry instantiates the enabled built-ins into a fresh registry.
func NewBuiltinRegistry(options BuiltinOptions, enabled []string) (*Registry, error) {
	tools, err := InstantiateBuiltins(options, enabled)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
