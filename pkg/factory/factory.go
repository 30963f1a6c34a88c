// Package factory creates configured LLM providers. It resolves connection
// and tuning parameters from explicit options with environment variables as
// fallback defaults, and validates the requested provider type against a
// small alias table.
package factory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xandai-project/xandai-go/pkg/providers/ollama"
	"github.com/xandai-project/xandai-go/pkg/types"
)

// Environment variables consumed by the factory.
const (
	// EnvOllamaHost holds the base URL of the local Ollama server.
	EnvOllamaHost = "OLLAMA_HOST"
	// EnvModel holds the default model identifier.
	EnvModel = "XANDAI_MODEL"
	// EnvTemperature holds the sampling temperature.
	EnvTemperature = "XANDAI_TEMPERATURE"
	// EnvMaxTokens holds the response token cap.
	EnvMaxTokens = "XANDAI_MAX_TOKENS"
)

// UnsupportedProviderError is returned when the requested provider type does
// not resolve to a registered provider. The message carries the input exactly
// as the caller supplied it.
type UnsupportedProviderError struct {
	Requested string
	Supported []string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q: only the offline Ollama provider is supported (choose from: %s)",
		e.Requested, strings.Join(e.Supported, ", "))
}

// BuilderFunc constructs a provider from a fully populated configuration.
type BuilderFunc func(types.LLMConfig) types.LLMProvider

// Factory creates providers. Every call reads its environment source fresh
// and builds an independent configuration, so a Factory is safe for
// concurrent use.
type Factory struct {
	env Environment

	mutex    sync.RWMutex
	builders map[types.ProviderType]BuilderFunc
	aliases  map[string]types.ProviderType
}

// FactoryOption customizes a Factory at construction time.
type FactoryOption func(*Factory)

// WithEnvironment replaces the process environment as the variable source.
func WithEnvironment(env Environment) FactoryOption {
	return func(f *Factory) { f.env = env }
}

// New creates a Factory with the Ollama provider registered under the
// canonical name "ollama" and the legacy shorthand "ol".
func New(opts ...FactoryOption) *Factory {
	f := &Factory{
		env:      OSEnv{},
		builders: make(map[types.ProviderType]BuilderFunc),
		aliases:  make(map[string]types.ProviderType),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.Register(types.ProviderTypeOllama, []string{"ol"}, func(config types.LLMConfig) types.LLMProvider {
		return ollama.New(config)
	})

	return f
}

// Register adds a provider builder under its canonical type plus any aliases.
// The canonical name itself always resolves.
func (f *Factory) Register(providerType types.ProviderType, aliases []string, builder BuilderFunc) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.builders[providerType] = builder
	f.aliases[string(providerType)] = providerType
	for _, alias := range aliases {
		f.aliases[alias] = providerType
	}
}

// CreateProvider creates a provider of the given type. The type string is
// matched case-insensitively with surrounding whitespace ignored; "ollama"
// and the shorthand "ol" both resolve to the Ollama provider. Base URL and
// model fall back to environment variables when no option sets them.
// Construction performs no network I/O.
func (f *Factory) CreateProvider(providerType string, opts ...Option) (types.LLMProvider, error) {
	canonical, builder, err := f.resolve(providerType)
	if err != nil {
		return nil, err
	}

	config := f.buildConfig(canonical, opts)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for provider %s: %w", canonical, err)
	}

	return builder(config), nil
}

// CreateFromEnv creates a provider configured purely from environment
// variables. Malformed numeric values fall back to their defaults instead
// of failing.
func (f *Factory) CreateFromEnv() (types.LLMProvider, error) {
	opts := []Option{
		WithTemperature(f.envFloat(EnvTemperature, types.DefaultTemperature)),
		WithMaxTokens(f.envInt(EnvMaxTokens, types.DefaultMaxTokens)),
	}
	return f.CreateProvider(string(types.ProviderTypeOllama), opts...)
}

// CreateAutoDetect creates the default provider. The preferred and fallback
// arguments survive from an earlier multi-provider design and are
// intentionally ignored; the result is always identical to
// CreateProvider("ollama").
func (f *Factory) CreateAutoDetect(preferred, fallback string) (types.LLMProvider, error) {
	return f.CreateProvider(string(types.ProviderTypeOllama))
}

// SupportedProviders returns the canonical names of the registered
// providers, sorted. Aliases are not listed.
func (f *Factory) SupportedProviders() []string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	names := make([]string, 0, len(f.builders))
	for providerType := range f.builders {
		names = append(names, string(providerType))
	}
	sort.Strings(names)
	return names
}

func (f *Factory) resolve(providerType string) (types.ProviderType, BuilderFunc, error) {
	normalized := strings.ToLower(strings.TrimSpace(providerType))

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	canonical, ok := f.aliases[normalized]
	if !ok {
		return "", nil, &UnsupportedProviderError{
			Requested: providerType,
			Supported: f.supportedLocked(),
		}
	}
	return canonical, f.builders[canonical], nil
}

func (f *Factory) supportedLocked() []string {
	names := make([]string, 0, len(f.builders))
	for providerType := range f.builders {
		names = append(names, string(providerType))
	}
	sort.Strings(names)
	return names
}

// buildConfig layers defaults, explicit options and environment fallbacks
// into a complete configuration. Options win over the environment; the
// model is deliberately left empty when neither sets it.
func (f *Factory) buildConfig(providerType types.ProviderType, opts []Option) types.LLMConfig {
	config := types.LLMConfig{
		ProviderType:  providerType,
		Temperature:   types.DefaultTemperature,
		TopP:          types.DefaultTopP,
		MaxTokens:     types.DefaultMaxTokens,
		ContextLength: types.DefaultContextLength,
		Timeout:       types.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(&config)
	}

	if config.BaseURL == "" {
		if host, ok := f.env.Lookup(EnvOllamaHost); ok && strings.TrimSpace(host) != "" {
			config.BaseURL = strings.TrimSpace(host)
		} else {
			config.BaseURL = types.DefaultBaseURL
		}
	}

	if config.Model == "" {
		if model, ok := f.env.Lookup(EnvModel); ok {
			config.Model = strings.TrimSpace(model)
		}
	}

	return config
}

func (f *Factory) envFloat(key string, fallback float64) float64 {
	raw, ok := f.env.Lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}

func (f *Factory) envInt(key string, fallback int) int {
	raw, ok := f.env.Lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

var defaultFactory = New()

// CreateProvider creates a provider using the package-level factory, which
// reads the process environment.
func CreateProvider(providerType string, opts ...Option) (types.LLMProvider, error) {
	return defaultFactory.CreateProvider(providerType, opts...)
}

// CreateFromEnv creates a provider from the process environment.
func CreateFromEnv() (types.LLMProvider, error) {
	return defaultFactory.CreateFromEnv()
}

// CreateAutoDetect creates the default provider, ignoring both arguments.
func CreateAutoDetect(preferred, fallback string) (types.LLMProvider, error) {
	return defaultFactory.CreateAutoDetect(preferred, fallback)
}

// SupportedProviders returns the provider names supported by the
// package-level factory.
func SupportedProviders() []string {
	return defaultFactory.SupportedProviders()
}
