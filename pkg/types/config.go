package types

import (
	"fmt"
	"time"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	// ProviderTypeOllama is the only provider with a full implementation.
	// XandAI is offline-first: everything runs against a local Ollama server.
	ProviderTypeOllama ProviderType = "ollama"
)

// Default tuning values applied by the factory when the caller supplies
// nothing. Providers never re-default these fields, so a zero value here
// means the factory was bypassed.
const (
	DefaultBaseURL       = "http://localhost:11434"
	DefaultTemperature   = 0.7
	DefaultTopP          = 0.9
	DefaultMaxTokens     = 2048
	DefaultContextLength = 4096
	DefaultTimeout       = 120 * time.Second
)

// LLMConfig represents the full configuration handed to a provider
// constructor. It is built once per factory call and owned by the returned
// provider; callers must not mutate it after construction.
type LLMConfig struct {
	ProviderType ProviderType `json:"provider_type"`
	BaseURL      string       `json:"base_url"`

	// Model is the default model identifier. Empty means "no default model":
	// downstream code must select a model explicitly before first use.
	Model string `json:"model,omitempty"`

	// Generation tuning
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	MaxTokens     int     `json:"max_tokens"`
	ContextLength int     `json:"context_length"`

	// Timeout applies to provider requests, not to construction.
	Timeout time.Duration `json:"timeout"`

	// ExtraOptions carries provider-specific settings that have no
	// first-class field (e.g. "requests_per_minute").
	ExtraOptions map[string]interface{} `json:"extra_options,omitempty"`
}

// Validate checks the structural invariants the factory guarantees. Tuning
// values are forwarded as supplied; the server applies its own limits.
func (c LLMConfig) Validate() error {
	if c.ProviderType == "" {
		return fmt.Errorf("provider type is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	return nil
}

// ExtraString returns a string extra option, or "" when absent.
func (c LLMConfig) ExtraString(key string) string {
	if val, ok := c.ExtraOptions[key].(string); ok {
		return val
	}
	return ""
}

// ExtraInt returns an integer extra option, or 0 when absent. Float values
// are truncated since YAML and JSON decoders disagree on number types.
func (c LLMConfig) ExtraInt(key string) int {
	switch val := c.ExtraOptions[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	}
	return 0
}
