package types

// Model represents a model advertised by a provider
type Model struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Provider          ProviderType `json:"provider"`
	Description       string       `json:"description"`
	MaxTokens         int          `json:"max_tokens"`
	SupportsStreaming bool         `json:"supports_streaming"`
	Capabilities      []string     `json:"capabilities"`

	// ParameterSize is the human-readable parameter count ("8B", "70B")
	// when the provider reports one.
	ParameterSize string `json:"parameter_size,omitempty"`
}
