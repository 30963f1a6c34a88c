package types

import (
	"context"
	"time"
)

// HealthStatus represents the health status of a provider
type HealthStatus struct {
	Healthy      bool      `json:"healthy"`
	LastChecked  time.Time `json:"last_checked"`
	Message      string    `json:"message"`
	ResponseTime float64   `json:"response_time"`
}

// ProviderMetrics represents metrics for a provider
type ProviderMetrics struct {
	RequestCount    int64         `json:"request_count"`
	SuccessCount    int64         `json:"success_count"`
	ErrorCount      int64         `json:"error_count"`
	TotalLatency    time.Duration `json:"total_latency"`
	AverageLatency  time.Duration `json:"average_latency"`
	LastRequestTime time.Time     `json:"last_request_time"`
	LastSuccessTime time.Time     `json:"last_success_time"`
	LastErrorTime   time.Time     `json:"last_error_time"`
	LastError       string        `json:"last_error"`
	TokensUsed      int64         `json:"tokens_used"`
	HealthStatus    HealthStatus  `json:"health_status"`
}

// CoreProvider defines the essential identity methods all providers implement.
type CoreProvider interface {
	Name() string
	Type() ProviderType
	Description() string
}

// ModelProvider defines methods for model discovery.
type ModelProvider interface {
	GetModels(ctx context.Context) ([]Model, error)

	// GetDefaultModel returns the configured default model. Empty means no
	// default is configured and the caller must pick one explicitly.
	GetDefaultModel() string
}

// ConfigurableProvider defines methods for runtime configuration.
type ConfigurableProvider interface {
	Configure(config LLMConfig) error
	GetConfig() LLMConfig
}

// ChatProvider defines the core chat completion capability.
type ChatProvider interface {
	// GenerateChatCompletion streams a chat completion.
	GenerateChatCompletion(ctx context.Context, options GenerateOptions) (ChatCompletionStream, error)

	// Complete drains a chat completion into a single response.
	Complete(ctx context.Context, options GenerateOptions) (*LLMResponse, error)
}

// HealthCheckProvider defines health monitoring and metrics.
type HealthCheckProvider interface {
	HealthCheck(ctx context.Context) error
	GetMetrics() ProviderMetrics
}

// LLMProvider represents a complete provider with all capabilities.
// Clients that only need a subset should depend on the smaller interfaces.
type LLMProvider interface {
	CoreProvider
	ModelProvider
	ConfigurableProvider
	ChatProvider
	HealthCheckProvider
}
