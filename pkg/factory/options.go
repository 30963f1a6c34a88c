package factory

import (
	"strconv"
	"time"

	"github.com/xandai-project/xandai-go/pkg/types"
)

// Option adjusts a provider configuration before construction.
type Option func(*types.LLMConfig)

// WithBaseURL sets the server base URL, overriding the environment lookup.
func WithBaseURL(baseURL string) Option {
	return func(c *types.LLMConfig) { c.BaseURL = baseURL }
}

// WithModel sets the default model, overriding the environment lookup.
func WithModel(model string) Option {
	return func(c *types.LLMConfig) { c.Model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(c *types.LLMConfig) { c.Temperature = temperature }
}

// WithTopP sets the nucleus sampling cutoff.
func WithTopP(topP float64) Option {
	return func(c *types.LLMConfig) { c.TopP = topP }
}

// WithMaxTokens sets the response token cap.
func WithMaxTokens(maxTokens int) Option {
	return func(c *types.LLMConfig) { c.MaxTokens = maxTokens }
}

// WithContextLength sets the model context window size.
func WithContextLength(contextLength int) Option {
	return func(c *types.LLMConfig) { c.ContextLength = contextLength }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *types.LLMConfig) { c.Timeout = timeout }
}

// WithExtraOptions merges provider-specific options into the configuration.
func WithExtraOptions(extra map[string]interface{}) Option {
	return func(c *types.LLMConfig) {
		if c.ExtraOptions == nil {
			c.ExtraOptions = make(map[string]interface{}, len(extra))
		}
		for key, value := range extra {
			c.ExtraOptions[key] = value
		}
	}
}

// WithExtraOption sets a single provider-specific option.
func WithExtraOption(key string, value interface{}) Option {
	return func(c *types.LLMConfig) {
		if c.ExtraOptions == nil {
			c.ExtraOptions = make(map[string]interface{})
		}
		c.ExtraOptions[key] = value
	}
}

// OptionsFromMap converts a loosely typed options map into Options.
// Recognized keys are "base_url", "model", "temperature", "top_p",
// "max_tokens", "context_length" and "timeout" (seconds); everything else
// is passed through as an extra option. Values with the wrong type are
// ignored rather than rejected.
func OptionsFromMap(values map[string]interface{}) []Option {
	options := make([]Option, 0, len(values))
	for key, value := range values {
		switch key {
		case "base_url":
			if s, ok := coerceString(value); ok {
				options = append(options, WithBaseURL(s))
			}
		case "model":
			if s, ok := coerceString(value); ok {
				options = append(options, WithModel(s))
			}
		case "temperature":
			if f, ok := coerceFloat(value); ok {
				options = append(options, WithTemperature(f))
			}
		case "top_p":
			if f, ok := coerceFloat(value); ok {
				options = append(options, WithTopP(f))
			}
		case "max_tokens":
			if n, ok := coerceInt(value); ok {
				options = append(options, WithMaxTokens(n))
			}
		case "context_length":
			if n, ok := coerceInt(value); ok {
				options = append(options, WithContextLength(n))
			}
		case "timeout":
			if n, ok := coerceInt(value); ok {
				options = append(options, WithTimeout(time.Duration(n)*time.Second))
			}
		default:
			options = append(options, WithExtraOption(key, value))
		}
	}
	return options
}

func coerceString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func coerceFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
