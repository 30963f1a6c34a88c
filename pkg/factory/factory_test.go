package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xandai-project/xandai-go/pkg/types"
)

func newTestFactory(env Environment) *Factory {
	if env == nil {
		env = MapEnv{}
	}
	return New(WithEnvironment(env))
}

func TestFactory_CreateProvider_AcceptedNames(t *testing.T) {
	tests := []string{
		"ollama",
		"ol",
		"OLLAMA",
		"Ollama",
		"  ollama  ",
		"\tOL\n",
	}

	factory := newTestFactory(nil)
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			provider, err := factory.CreateProvider(name)
			require.NoError(t, err)
			assert.Equal(t, types.ProviderTypeOllama, provider.Type())
		})
	}
}

func TestFactory_CreateProvider_UnsupportedNames(t *testing.T) {
	tests := []string{
		"openai",
		"anthropic",
		"OLLAMA2",
		"",
		"  ",
	}

	factory := newTestFactory(nil)
	for _, name := range tests {
		t.Run("input "+name, func(t *testing.T) {
			_, err := factory.CreateProvider(name)
			require.Error(t, err)

			var unsupported *UnsupportedProviderError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, name, unsupported.Requested)
			assert.Contains(t, err.Error(), name, "message carries the input as supplied")
			assert.Contains(t, err.Error(), "only the offline Ollama provider is supported")
		})
	}
}

func TestFactory_CreateProvider_Defaults(t *testing.T) {
	factory := newTestFactory(MapEnv{})

	provider, err := factory.CreateProvider("ollama")
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, "http://localhost:11434", config.BaseURL)
	assert.Empty(t, config.Model, "no implicit default model")
	assert.Equal(t, 0.7, config.Temperature)
	assert.Equal(t, 0.9, config.TopP)
	assert.Equal(t, 2048, config.MaxTokens)
	assert.Equal(t, 4096, config.ContextLength)
	assert.Equal(t, 120*time.Second, config.Timeout)
}

func TestFactory_CreateProvider_EnvFallbacks(t *testing.T) {
	factory := newTestFactory(MapEnv{
		EnvOllamaHost: "http://llm-box:11434",
		EnvModel:      "mistral:7b",
	})

	provider, err := factory.CreateProvider("ollama")
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, "http://llm-box:11434", config.BaseURL)
	assert.Equal(t, "mistral:7b", config.Model)
}

func TestFactory_CreateProvider_OptionsWinOverEnv(t *testing.T) {
	factory := newTestFactory(MapEnv{
		EnvOllamaHost: "http://llm-box:11434",
		EnvModel:      "mistral:7b",
	})

	provider, err := factory.CreateProvider("ollama",
		WithBaseURL("http://other:11434"),
		WithModel("llama3.1:8b"),
		WithTemperature(0.2),
		WithMaxTokens(512),
	)
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, "http://other:11434", config.BaseURL)
	assert.Equal(t, "llama3.1:8b", config.Model)
	assert.Equal(t, 0.2, config.Temperature)
	assert.Equal(t, 512, config.MaxTokens)
}

func TestFactory_CreateProvider_BlankHostEnvIgnored(t *testing.T) {
	factory := newTestFactory(MapEnv{EnvOllamaHost: "   "})

	provider, err := factory.CreateProvider("ollama")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultBaseURL, provider.GetConfig().BaseURL)
}

func TestFactory_CreateProvider_ExtraOptions(t *testing.T) {
	factory := newTestFactory(nil)

	provider, err := factory.CreateProvider("ollama",
		WithExtraOptions(map[string]interface{}{"keep_alive": "5m"}),
		WithExtraOption("requests_per_minute", 30),
	)
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, "5m", config.ExtraOptions["keep_alive"])
	assert.Equal(t, 30, config.ExtraOptions["requests_per_minute"])
}

func TestFactory_CreateProvider_TuningValuesNotValidated(t *testing.T) {
	// The only reachable failure is an unsupported provider type; tuning
	// values are forwarded as supplied for the server to judge.
	factory := newTestFactory(nil)

	provider, err := factory.CreateProvider("ollama", WithTemperature(2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, provider.GetConfig().Temperature)
}

func TestFactory_CreateFromEnv_OutOfRangeNumbersPassThrough(t *testing.T) {
	factory := newTestFactory(MapEnv{
		EnvTemperature: "3.0",
		EnvMaxTokens:   "-5",
	})

	provider, err := factory.CreateFromEnv()
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, 3.0, config.Temperature)
	assert.Equal(t, -5, config.MaxTokens)
}

func TestFactory_CreateFromEnv(t *testing.T) {
	factory := newTestFactory(MapEnv{
		EnvOllamaHost:  "http://llm-box:11434",
		EnvModel:       "llama3.1:8b",
		EnvTemperature: "0.3",
		EnvMaxTokens:   "1024",
	})

	provider, err := factory.CreateFromEnv()
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, "http://llm-box:11434", config.BaseURL)
	assert.Equal(t, "llama3.1:8b", config.Model)
	assert.Equal(t, 0.3, config.Temperature)
	assert.Equal(t, 1024, config.MaxTokens)
}

func TestFactory_CreateFromEnv_MalformedNumbersDefault(t *testing.T) {
	factory := newTestFactory(MapEnv{
		EnvTemperature: "not-a-number",
		EnvMaxTokens:   "lots",
	})

	provider, err := factory.CreateFromEnv()
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, types.DefaultTemperature, config.Temperature)
	assert.Equal(t, types.DefaultMaxTokens, config.MaxTokens)
}

func TestFactory_CreateFromEnv_EmptyEnvironment(t *testing.T) {
	factory := newTestFactory(MapEnv{})

	provider, err := factory.CreateFromEnv()
	require.NoError(t, err)

	config := provider.GetConfig()
	assert.Equal(t, types.DefaultBaseURL, config.BaseURL)
	assert.Empty(t, config.Model)
	assert.Equal(t, types.DefaultTemperature, config.Temperature)
	assert.Equal(t, types.DefaultMaxTokens, config.MaxTokens)
}

func TestFactory_SupportedProviders(t *testing.T) {
	factory := newTestFactory(nil)

	assert.Equal(t, []string{"ollama"}, factory.SupportedProviders())

	// Creating providers does not grow the list.
	_, _ = factory.CreateProvider("ollama")
	_, _ = factory.CreateProvider("nope")
	assert.Equal(t, []string{"ollama"}, factory.SupportedProviders())
}

func TestFactory_CreateAutoDetect_IgnoresArguments(t *testing.T) {
	factory := newTestFactory(MapEnv{EnvModel: "llama3.1:8b"})

	reference, err := factory.CreateProvider("ollama")
	require.NoError(t, err)

	tests := [][2]string{
		{"", ""},
		{"openai", "anthropic"},
		{"anything", "anything"},
		{"ollama", "ol"},
	}

	for _, tt := range tests {
		provider, err := factory.CreateAutoDetect(tt[0], tt[1])
		require.NoError(t, err)
		assert.Equal(t, types.ProviderTypeOllama, provider.Type())
		assert.Equal(t, reference.GetConfig(), provider.GetConfig())
	}
}

func TestPackageLevelFactory(t *testing.T) {
	assert.Equal(t, []string{"ollama"}, SupportedProviders())

	provider, err := CreateProvider("ol", WithBaseURL("http://localhost:11434"))
	require.NoError(t, err)
	assert.Equal(t, types.ProviderTypeOllama, provider.Type())

	_, err = CreateProvider("openai")
	require.Error(t, err)
}
