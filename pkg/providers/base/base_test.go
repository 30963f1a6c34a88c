package base

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xandai-project/xandai-go/pkg/types"
)

func testConfig() types.LLMConfig {
	return types.LLMConfig{
		ProviderType:  types.ProviderTypeOllama,
		BaseURL:       types.DefaultBaseURL,
		Model:         "llama3.1:8b",
		Temperature:   types.DefaultTemperature,
		TopP:          types.DefaultTopP,
		MaxTokens:     types.DefaultMaxTokens,
		ContextLength: types.DefaultContextLength,
		Timeout:       types.DefaultTimeout,
	}
}

func TestNewBaseProvider(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	assert.Equal(t, "ollama", provider.Name())
	assert.Equal(t, types.ProviderTypeOllama, provider.Type())
	assert.Equal(t, "llama3.1:8b", provider.GetDefaultModel())
}

func TestBaseProvider_Configure(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	updated := testConfig()
	updated.Model = "mistral:7b"
	require.NoError(t, provider.Configure(updated))

	assert.Equal(t, "mistral:7b", provider.GetConfig().Model)
	assert.Equal(t, "mistral:7b", provider.GetDefaultModel())
}

func TestBaseProvider_EmptyModelStaysEmpty(t *testing.T) {
	config := testConfig()
	config.Model = ""

	provider := NewBaseProvider("ollama", config, nil)
	assert.Empty(t, provider.GetDefaultModel())
}

func TestBaseProvider_Metrics(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	provider.IncrementRequestCount()
	provider.RecordSuccess(100*time.Millisecond, 25)
	provider.IncrementRequestCount()
	provider.RecordSuccess(300*time.Millisecond, 75)
	provider.IncrementRequestCount()
	provider.RecordError(errors.New("connection refused"))

	metrics := provider.GetMetrics()
	assert.Equal(t, int64(3), metrics.RequestCount)
	assert.Equal(t, int64(2), metrics.SuccessCount)
	assert.Equal(t, int64(1), metrics.ErrorCount)
	assert.Equal(t, int64(100), metrics.TokensUsed)
	assert.Equal(t, 200*time.Millisecond, metrics.AverageLatency)
	assert.Equal(t, "connection refused", metrics.LastError)
	assert.False(t, metrics.LastRequestTime.IsZero())
}

func TestBaseProvider_RecordTokens(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	provider.IncrementRequestCount()
	provider.RecordSuccess(100*time.Millisecond, 0)
	provider.RecordTokens(40)
	provider.RecordTokens(10)

	metrics := provider.GetMetrics()
	assert.Equal(t, int64(50), metrics.TokensUsed)
	assert.Equal(t, int64(1), metrics.SuccessCount, "token reporting does not count as a request")
}

func TestBaseProvider_UpdateHealthStatus(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	provider.UpdateHealthStatus(false, "server unreachable")

	health := provider.GetMetrics().HealthStatus
	assert.False(t, health.Healthy)
	assert.Equal(t, "server unreachable", health.Message)
	assert.False(t, health.LastChecked.IsZero())
}

func TestBaseProvider_ConcurrentMetrics(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			provider.IncrementRequestCount()
			provider.RecordSuccess(time.Millisecond, 1)
		}()
	}
	wg.Wait()

	metrics := provider.GetMetrics()
	assert.Equal(t, int64(50), metrics.RequestCount)
	assert.Equal(t, int64(50), metrics.SuccessCount)
	assert.Equal(t, int64(50), metrics.TokensUsed)
}

func TestBaseProvider_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	provider := NewBaseProvider("ollama", testConfig(), logger)

	provider.LogRequest(http.MethodPost, "http://localhost:11434/api/chat")
	assert.Contains(t, buf.String(), "POST http://localhost:11434/api/chat")
}

func TestBaseProvider_NilLoggerIsSafe(t *testing.T) {
	provider := NewBaseProvider("ollama", testConfig(), nil)

	assert.NotPanics(t, func() {
		provider.LogRequest(http.MethodGet, "http://localhost:11434/api/tags")
		provider.LogResponse(&http.Response{StatusCode: 200}, time.Millisecond)
	})
}
