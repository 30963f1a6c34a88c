// Package base provides common functionality shared by XandAI providers:
// configuration under a lock, request metrics, and request logging.
package base

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/xandai-project/xandai-go/pkg/types"
)

// BaseProvider provides common functionality for all providers
type BaseProvider struct {
	name    string
	config  types.LLMConfig
	logger  *log.Logger
	mutex   sync.RWMutex
	metrics types.ProviderMetrics
}

// NewBaseProvider creates a new base provider. logger may be nil, in which
// case request logging is disabled.
func NewBaseProvider(name string, config types.LLMConfig, logger *log.Logger) *BaseProvider {
	return &BaseProvider{
		name:   name,
		config: config,
		logger: logger,
	}
}

func (p *BaseProvider) Name() string {
	return p.name
}

func (p *BaseProvider) Type() types.ProviderType {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.config.ProviderType
}

// Configure replaces the provider configuration
func (p *BaseProvider) Configure(config types.LLMConfig) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.config = config
	return nil
}

// GetConfig returns the current provider configuration
func (p *BaseProvider) GetConfig() types.LLMConfig {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.config
}

// GetDefaultModel returns the configured model. Empty means the caller must
// choose a model explicitly; no implicit default is assumed here.
func (p *BaseProvider) GetDefaultModel() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.config.Model
}

// GetMetrics returns a snapshot of the provider metrics
func (p *BaseProvider) GetMetrics() types.ProviderMetrics {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.metrics
}

// IncrementRequestCount increments the request counter
func (p *BaseProvider) IncrementRequestCount() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.metrics.RequestCount++
	p.metrics.LastRequestTime = time.Now()
}

// RecordSuccess records a successful API call
func (p *BaseProvider) RecordSuccess(latency time.Duration, tokensUsed int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.metrics.SuccessCount++
	p.metrics.TotalLatency += latency
	p.metrics.TokensUsed += tokensUsed
	p.metrics.LastSuccessTime = time.Now()

	if p.metrics.SuccessCount > 0 {
		p.metrics.AverageLatency = p.metrics.TotalLatency / time.Duration(p.metrics.SuccessCount)
	}
}

// RecordTokens adds consumed tokens to the running total. Streaming calls
// report usage only once the final chunk arrives, after the request itself
// was already recorded.
func (p *BaseProvider) RecordTokens(tokensUsed int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.metrics.TokensUsed += tokensUsed
}

// RecordError records a failed API call
func (p *BaseProvider) RecordError(err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.metrics.ErrorCount++
	p.metrics.LastErrorTime = time.Now()
	if err != nil {
		p.metrics.LastError = err.Error()
	}
}

// UpdateHealthStatus updates the health status
func (p *BaseProvider) UpdateHealthStatus(healthy bool, message string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.metrics.HealthStatus.Healthy = healthy
	p.metrics.HealthStatus.Message = message
	p.metrics.HealthStatus.LastChecked = time.Now()
}

// LogRequest logs an outgoing HTTP request
func (p *BaseProvider) LogRequest(method, url string) {
	if p.logger == nil {
		return
	}
	p.logger.Printf("Provider %s - %s %s", p.name, method, url)
}

// LogResponse logs response status and duration
func (p *BaseProvider) LogResponse(resp *http.Response, duration time.Duration) {
	if p.logger == nil {
		return
	}
	p.logger.Printf("Provider %s response in %v - Status: %d", p.name, duration, resp.StatusCode)
}
