// Package ollama implements the XandAI provider for a local Ollama server.
// It supports streaming chat over the native /api/chat endpoint, model
// discovery via /api/tags, and health checking via /api/version.
package ollama

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	xhttp "github.com/xandai-project/xandai-go/internal/http"
	"github.com/xandai-project/xandai-go/pkg/providers/base"
	"github.com/xandai-project/xandai-go/pkg/providers/common"
	"github.com/xandai-project/xandai-go/pkg/types"
)

const modelCacheTTL = 5 * time.Minute

// Provider implements types.LLMProvider against an Ollama server
type Provider struct {
	*base.BaseProvider

	mu           sync.RWMutex
	httpClient   *xhttp.Client
	limiter      *rate.Limiter // nil means no client-side rate limiting
	connectivity *common.ConnectivityCache
	modelCache   *common.ModelCache
}

// New creates a new Ollama provider. No network I/O happens here; the
// first request is the first time the server is contacted.
func New(config types.LLMConfig) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = types.DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = types.DefaultTimeout
	}

	return &Provider{
		BaseProvider: base.NewBaseProvider("ollama", config, log.Default()),
		httpClient:   newHTTPClient(config),
		limiter:      newLimiter(config),
		connectivity: common.NewDefaultConnectivityCache(),
		modelCache:   common.NewModelCache(modelCacheTTL),
	}
}

func newHTTPClient(config types.LLMConfig) *xhttp.Client {
	return xhttp.NewClient(xhttp.ClientConfig{Timeout: config.Timeout})
}

// newLimiter builds the optional client-side limiter from the
// "requests_per_minute" extra option.
func newLimiter(config types.LLMConfig) *rate.Limiter {
	rpm := config.ExtraInt("requests_per_minute")
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "Ollama"
}

// Type returns the provider type
func (p *Provider) Type() types.ProviderType {
	return types.ProviderTypeOllama
}

// Description returns the provider description
func (p *Provider) Description() string {
	return "Ollama local model inference (offline)"
}

// Configure updates the provider configuration and rebuilds the HTTP
// client and rate limiter to match.
func (p *Provider) Configure(config types.LLMConfig) error {
	if config.BaseURL == "" {
		config.BaseURL = types.DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = types.DefaultTimeout
	}
	if err := config.Validate(); err != nil {
		return types.NewInvalidRequestError(types.ProviderTypeOllama, err.Error()).
			WithOperation("configure")
	}

	p.mu.Lock()
	p.httpClient = newHTTPClient(config)
	p.limiter = newLimiter(config)
	p.mu.Unlock()

	p.connectivity.Invalidate(types.ProviderTypeOllama)
	p.modelCache.Clear()

	return p.BaseProvider.Configure(config)
}

func (p *Provider) client() *xhttp.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.httpClient
}

func (p *Provider) waitLimiter(ctx context.Context) error {
	p.mu.RLock()
	limiter := p.limiter
	p.mu.RUnlock()

	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

func (p *Provider) baseURL() string {
	return strings.TrimSuffix(p.GetConfig().BaseURL, "/")
}

// ollamaChatRequest represents a request to the Ollama /api/chat endpoint
type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaChatMessage    `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaChatResponse represents one line of the streaming chat response
type ollamaChatResponse struct {
	Model     string            `json:"model"`
	CreatedAt string            `json:"created_at"`
	Message   ollamaChatMessage `json:"message"`
	Done      bool              `json:"done"`

	// Usage information, only present on the final line (done=true)
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

// GenerateChatCompletion streams a chat completion from /api/chat
func (p *Provider) GenerateChatCompletion(ctx context.Context, options types.GenerateOptions) (types.ChatCompletionStream, error) {
	p.IncrementRequestCount()
	startTime := time.Now()

	request, err := p.buildChatRequest(options)
	if err != nil {
		p.RecordError(err)
		return nil, err
	}

	if err := p.waitLimiter(ctx); err != nil {
		p.RecordError(err)
		return nil, types.NewTimeoutError(types.ProviderTypeOllama, "rate limiter wait aborted").
			WithOperation("chat_completion").
			WithOriginalErr(err)
	}

	url := p.baseURL() + "/api/chat"
	p.LogRequest(http.MethodPost, url)

	resp, err := p.doStreamRequest(ctx, url, request)
	if err != nil {
		p.RecordError(err)
		return nil, err
	}

	// Success is recorded when the stream delivers its final chunk, so a
	// stream that dies mid-flight does not count as a completed request.
	return newStream(ctx, resp.Body, func(usage types.Usage) {
		p.RecordSuccess(time.Since(startTime), int64(usage.TotalTokens))
	}), nil
}

// Complete drains a streaming chat completion into a single response
func (p *Provider) Complete(ctx context.Context, options types.GenerateOptions) (*types.LLMResponse, error) {
	startTime := time.Now()

	stream, err := p.GenerateChatCompletion(ctx, options)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	response, err := DrainStream(stream)
	if err != nil {
		p.RecordError(err)
		return nil, err
	}
	response.Elapsed = time.Since(startTime)
	return response, nil
}

// buildChatRequest builds an Ollama chat request from GenerateOptions.
// Per-request options override the configured defaults; extra options from
// the configuration are forwarded into the Ollama options map.
func (p *Provider) buildChatRequest(options types.GenerateOptions) (ollamaChatRequest, error) {
	config := p.GetConfig()

	model := options.Model
	if model == "" {
		model = config.Model
	}
	if model == "" {
		return ollamaChatRequest{}, types.NewInvalidRequestError(types.ProviderTypeOllama,
			"no model configured: set a model in the configuration or per request").
			WithOperation("chat_completion")
	}

	if len(options.Messages) == 0 {
		return ollamaChatRequest{}, types.NewInvalidRequestError(types.ProviderTypeOllama,
			"at least one message is required").
			WithOperation("chat_completion")
	}

	messages := make([]ollamaChatMessage, 0, len(options.Messages))
	for _, msg := range options.Messages {
		messages = append(messages, ollamaChatMessage{Role: msg.Role, Content: msg.Content})
	}

	optionsMap := make(map[string]interface{})
	for key, value := range config.ExtraOptions {
		if key == "requests_per_minute" {
			continue // consumed by the client-side limiter, not an Ollama option
		}
		optionsMap[key] = value
	}

	temperature := config.Temperature
	if options.Temperature != 0 {
		temperature = options.Temperature
	}
	optionsMap["temperature"] = temperature

	topP := config.TopP
	if options.TopP != 0 {
		topP = options.TopP
	}
	optionsMap["top_p"] = topP

	maxTokens := config.MaxTokens
	if options.MaxTokens > 0 {
		maxTokens = options.MaxTokens
	}
	optionsMap["num_predict"] = maxTokens

	contextLength := config.ContextLength
	if options.ContextLength > 0 {
		contextLength = options.ContextLength
	}
	optionsMap["num_ctx"] = contextLength

	if len(options.Stop) > 0 {
		optionsMap["stop"] = options.Stop
	}

	return ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
		Options:  optionsMap,
	}, nil
}

// doStreamRequest performs the streaming POST. Streaming responses bypass
// the retrying client; a retried stream would replay partial output.
func (p *Provider) doStreamRequest(ctx context.Context, url string, request ollamaChatRequest) (*http.Response, error) {
	req, err := xhttp.NewJSONRequest(ctx, http.MethodPost, url, request)
	if err != nil {
		return nil, types.NewInvalidRequestError(types.ProviderTypeOllama, "failed to build request").
			WithOperation("chat_completion").
			WithOriginalErr(err)
	}
	req.Header.Set("x-request-id", uuid.New().String())

	resp, err := p.client().Client().Do(req)
	if err != nil {
		return nil, types.NewNetworkError(types.ProviderTypeOllama, "request failed").
			WithOperation("chat_completion").
			WithOriginalErr(err)
	}

	if resp.StatusCode != http.StatusOK {
		body := readErrorBody(resp)

		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, types.NewNotFoundError(types.ProviderTypeOllama, "model not found: "+body).
				WithOperation("chat_completion").
				WithStatusCode(resp.StatusCode)
		case http.StatusTooManyRequests:
			return nil, types.NewRateLimitError(types.ProviderTypeOllama, "rate limit exceeded").
				WithOperation("chat_completion").
				WithStatusCode(resp.StatusCode)
		default:
			if resp.StatusCode >= 500 {
				return nil, types.NewServerError(types.ProviderTypeOllama, resp.StatusCode, body).
					WithOperation("chat_completion")
			}
			return nil, types.NewInvalidRequestError(types.ProviderTypeOllama, body).
				WithOperation("chat_completion").
				WithStatusCode(resp.StatusCode)
		}
	}

	return resp, nil
}

// ollamaTagsResponse represents the response from the /api/tags endpoint
type ollamaTagsResponse struct {
	Models []ollamaModel `json:"models"`
}

type ollamaModel struct {
	Name    string             `json:"name"`
	Model   string             `json:"model"`
	Size    int64              `json:"size"`
	Details ollamaModelDetails `json:"details"`
}

type ollamaModelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

// GetModels returns the models available on the server, cached for a few
// minutes with a static fallback when the server is unreachable.
func (p *Provider) GetModels(ctx context.Context) ([]types.Model, error) {
	return p.modelCache.GetModels(
		func() ([]types.Model, error) {
			return p.fetchModels(ctx)
		},
		staticFallbackModels,
	)
}

func (p *Provider) fetchModels(ctx context.Context) ([]types.Model, error) {
	var tags ollamaTagsResponse
	if err := p.client().GetJSON(ctx, p.baseURL()+"/api/tags", &tags); err != nil {
		return nil, types.NewNetworkError(types.ProviderTypeOllama, "failed to fetch models").
			WithOperation("fetch_models").
			WithOriginalErr(err)
	}

	result := make([]types.Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		result = append(result, convertModel(m))
	}
	return result, nil
}

// convertModel maps an Ollama tag entry to a types.Model, inferring
// capabilities and context size from the model name and family.
func convertModel(m ollamaModel) types.Model {
	modelID := m.Name
	if modelID == "" {
		modelID = m.Model
	}

	lowerName := strings.ToLower(modelID)
	family := strings.ToLower(m.Details.Family)

	capabilities := []string{"chat", "completion"}
	maxTokens := 8192

	switch {
	case strings.Contains(lowerName, "embed"):
		capabilities = []string{"embeddings"}
	case strings.Contains(lowerName, "llava") || strings.Contains(lowerName, "vision"):
		capabilities = append(capabilities, "vision")
	case strings.Contains(lowerName, "code") || strings.Contains(lowerName, "starcoder"):
		capabilities = append(capabilities, "code")
	}

	switch {
	case strings.Contains(lowerName, "codellama"):
		maxTokens = 16384
	case family == "llama" || strings.Contains(lowerName, "llama3"):
		maxTokens = 131072
	case strings.Contains(lowerName, "mistral") || strings.Contains(lowerName, "mixtral"):
		maxTokens = 32768
	}

	description := fmt.Sprintf("%s model", modelID)
	if m.Details.ParameterSize != "" {
		description = fmt.Sprintf("%s (%s parameters)", modelID, m.Details.ParameterSize)
	}

	return types.Model{
		ID:                modelID,
		Name:              modelID,
		Provider:          types.ProviderTypeOllama,
		Description:       description,
		MaxTokens:         maxTokens,
		SupportsStreaming: true,
		Capabilities:      capabilities,
		ParameterSize:     m.Details.ParameterSize,
	}
}

// staticFallbackModels returns a conservative model list used when the
// server cannot be reached and no cached list exists.
func staticFallbackModels() []types.Model {
	return []types.Model{
		{
			ID:                "llama3.1:8b",
			Name:              "llama3.1:8b",
			Provider:          types.ProviderTypeOllama,
			Description:       "Llama 3.1 8B parameter model",
			MaxTokens:         131072,
			SupportsStreaming: true,
			Capabilities:      []string{"chat", "completion"},
			ParameterSize:     "8B",
		},
		{
			ID:                "mistral:7b",
			Name:              "mistral:7b",
			Provider:          types.ProviderTypeOllama,
			Description:       "Mistral 7B parameter model",
			MaxTokens:         32768,
			SupportsStreaming: true,
			Capabilities:      []string{"chat", "completion"},
			ParameterSize:     "7B",
		},
	}
}

// ollamaVersionResponse represents the response from /api/version
type ollamaVersionResponse struct {
	Version string `json:"version"`
}

// Version returns the Ollama server version
func (p *Provider) Version(ctx context.Context) (string, error) {
	var version ollamaVersionResponse
	if err := p.client().GetJSON(ctx, p.baseURL()+"/api/version", &version); err != nil {
		return "", types.NewNetworkError(types.ProviderTypeOllama, "failed to fetch server version").
			WithOperation("version").
			WithOriginalErr(err)
	}
	return version.Version, nil
}

// HealthCheck performs a lightweight connectivity test. Results are cached
// for 30 seconds to avoid hammering the server during rapid polling.
func (p *Provider) HealthCheck(ctx context.Context) error {
	err := p.connectivity.TestConnectivity(ctx, types.ProviderTypeOllama, p.testConnectivity, false)
	if err != nil {
		p.UpdateHealthStatus(false, err.Error())
		return err
	}
	p.UpdateHealthStatus(true, "ok")
	return nil
}

func (p *Provider) testConnectivity(ctx context.Context) error {
	if _, err := p.Version(ctx); err == nil {
		return nil
	}

	// Older servers may not expose /api/version; GET / answers
	// "Ollama is running" on anything recent enough to matter.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL()+"/", nil)
	if err != nil {
		return types.NewNetworkError(types.ProviderTypeOllama, "failed to build connectivity request").
			WithOperation("health_check").
			WithOriginalErr(err)
	}

	resp, err := p.client().Client().Do(req)
	if err != nil {
		return types.NewNetworkError(types.ProviderTypeOllama, "server unreachable").
			WithOperation("health_check").
			WithOriginalErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return nil
	}
	return types.NewServerError(types.ProviderTypeOllama, resp.StatusCode,
		fmt.Sprintf("connectivity test failed with status %d", resp.StatusCode)).
		WithOperation("health_check")
}

func readErrorBody(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return strings.TrimSpace(string(body))
}
