// Package http provides HTTP client utilities shared by XandAI providers.
// It includes a reusable client with retry logic and JSON request helpers.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientConfig configures the retrying HTTP client
type ClientConfig struct {
	Timeout           time.Duration     `json:"timeout,omitempty"`
	MaxRetries        int               `json:"max_retries,omitempty"`
	BaseRetryDelay    time.Duration     `json:"base_retry_delay,omitempty"`
	MaxRetryDelay     time.Duration     `json:"max_retry_delay,omitempty"`
	BackoffMultiplier float64           `json:"backoff_multiplier,omitempty"`
	RetryableStatuses []int             `json:"retryable_statuses,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	UserAgent         string            `json:"user_agent,omitempty"`
}

// Client wraps http.Client with retry logic for idempotent provider calls.
// Streaming requests bypass retries and use the underlying client directly.
type Client struct {
	client *http.Client
	config ClientConfig
}

// NewClient creates a new HTTP client with provider-friendly defaults
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.BaseRetryDelay == 0 {
		config.BaseRetryDelay = 500 * time.Millisecond
	}
	if config.MaxRetryDelay == 0 {
		config.MaxRetryDelay = 30 * time.Second
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = 2.0
	}
	if len(config.RetryableStatuses) == 0 {
		config.RetryableStatuses = []int{429, 500, 502, 503, 504}
	}
	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}
	if config.UserAgent == "" {
		config.UserAgent = "xandai-go/1.0"
	}
	config.Headers["User-Agent"] = config.UserAgent

	return &Client{
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		config: config,
	}
}

// Do executes a request with retry on retryable status codes. The request
// body, if any, must be rewindable; callers here only send JSON bodies
// built by NewJSONRequest, which are.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for key, value := range c.config.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(BackoffConfig{
				BaseDelay:   c.config.BaseRetryDelay,
				MaxDelay:    c.config.MaxRetryDelay,
				Multiplier:  c.config.BackoffMultiplier,
				MaxAttempts: c.config.MaxRetries,
			}, attempt)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		retryReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", bodyErr)
			}
			retryReq.Body = body
		}

		resp, err = c.client.Do(retryReq)
		if err != nil {
			if attempt < c.config.MaxRetries {
				continue
			}
			break
		}

		if c.shouldRetryStatus(resp.StatusCode, attempt) {
			_ = resp.Body.Close()
			continue
		}
		break
	}

	return resp, err
}

// GetJSON performs a GET request and decodes the JSON response into out.
// Non-2xx responses are returned as an error carrying the response body.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Client returns the underlying http.Client, for streaming requests that
// must not be retried.
func (c *Client) Client() *http.Client {
	return c.client
}

func (c *Client) shouldRetryStatus(statusCode, attempt int) bool {
	if attempt >= c.config.MaxRetries {
		return false
	}
	for _, retryable := range c.config.RetryableStatuses {
		if statusCode == retryable {
			return true
		}
	}
	return false
}

// StatusError reports a non-2xx response from a provider endpoint
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// NewJSONRequest creates a JSON HTTP request with proper headers. The body
// is buffered so the retrying client can replay it.
func NewJSONRequest(ctx context.Context, method, url string, body interface{}) (*http.Request, error) {
	var bodyReader io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
