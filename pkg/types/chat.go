package types

import "time"

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateOptions represents per-request options for a chat completion.
// Zero-valued tuning fields fall back to the provider's configuration.
type GenerateOptions struct {
	Messages      []ChatMessage          `json:"messages"`
	Model         string                 `json:"model,omitempty"`
	Temperature   float64                `json:"temperature,omitempty"`
	TopP          float64                `json:"top_p,omitempty"`
	MaxTokens     int                    `json:"max_tokens,omitempty"`
	ContextLength int                    `json:"context_length,omitempty"`
	Stop          []string               `json:"stop,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// LLMResponse represents a complete, non-streaming response
type LLMResponse struct {
	Content      string        `json:"content"`
	Model        string        `json:"model"`
	Usage        Usage         `json:"usage"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Elapsed      time.Duration `json:"elapsed,omitempty"`
}

// ChatCompletionChunk represents a chunk of a streaming response
type ChatCompletionChunk struct {
	Model   string `json:"model"`
	Content string `json:"content"`
	Done    bool   `json:"done"`

	// Usage is populated only on the final chunk (Done == true).
	Usage Usage `json:"usage"`
}

// ChatCompletionStream represents a streaming chat completion response.
// Next returns io.EOF once the stream is exhausted. Close is safe to call
// multiple times and must be called to release the underlying connection.
type ChatCompletionStream interface {
	Next() (ChatCompletionChunk, error)
	Close() error
}

// NewUserMessage builds a user-role chat message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewSystemMessage builds a system-role chat message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// NewAssistantMessage builds an assistant-role chat message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}
