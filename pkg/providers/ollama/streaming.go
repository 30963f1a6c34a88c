package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xandai-project/xandai-go/pkg/types"
)

// Stream implements types.ChatCompletionStream for the native Ollama
// /api/chat endpoint, which emits newline-delimited JSON.
type Stream struct {
	reader *bufio.Reader
	body   io.ReadCloser
	ctx    context.Context
	done   bool

	// onDone is invoked once with the final usage when the stream
	// completes normally.
	onDone func(types.Usage)
}

func newStream(ctx context.Context, body io.ReadCloser, onDone func(types.Usage)) *Stream {
	return &Stream{
		reader: bufio.NewReader(body),
		body:   body,
		ctx:    ctx,
		onDone: onDone,
	}
}

// Next returns the next chunk from the stream. It returns io.EOF once the
// stream is complete. Blank and malformed lines are skipped.
func (s *Stream) Next() (types.ChatCompletionChunk, error) {
	if s.done {
		return types.ChatCompletionChunk{Done: true}, io.EOF
	}

	select {
	case <-s.ctx.Done():
		s.done = true
		return types.ChatCompletionChunk{Done: true}, s.ctx.Err()
	default:
	}

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				s.done = true
				return types.ChatCompletionChunk{Done: true}, io.EOF
			}
			return types.ChatCompletionChunk{}, fmt.Errorf("failed to read stream: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var resp ollamaChatResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}

		chunk := types.ChatCompletionChunk{
			Model:   resp.Model,
			Content: resp.Message.Content,
			Done:    resp.Done,
		}

		if resp.Done {
			s.done = true
			chunk.Usage = types.Usage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
				TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			}
			if s.onDone != nil {
				s.onDone(chunk.Usage)
				s.onDone = nil
			}
		}

		return chunk, nil
	}
}

// Close closes the stream and releases the underlying connection.
// It is safe to call Close multiple times.
func (s *Stream) Close() error {
	s.done = true
	if s.body != nil {
		err := s.body.Close()
		s.body = nil
		return err
	}
	return nil
}

// DrainStream consumes a stream to completion and assembles the full
// response. The stream is not closed; that stays with the caller.
func DrainStream(stream types.ChatCompletionStream) (*types.LLMResponse, error) {
	var content strings.Builder
	response := &types.LLMResponse{}

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		content.WriteString(chunk.Content)
		if chunk.Model != "" {
			response.Model = chunk.Model
		}
		if chunk.Done {
			response.Usage = chunk.Usage
			response.FinishReason = "stop"
			break
		}
	}

	response.Content = content.String()
	return response, nil
}
