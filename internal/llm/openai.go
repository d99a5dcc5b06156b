package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/ashureev/refine-labs/internal/domain"
)

// sseDonePayload is the literal sentinel that terminates an SSE stream.
const sseDonePayload = "[DONE]"

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
// Streaming responses arrive as SSE "data: " records terminated by the
// [DONE] sentinel.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string

	client       *http.Client
	streamClient *http.Client
}

// NewOpenAI creates a client for an OpenAI-compatible endpoint. apiKey
// may be empty for unauthenticated gateways.
func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	return &OpenAI{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        model,
		client:       &http.Client{Timeout: completeTimeout},
		streamClient: &http.Client{},
	}
}

type openAIChatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	Stream      bool             `json:"stream,omitempty"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type openAICompletion struct {
	Choices []struct {
		Message domain.Message `json:"message"`
	} `json:"choices"`
}

func (c *OpenAI) newRequest(ctx context.Context, req Request, stream bool) (*http.Request, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	body, err := json.Marshal(openAIChatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return httpReq, nil
}

// Stream emits one Delta per SSE content fragment. An HTTP error status
// before any data surfaces as a StatusError; a malformed data payload
// closes the stream with a ParseError.
func (c *OpenAI) Stream(ctx context.Context, req Request) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if err := req.Validate(); err != nil {
			yield(Event{}, err)
			return
		}

		httpReq, err := c.newRequest(ctx, req, true)
		if err != nil {
			yield(Event{}, err)
			return
		}

		resp, err := c.streamClient.Do(httpReq)
		if err != nil {
			yield(Event{}, &TransportError{Err: err})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield(Event{}, readStatusError(resp))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == sseDonePayload {
				yield(Done(), nil)
				return
			}
			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield(Event{}, &ParseError{Err: err})
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if content := chunk.Choices[0].Delta.Content; content != "" {
				if !yield(Delta(content), nil) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Event{}, &TransportError{Err: err})
		}
	}
}

// Complete performs a non-streaming chat call.
func (c *OpenAI) Complete(ctx context.Context, req Request) (domain.Message, error) {
	if err := req.Validate(); err != nil {
		return domain.Message{}, err
	}

	httpReq, err := c.newRequest(ctx, req, false)
	if err != nil {
		return domain.Message{}, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.Message{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Message{}, readStatusError(resp)
	}

	var out openAICompletion
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Message{}, &ParseError{Err: err}
	}
	if len(out.Choices) == 0 {
		return domain.Message{}, &ParseError{Err: fmt.Errorf("completion has no choices")}
	}
	msg := out.Choices[0].Message
	msg.Content = strings.TrimSpace(msg.Content)
	return msg, nil
}
