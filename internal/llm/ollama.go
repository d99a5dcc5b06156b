package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/refine-labs/internal/domain"
)

const (
	completeTimeout = 120 * time.Second
	// Upper bound on one NDJSON line / SSE record.
	maxLineBytes = 1 << 20
)

// Ollama talks to an Ollama server. Streaming responses arrive as
// newline-delimited JSON objects on a persistent connection; the object
// with "done": true carries no further text and ends the stream.
type Ollama struct {
	baseURL string
	model   string

	// Completions get a bounded client; streams manage their own
	// lifetime via the request context.
	client       *http.Client
	streamClient *http.Client
}

// NewOllama creates an Ollama client for the given base URL and model.
func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		client:       &http.Client{Timeout: completeTimeout},
		streamClient: &http.Client{},
	}
}

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
	Options  ollamaOptions    `json:"options"`
	Stream   bool             `json:"stream"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

func (o *Ollama) chatRequest(req Request, stream bool) ollamaChatRequest {
	model := req.Model
	if model == "" {
		model = o.model
	}
	return ollamaChatRequest{
		Model:    model,
		Messages: req.Messages,
		Options:  ollamaOptions{Temperature: req.Temperature},
		Stream:   stream,
	}
}

// Stream emits one Delta per NDJSON fragment. A malformed line closes the
// connection with a ParseError; there is no retry.
func (o *Ollama) Stream(ctx context.Context, req Request) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if err := req.Validate(); err != nil {
			yield(Event{}, err)
			return
		}

		body, err := json.Marshal(o.chatRequest(req, true))
		if err != nil {
			yield(Event{}, fmt.Errorf("marshal chat request: %w", err))
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			yield(Event{}, fmt.Errorf("build chat request: %w", err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := o.streamClient.Do(httpReq)
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
			if line == "" {
				continue
			}
			var chunk ollamaChunk
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				yield(Event{}, &ParseError{Err: err})
				return
			}
			if chunk.Done {
				yield(Done(), nil)
				return
			}
			if chunk.Message.Content != "" {
				if !yield(Delta(chunk.Message.Content), nil) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Event{}, &TransportError{Err: err})
		}
		// Stream ended without a done marker: leave the sequence
		// unterminated and let the normalizer flag the truncation.
	}
}

// Complete performs a non-streaming chat call.
func (o *Ollama) Complete(ctx context.Context, req Request) (domain.Message, error) {
	if err := req.Validate(); err != nil {
		return domain.Message{}, err
	}

	body, err := json.Marshal(o.chatRequest(req, false))
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return domain.Message{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return domain.Message{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Message{}, readStatusError(resp)
	}

	var chunk ollamaChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return domain.Message{}, &ParseError{Err: err}
	}
	return domain.Message{Role: domain.RoleAssistant, Content: strings.TrimSpace(chunk.Message.Content)}, nil
}

// readStatusError drains a bounded slice of the error body for context.
func readStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
