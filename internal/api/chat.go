package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/ashureev/refine-labs/internal/llm"
	"github.com/go-chi/chi/v5"
)

// systemGreeting is prepended to streamed conversations.
const systemGreeting = "You are a helpful assistant."

// ChatHandler serves the streaming and non-streaming chat endpoints
// against the configured provider.
type ChatHandler struct {
	client llm.Client
}

// NewChatHandler creates a chat handler bound to one provider client.
func NewChatHandler(client llm.Client) *ChatHandler {
	return &ChatHandler{client: client}
}

// RegisterRoutes mounts the chat endpoints.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/stream", h.Stream)
	r.Post("/chat/completions", h.Completions)
}

// Stream serves the event-stream chat endpoint. Provider failures become
// a single in-stream error record; the stream always ends with [DONE].
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	sess := req.session()
	if sess.LastRole() != domain.RoleUser {
		Error(w, http.StatusBadRequest, "last message role must be user")
		return
	}

	llmReq := llm.Request{
		Messages:    append([]domain.Message{{Role: domain.RoleSystem, Content: systemGreeting}}, sess.History...),
		Temperature: req.temperature(),
	}
	if err := llmReq.Validate(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	enc := NewEncoder(w)
	defer enc.Close()

	// r.Context() is canceled when the client disconnects; the pull
	// chain stops reading from the provider as soon as a write fails.
	for ev := range llm.Normalize(h.client.Stream(r.Context(), llmReq)) {
		if err := enc.Encode(ev); err != nil {
			slog.Debug("Stream write failed, client likely gone", "session_id", sess.ID, "error", err)
			return
		}
	}
}

// Completions serves the non-streaming chat endpoint.
func (h *ChatHandler) Completions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	msg, err := h.client.Complete(r.Context(), llm.Request{
		Messages:    req.session().History,
		Temperature: req.temperature(),
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		var se *llm.StatusError
		if errors.As(err, &se) {
			status = se.Status
		}
		Error(w, status, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]string{"output": msg.Content})
}

func (h *ChatHandler) decode(w http.ResponseWriter, r *http.Request) (*chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &req, true
}
