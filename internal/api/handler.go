// Package api provides the HTTP handlers of the chat gateway.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/go-chi/chi/v5"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterHealth mounts the health probe. It has no side effects.
func RegisterHealth(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}

// chatRequest is the request body shared by the chat endpoints.
type chatRequest struct {
	SessionID   string           `json:"session_id"`
	Messages    []domain.Message `json:"messages"`
	Temperature *float64         `json:"temperature"`
}

// defaultTemperature applies when the request omits the field.
const defaultTemperature = 0.7

func (c *chatRequest) temperature() float64 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

// session builds the caller-owned conversation state for this request.
func (c *chatRequest) session() domain.Session {
	return domain.Session{ID: c.SessionID, History: c.Messages}
}
