package api

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/ashureev/refine-labs/internal/llm"
	"github.com/go-chi/chi/v5"
)

// failingClient simulates an upstream rejecting every call.
type failingClient struct {
	status int
	body   string
}

func (c *failingClient) Stream(context.Context, llm.Request) iter.Seq2[llm.Event, error] {
	return func(yield func(llm.Event, error) bool) {
		yield(llm.Event{}, &llm.StatusError{Status: c.status, Body: c.body})
	}
}

func (c *failingClient) Complete(context.Context, llm.Request) (domain.Message, error) {
	return domain.Message{}, &llm.StatusError{Status: c.status, Body: c.body}
}

func newRouter(client llm.Client) http.Handler {
	r := chi.NewRouter()
	RegisterHealth(r)
	NewChatHandler(client).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// parseRecords splits an SSE body into its data payloads.
func parseRecords(t *testing.T, body string) []string {
	t.Helper()
	var records []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			records = append(records, strings.TrimPrefix(line, "data: "))
		} else if line != "" {
			t.Errorf("unexpected non-record line %q", line)
		}
	}
	return records
}

func TestStreamDemoEndToEnd(t *testing.T) {
	const greeting = "Hello! I am the demo assistant."
	h := newRouter(llm.NewDemo(greeting, 2, 0))

	w := postJSON(t, h, "/chat/stream",
		`{"session_id":"s1","messages":[{"role":"user","content":"hi"}],"temperature":0.7}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	records := parseRecords(t, w.Body.String())
	if records[len(records)-1] != "[DONE]" {
		t.Fatalf("stream must end with [DONE], got %q", records[len(records)-1])
	}

	var text string
	for _, rec := range records[:len(records)-1] {
		var payload struct {
			Delta string `json:"delta"`
		}
		if err := json.Unmarshal([]byte(rec), &payload); err != nil {
			t.Fatalf("bad record %q: %v", rec, err)
		}
		text += payload.Delta
	}
	if text != greeting {
		t.Errorf("concatenated deltas = %q, want %q", text, greeting)
	}
}

func TestStreamUpstreamRateLimit(t *testing.T) {
	h := newRouter(&failingClient{status: 429, body: "slow down"})

	w := postJSON(t, h, "/chat/stream",
		`{"messages":[{"role":"user","content":"hi"}],"temperature":0.7}`)

	// The HTTP layer still succeeds; the failure lives in the stream.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	records := parseRecords(t, w.Body.String())
	if len(records) != 2 {
		t.Fatalf("expected error record + [DONE], got %v", records)
	}

	var payload struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal([]byte(records[0]), &payload); err != nil {
		t.Fatalf("bad error record %q: %v", records[0], err)
	}
	if payload.Status != 429 || payload.Error != "slow down" {
		t.Errorf("unexpected error payload: %+v", payload)
	}
	if records[1] != "[DONE]" {
		t.Errorf("terminal record = %q", records[1])
	}
}

func TestStreamRejectsInvalidRequest(t *testing.T) {
	h := newRouter(llm.NewDemo("x", 1, 0))

	w := postJSON(t, h, "/chat/stream", `{"messages":[],"temperature":0.7}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = postJSON(t, h, "/chat/stream",
		`{"messages":[{"role":"user","content":"hi"}],"temperature":9}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range temperature", w.Code)
	}

	w = postJSON(t, h, "/chat/stream",
		`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"yo"}],"temperature":0.7}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when the history ends with the assistant", w.Code)
	}
}

func TestCompletions(t *testing.T) {
	h := newRouter(llm.NewDemo("full answer", 2, 0))

	w := postJSON(t, h, "/chat/completions",
		`{"session_id":"s1","messages":[{"role":"user","content":"hi"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Output != "full answer" {
		t.Errorf("output = %q", resp.Output)
	}
}

func TestCompletionsUpstreamError(t *testing.T) {
	h := newRouter(&failingClient{status: 503, body: "unavailable"})

	w := postJSON(t, h, "/chat/completions",
		`{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want upstream 503", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newRouter(llm.NewDemo("x", 1, 0))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["ok"] {
		t.Errorf("health payload = %v, want ok=true", resp)
	}
}
