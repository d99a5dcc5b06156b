package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/ashureev/refine-labs/internal/llm"
	"github.com/coder/websocket"
)

// wsReadTimeout bounds the wait for the initial request message.
const wsReadTimeout = 30 * time.Second

// wsEvent is the websocket rendering of a canonical event.
type wsEvent struct {
	Type    string `json:"type"` // "delta", "error", "done"
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// WSHandler streams chat responses over a websocket. It carries the same
// canonical events as the SSE endpoint, one JSON text message each,
// ending with a "done" message.
type WSHandler struct {
	client llm.Client
}

// NewWSHandler creates a websocket chat handler.
func NewWSHandler(client llm.Client) *WSHandler {
	return &WSHandler{client: client}
}

// ServeHTTP upgrades the connection, reads one chat request, and streams
// the normalized response.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept websocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	readCtx, readCancel := context.WithTimeout(ctx, wsReadTimeout)
	defer readCancel()
	_, data, err := ws.Read(readCtx)
	if err != nil {
		slog.Debug("Websocket request read failed", "error", err)
		return
	}

	var req chatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.write(ctx, ws, wsEvent{Type: "error", Message: "invalid request body", Status: http.StatusBadRequest})
		h.write(ctx, ws, wsEvent{Type: "done"})
		return
	}

	llmReq := llm.Request{
		Messages:    append([]domain.Message{{Role: domain.RoleSystem, Content: systemGreeting}}, req.session().History...),
		Temperature: req.temperature(),
	}
	if err := llmReq.Validate(); err != nil {
		h.write(ctx, ws, wsEvent{Type: "error", Message: err.Error(), Status: http.StatusBadRequest})
		h.write(ctx, ws, wsEvent{Type: "done"})
		return
	}

	for ev := range llm.Normalize(h.client.Stream(ctx, llmReq)) {
		var out wsEvent
		switch ev.Kind {
		case llm.KindDelta:
			out = wsEvent{Type: "delta", Text: ev.Text}
		case llm.KindError:
			out = wsEvent{Type: "error", Message: ev.Message, Status: ev.Status}
		case llm.KindDone:
			out = wsEvent{Type: "done"}
		}
		if err := h.write(ctx, ws, out); err != nil {
			slog.Debug("Websocket write failed, client likely gone", "error", err)
			return
		}
	}
}

func (h *WSHandler) write(ctx context.Context, ws *websocket.Conn, ev wsEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
