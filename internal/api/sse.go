package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ashureev/refine-labs/internal/llm"
)

// doneRecord is the literal terminal record of the wire protocol.
const doneRecord = "data: [DONE]\n\n"

// Encoder serializes canonical events onto an SSE response. It tracks
// whether the terminal record was written so Close can still terminate
// the stream after an abnormal exit, as long as the transport accepts
// writes.
type Encoder struct {
	w           http.ResponseWriter
	flusher     http.Flusher
	doneWritten bool
	failed      bool
}

// NewEncoder prepares the response for event streaming and returns the
// encoder.
func NewEncoder(w http.ResponseWriter) *Encoder {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)
	return &Encoder{w: w, flusher: flusher}
}

// Encode writes one canonical event as a wire record.
func (e *Encoder) Encode(ev llm.Event) error {
	if e.doneWritten || e.failed {
		return nil
	}
	switch ev.Kind {
	case llm.KindDelta:
		payload, err := json.Marshal(map[string]string{"delta": ev.Text})
		if err != nil {
			return fmt.Errorf("marshal delta record: %w", err)
		}
		return e.writeRecord("data: " + string(payload) + "\n\n")

	case llm.KindError:
		payload, err := json.Marshal(map[string]interface{}{
			"error":  ev.Message,
			"status": ev.Status,
		})
		if err != nil {
			return fmt.Errorf("marshal error record: %w", err)
		}
		return e.writeRecord("data: " + string(payload) + "\n\n")

	case llm.KindDone:
		err := e.writeRecord(doneRecord)
		e.doneWritten = true
		return err

	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

// Close terminates the stream, writing the [DONE] record once if it has
// not been written yet. Best-effort: a dead transport is left alone.
func (e *Encoder) Close() {
	if e.doneWritten || e.failed {
		return
	}
	if err := e.writeRecord(doneRecord); err == nil {
		e.doneWritten = true
	}
}

func (e *Encoder) writeRecord(record string) error {
	if _, err := fmt.Fprint(e.w, record); err != nil {
		e.failed = true
		return fmt.Errorf("write stream record: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
