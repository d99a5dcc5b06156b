package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidRequest marks request validation failures (bad temperature,
// empty history, wrong trailing role). Callers map it to HTTP 400.
var ErrInvalidRequest = errors.New("invalid request")

// TransportError wraps connection-level failures: refused, reset, or an
// aborted read mid-stream.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

// ParseError reports a malformed upstream payload. The connection is
// closed after the first malformed line; there is no resynchronization.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// classify maps a provider error to the message/status pair carried by a
// canonical error event.
func classify(err error) (string, int) {
	var se *StatusError
	if errors.As(err, &se) {
		msg := se.Body
		if msg == "" {
			msg = http.StatusText(se.Status)
		}
		return msg, se.Status
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return "parse error", 0
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Error(), 0
	}
	return err.Error(), 0
}
