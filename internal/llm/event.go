// Package llm provides the chat backend clients and the canonical
// streaming event type shared by every downstream consumer.
package llm

// Kind tags the canonical event variant.
type Kind int

const (
	// KindDelta carries one incremental text fragment.
	KindDelta Kind = iota
	// KindError carries a terminal error; at most one per stream,
	// immediately before Done.
	KindError
	// KindDone terminates the stream. Exactly one per stream, always last.
	KindDone
)

// Event is the canonical streaming event. Every backend-specific wire
// format is adapted into a sequence of these.
type Event struct {
	Kind    Kind
	Text    string // delta fragment (KindDelta)
	Message string // error message (KindError)
	Status  int    // upstream HTTP status, 0 when not applicable (KindError)
}

// Delta builds a fragment event.
func Delta(text string) Event { return Event{Kind: KindDelta, Text: text} }

// ErrorEvent builds an error event.
func ErrorEvent(message string, status int) Event {
	return Event{Kind: KindError, Message: message, Status: status}
}

// Done builds the terminal event.
func Done() Event { return Event{Kind: KindDone} }
