package llm

import (
	"context"
	"fmt"
	"iter"

	"github.com/ashureev/refine-labs/internal/domain"
)

// Request carries one chat call to a backend.
type Request struct {
	Messages    []domain.Message
	Temperature float64
	Model       string // optional override of the client's configured model
}

// Validate checks the request constraints shared by all backends.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", ErrInvalidRequest)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f outside [0,2]", ErrInvalidRequest, r.Temperature)
	}
	if last := r.Messages[len(r.Messages)-1]; last.Role != domain.RoleUser {
		return fmt.Errorf("%w: last message role must be %q, got %q", ErrInvalidRequest, domain.RoleUser, last.Role)
	}
	return nil
}

// Client is a chat backend. One implementation exists per provider and is
// chosen once at construction from configuration.
//
// Stream returns a lazy raw event sequence: iteration drives the network
// read, so a slow consumer throttles the upstream and an abandoned
// iteration releases the connection. The sequence is raw in the sense
// that it carries provider errors as the second element and makes no
// termination guarantees; Normalize enforces the canonical invariants.
type Client interface {
	Stream(ctx context.Context, req Request) iter.Seq2[Event, error]
	Complete(ctx context.Context, req Request) (domain.Message, error)
}
