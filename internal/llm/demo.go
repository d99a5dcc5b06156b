package llm

import (
	"context"
	"iter"
	"time"

	"github.com/ashureev/refine-labs/internal/domain"
)

// DefaultDemoText is streamed when no demo text is configured.
const DefaultDemoText = "Demo mode: streaming a canned reply without calling a model backend. Unset DEMO_MODE to talk to a real provider."

// Demo simulates a streaming backend without any network call. The
// configured text is split into fixed-size rune chunks, so for a given
// text and chunk size the emitted sequence is identical on every run.
type Demo struct {
	text      string
	chunkSize int
	delay     time.Duration
}

// NewDemo creates a demo client. chunkSize values below 1 fall back to 1;
// delay is the simulated inter-chunk latency and may be zero.
func NewDemo(text string, chunkSize int, delay time.Duration) *Demo {
	if text == "" {
		text = DefaultDemoText
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Demo{text: text, chunkSize: chunkSize, delay: delay}
}

// Stream emits the demo text as deterministic rune chunks followed by
// Done. It never emits an error; cancellation just stops the sequence.
func (d *Demo) Stream(ctx context.Context, req Request) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if err := req.Validate(); err != nil {
			yield(Event{}, err)
			return
		}

		runes := []rune(d.text)
		for start := 0; start < len(runes); start += d.chunkSize {
			end := start + d.chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			if d.delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(d.delay):
				}
			}
			if !yield(Delta(string(runes[start:end])), nil) {
				return
			}
		}
		yield(Done(), nil)
	}
}

// Complete returns the full demo text as a single assistant message.
func (d *Demo) Complete(ctx context.Context, req Request) (domain.Message, error) {
	if err := req.Validate(); err != nil {
		return domain.Message{}, err
	}
	return domain.Message{Role: domain.RoleAssistant, Content: d.text}, nil
}
