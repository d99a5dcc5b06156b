package llm

import (
	"context"
	"reflect"
	"testing"

	"github.com/ashureev/refine-labs/internal/domain"
)

func demoRequest() Request {
	return Request{
		Messages:    []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		Temperature: 0.7,
	}
}

func demoDeltas(t *testing.T, d *Demo) []string {
	t.Helper()
	var deltas []string
	for ev := range Normalize(d.Stream(context.Background(), demoRequest())) {
		switch ev.Kind {
		case KindDelta:
			deltas = append(deltas, ev.Text)
		case KindError:
			t.Fatalf("demo stream emitted an error: %+v", ev)
		}
	}
	return deltas
}

func TestDemoChunking(t *testing.T) {
	d := NewDemo("ABCDE", 2, 0)

	got := demoDeltas(t, d)
	want := []string{"AB", "CD", "E"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("deltas = %v, want %v", got, want)
	}
}

func TestDemoDeterminism(t *testing.T) {
	d := NewDemo("hello demo stream", 3, 0)

	first := demoDeltas(t, d)
	second := demoDeltas(t, d)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
}

func TestDemoStreamEndsWithDone(t *testing.T) {
	d := NewDemo("xyz", 1, 0)

	var events []Event
	for ev := range Normalize(d.Stream(context.Background(), demoRequest())) {
		events = append(events, ev)
	}
	if events[len(events)-1].Kind != KindDone {
		t.Errorf("last event = %+v, want Done", events[len(events)-1])
	}
}

func TestDemoComplete(t *testing.T) {
	d := NewDemo("canned reply", 2, 0)

	msg, err := d.Complete(context.Background(), demoRequest())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if msg.Role != domain.RoleAssistant || msg.Content != "canned reply" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name:    "valid",
			req:     demoRequest(),
			wantErr: false,
		},
		{
			name:    "empty messages",
			req:     Request{Temperature: 0.5},
			wantErr: true,
		},
		{
			name: "temperature too high",
			req: Request{
				Messages:    []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
				Temperature: 2.5,
			},
			wantErr: true,
		},
		{
			name: "negative temperature",
			req: Request{
				Messages:    []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
				Temperature: -0.1,
			},
			wantErr: true,
		},
		{
			name: "last message not from user",
			req: Request{
				Messages:    []domain.Message{{Role: domain.RoleAssistant, Content: "hi"}},
				Temperature: 0.5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
