// Package sandbox executes model-generated code in an isolated,
// resource-limited context. Generated code is untrusted input: every run
// gets a fresh container with no network, a read-only root filesystem and
// a hard wall-clock timeout, and is never retried.
package sandbox

import (
	"context"
	"errors"
)

// ErrTimeout reports that a run hit the wall-clock limit and was
// force-terminated.
var ErrTimeout = errors.New("sandbox timeout")

// Result summarizes one single-shot run of generated code against its
// test suite. Tests the run never reported on count as failed.
type Result struct {
	Passed   int
	Total    int
	TimedOut bool
	Crashed  bool
	Output   string // combined stdout/stderr, truncated
}

// Score maps the result to [0,1].
func (r Result) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Runner executes one snippet against its test assertions.
type Runner interface {
	Run(ctx context.Context, code string, tests []string) (Result, error)
}
