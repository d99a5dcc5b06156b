// Package refine drives the generate -> critique -> refine loop against a
// chat backend.
package refine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/ashureev/refine-labs/internal/llm"
)

// Config bounds one refine invocation.
type Config struct {
	// MaxIterations caps the number of critique/refine rounds.
	MaxIterations int
	// Temperature for every provider call in the loop.
	Temperature float64
}

// DefaultConfig matches the documented defaults: two rounds, low
// temperature so critiques stay focused.
func DefaultConfig() Config {
	return Config{MaxIterations: 2, Temperature: 0.2}
}

// state enumerates the loop's control states. The loop is an explicit
// machine so iteration bounds and termination are testable in isolation.
type state int

const (
	stateGenerate state = iota
	stateCritique
	stateRefine
	stateDone
)

// Engine runs self-refine invocations. Each invocation is strictly
// sequential; distinct invocations are independent and may run
// concurrently against the same Engine.
type Engine struct {
	client llm.Client
	cfg    Config
}

// New creates an Engine. Zero or negative MaxIterations falls back to
// the default bound.
func New(client llm.Client, cfg Config) *Engine {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}
	return &Engine{client: client, cfg: cfg}
}

// Run drives one task to convergence and returns the final draft plus
// the full iteration trace.
//
// Provider failures degrade rather than fault: the result carries the
// best draft produced so far, Incomplete set, and the failure reason.
// A failure during the very first generation leaves Final empty.
func (e *Engine) Run(ctx context.Context, prompts PromptSet, input string) domain.RefineResult {
	var (
		res      domain.RefineResult
		draft    string
		critique string
		round    int
	)

	st := stateGenerate
	for {
		switch st {
		case stateGenerate:
			out, err := e.complete(ctx, prompts.System, prompts.GeneratePrompt(input))
			if err != nil {
				return degraded(res, "", "generate", err)
			}
			draft = out
			st = stateCritique

		case stateCritique:
			out, err := e.complete(ctx, prompts.System, prompts.CritiquePrompt(input, draft))
			if err != nil {
				return degraded(res, draft, "critique", err)
			}
			critique = out
			st = stateRefine

		case stateRefine:
			out, err := e.complete(ctx, prompts.System, prompts.RefinePrompt(input, draft, critique))
			if err != nil {
				return degraded(res, draft, "refine", err)
			}
			res.Trace = append(res.Trace, domain.RefineIteration{
				Index:    round,
				Draft:    draft,
				Critique: critique,
				Revised:  out,
			})
			draft = out
			round++
			if round >= e.cfg.MaxIterations || stopSignaled(critique) {
				st = stateDone
			} else {
				st = stateCritique
			}

		case stateDone:
			res.Final = draft
			return res
		}
	}
}

// Generate performs the baseline single-shot generation, with no
// critique/refine rounds. The evaluator compares this against Run.
func (e *Engine) Generate(ctx context.Context, prompts PromptSet, input string) (string, error) {
	return e.complete(ctx, prompts.System, prompts.GeneratePrompt(input))
}

func (e *Engine) complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := e.client.Complete(ctx, llm.Request{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: system},
			{Role: domain.RoleUser, Content: prompt},
		},
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func degraded(res domain.RefineResult, best, phase string, err error) domain.RefineResult {
	slog.Warn("Refine loop degraded", "phase", phase, "error", err)
	res.Final = best
	res.Incomplete = true
	res.FailReason = phase + ": " + err.Error()
	return res
}

// stopSignaled reports whether a critique declares the draft finished.
func stopSignaled(critique string) bool {
	return strings.Contains(strings.ToLower(critique), StopPhrase)
}
