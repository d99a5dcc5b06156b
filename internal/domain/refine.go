package domain

// RefineIteration records one critique/refine round. Iterations are
// append-only: once closed with the revised text they are never mutated.
type RefineIteration struct {
	Index    int    `json:"index"`
	Draft    string `json:"draft"`
	Critique string `json:"critique"`
	Revised  string `json:"revised"`
}

// RefineResult is the outcome of one self-refine invocation.
// Incomplete marks a degraded result: a provider call failed mid-loop and
// Final holds the best draft produced before the failure (possibly empty
// when the initial generation itself failed).
type RefineResult struct {
	Final      string            `json:"final"`
	Trace      []RefineIteration `json:"trace"`
	Incomplete bool              `json:"incomplete"`
	FailReason string            `json:"fail_reason,omitempty"`
}
