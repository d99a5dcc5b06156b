package domain

// TaskType distinguishes the two evaluation task families.
type TaskType string

const (
	TaskSummarization TaskType = "summarization"
	TaskCode          TaskType = "code"
)

// EvalTask is one unit of evaluation work.
//
// For summarization tasks Input is the source text and Reference the gold
// summary. For code tasks Input is the requirement prompt and Tests the
// assertion expressions run against the generated code.
type EvalTask struct {
	ID        string   `json:"id"`
	Type      TaskType `json:"type"`
	Input     string   `json:"input"`
	Reference string   `json:"reference,omitempty"`
	Tests     []string `json:"tests,omitempty"`
}

// EvalResult scores one task: baseline (single generation) vs the
// self-refined output. Detail carries human-readable context such as
// sandbox failure reasons.
type EvalResult struct {
	TaskID        string   `json:"task_id"`
	TaskType      TaskType `json:"task_type"`
	BaselineScore float64  `json:"baseline_score"`
	RefinedScore  float64  `json:"refined_score"`
	Detail        string   `json:"detail,omitempty"`
}

// Report aggregates one evaluation run, keyed by task id.
type Report struct {
	RunID   string                `json:"run_id"`
	Model   string                `json:"model"`
	Results map[string]EvalResult `json:"results"`
}
