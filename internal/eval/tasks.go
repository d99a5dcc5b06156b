package eval

import "github.com/ashureev/refine-labs/internal/domain"

// BuiltinTasks is the demo evaluation set used when no task file is
// supplied.
func BuiltinTasks() []domain.EvalTask {
	return []domain.EvalTask{
		{
			ID:   "summ-patchtst",
			Type: domain.TaskSummarization,
			Input: "PatchTST is a transformer-based model that learns time series by splitting them " +
				"into patches. Its strengths are long-sequence handling and robust generalization; " +
				"its weaknesses are sensitivity to data scaling and the cost of hyperparameter search.",
			Reference: "PatchTST is a patch-based transformer strong on long sequences, " +
				"but it needs careful scaling and tuning.",
		},
		{
			ID:   "code-fibonacci",
			Type: domain.TaskCode,
			Input: "Implement a function fibonacci(n) returning the n-th Fibonacci number " +
				"for integers 0 <= n <= 1000. Raise an exception for negative or non-integer input.",
			Tests: []string{
				"assert fibonacci(0) == 0",
				"assert fibonacci(1) == 1",
				"assert fibonacci(10) == 55",
				"try:\n    fibonacci(-1)\nexcept Exception:\n    pass\nelse:\n    raise AssertionError('negative input accepted')",
			},
		},
	}
}
