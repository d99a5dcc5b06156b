package eval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/ashureev/refine-labs/internal/refine"
	"github.com/ashureev/refine-labs/internal/sandbox"
	"github.com/ashureev/refine-labs/internal/shared"
	"github.com/ashureev/refine-labs/internal/store"
)

const saveRetries = 3

// Runner evaluates tasks, comparing a single baseline generation against
// the full self-refine output.
type Runner struct {
	engine  *refine.Engine
	sandbox sandbox.Runner
	repo    store.Repository
	model   string
}

// NewRunner creates an evaluation runner. repo may be nil to skip
// persistence (used by tests).
func NewRunner(engine *refine.Engine, sb sandbox.Runner, repo store.Repository, model string) *Runner {
	return &Runner{engine: engine, sandbox: sb, repo: repo, model: model}
}

// Run evaluates every task and returns the aggregate report. A failure
// on one task (including a sandbox crash) is recorded in that task's
// result and does not abort the remaining tasks.
func (r *Runner) Run(ctx context.Context, runID string, tasks []domain.EvalTask) (*domain.Report, error) {
	report := &domain.Report{
		RunID:   runID,
		Model:   r.model,
		Results: make(map[string]domain.EvalResult),
	}

	if r.repo != nil {
		if err := r.repo.CreateRun(ctx, runID, r.model); err != nil {
			return nil, fmt.Errorf("register eval run: %w", err)
		}
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := r.evalTask(ctx, task)
		report.Results[task.ID] = res
		slog.Info("Task evaluated",
			"task_id", task.ID,
			"task_type", task.Type,
			"baseline_score", res.BaselineScore,
			"refined_score", res.RefinedScore,
		)

		if r.repo != nil {
			if err := r.saveWithRetry(ctx, runID, res); err != nil {
				slog.Error("Failed to persist eval result", "task_id", task.ID, "error", err)
			}
		}
	}

	return report, nil
}

func (r *Runner) evalTask(ctx context.Context, task domain.EvalTask) domain.EvalResult {
	res := domain.EvalResult{TaskID: task.ID, TaskType: task.Type}
	var details []string

	prompts, err := promptsFor(task.Type)
	if err != nil {
		res.Detail = err.Error()
		return res
	}

	baseline, err := r.engine.Generate(ctx, prompts, task.Input)
	if err != nil {
		details = append(details, "baseline: "+err.Error())
	} else {
		score, note := r.score(ctx, task, baseline)
		res.BaselineScore = score
		if note != "" {
			details = append(details, "baseline: "+note)
		}
	}

	refined := r.engine.Run(ctx, prompts, task.Input)
	if refined.Incomplete {
		details = append(details, "refine: "+refined.FailReason)
	}
	if refined.Final != "" {
		score, note := r.score(ctx, task, refined.Final)
		res.RefinedScore = score
		if note != "" {
			details = append(details, "refined: "+note)
		}
	}

	res.Detail = strings.Join(details, "; ")
	return res
}

// score rates one candidate output for a task. The second return value
// carries a note for the result detail, if any.
func (r *Runner) score(ctx context.Context, task domain.EvalTask, candidate string) (float64, string) {
	switch task.Type {
	case domain.TaskSummarization:
		return OverlapRecall(candidate, task.Reference, bigramSize), ""

	case domain.TaskCode:
		code := ExtractCode(candidate)
		result, err := r.sandbox.Run(ctx, code, task.Tests)
		switch {
		case errors.Is(err, sandbox.ErrTimeout):
			return result.Score(), "sandbox timeout"
		case err != nil:
			return 0, "sandbox: " + err.Error()
		case result.Crashed:
			return result.Score(), "sandbox run exited non-zero"
		default:
			return result.Score(), ""
		}

	default:
		return 0, fmt.Sprintf("unknown task type %q", task.Type)
	}
}

func (r *Runner) saveWithRetry(ctx context.Context, runID string, res domain.EvalResult) error {
	var err error
	for i := 0; i < saveRetries; i++ {
		err = r.repo.SaveResult(ctx, runID, res)
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond << i):
		}
	}
	return err
}

func promptsFor(t domain.TaskType) (refine.PromptSet, error) {
	switch t {
	case domain.TaskSummarization:
		return refine.SummarizationPrompts, nil
	case domain.TaskCode:
		return refine.CodePrompts, nil
	default:
		return refine.PromptSet{}, fmt.Errorf("unknown task type %q", t)
	}
}

// WriteReport persists the report as the JSON artifact at path.
func WriteReport(report *domain.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// LoadTasks reads an evaluation task file (JSON array of tasks).
func LoadTasks(path string) ([]domain.EvalTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	var tasks []domain.EvalTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task file %s contains no tasks", path)
	}
	return tasks, nil
}
