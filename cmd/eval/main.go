// refine-labs evaluation runner: scores baseline vs self-refined outputs
// on summarization and code-generation tasks and persists the report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ashureev/refine-labs/internal/config"
	"github.com/ashureev/refine-labs/internal/domain"
	"github.com/ashureev/refine-labs/internal/eval"
	"github.com/ashureev/refine-labs/internal/llm"
	"github.com/ashureev/refine-labs/internal/refine"
	"github.com/ashureev/refine-labs/internal/sandbox"
	"github.com/ashureev/refine-labs/internal/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	taskFile := flag.String("tasks", "", "path to a JSON task file (default: built-in demo tasks)")
	reportPath := flag.String("out", "", "report output path (default: REPORT_PATH)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *reportPath == "" {
		*reportPath = cfg.ReportPath
	}

	tasks := eval.BuiltinTasks()
	if *taskFile != "" {
		tasks, err = eval.LoadTasks(*taskFile)
		if err != nil {
			slog.Error("Failed to load tasks", "error", err)
			os.Exit(1)
		}
	}

	client, err := llm.FromConfig(cfg)
	if err != nil {
		slog.Error("Failed to build provider client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := sandbox.NewDockerRunner(cfg.Sandbox)
	if err != nil {
		slog.Error("Failed to initialize sandbox", "error", err)
		os.Exit(1)
	}
	if err := runner.EnsureImage(ctx); err != nil {
		slog.Error("Sandbox image unavailable", "error", err)
		os.Exit(1)
	}
	slog.Info("Sandbox ready", "image", cfg.Sandbox.Image, "timeout", cfg.Sandbox.Timeout)

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	model := modelName(cfg)
	engine := refine.New(client, refine.Config{
		MaxIterations: cfg.RefineMaxIterations,
		Temperature:   refine.DefaultConfig().Temperature,
	})

	runID := uuid.NewString()
	slog.Info("Starting evaluation", "run_id", runID, "model", model, "tasks", len(tasks))

	report, err := eval.NewRunner(engine, runner, repo, model).Run(ctx, runID, tasks)
	if err != nil {
		slog.Error("Evaluation aborted", "error", err)
		os.Exit(1)
	}

	if err := eval.WriteReport(report, *reportPath); err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
	slog.Info("Report written", "path", *reportPath, "run_id", runID)

	printSummary(report)
}

func modelName(cfg *config.Config) string {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return cfg.OpenAIModel
	case config.ProviderDemo:
		return "demo"
	default:
		return cfg.OllamaModel
	}
}

func printSummary(report *domain.Report) {
	ids := make([]string, 0, len(report.Results))
	for id := range report.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("run %s (model %s)\n", report.RunID, report.Model)
	for _, id := range ids {
		res := report.Results[id]
		fmt.Printf("  %-20s %-14s baseline=%.3f refined=%.3f", id, res.TaskType, res.BaselineScore, res.RefinedScore)
		if res.Detail != "" {
			fmt.Printf("  (%s)", res.Detail)
		}
		fmt.Println()
	}
}
