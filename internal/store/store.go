// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/refine-labs/internal/domain"
)

// Repository persists evaluation runs and their per-task results.
type Repository interface {
	// CreateRun registers a new evaluation run.
	CreateRun(ctx context.Context, runID, model string) error

	// SaveResult stores one task result for a run. Saving the same
	// run/task pair twice overwrites the earlier row.
	SaveResult(ctx context.Context, runID string, res domain.EvalResult) error

	// GetReport reassembles the report for a run.
	GetReport(ctx context.Context, runID string) (*domain.Report, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
