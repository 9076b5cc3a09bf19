// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/kestrelhq/articulate/internal/model"
)

// RunFilter defines filtering options for evaluation run queries.
type RunFilter struct {
	Institution string
	Limit       int
	Offset      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Evaluation run operations
	SaveRun(ctx context.Context, run *model.EvaluationRun) (int64, error)
	GetRun(ctx context.Context, id int64) (*model.EvaluationRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.EvaluationRun, error)
	DeleteRun(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
