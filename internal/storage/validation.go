package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kestrelhq/articulate/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun  = errors.New("invalid evaluation run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun validates an evaluation run before persisting it.
func validateRun(run *model.EvaluationRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.Institution.Name) == "" {
		return fmt.Errorf("%w: missing institution", ErrInvalidRun)
	}
	if run.EvaluatedAt.IsZero() {
		return fmt.Errorf("%w: missing evaluation time", ErrInvalidRun)
	}
	return nil
}
