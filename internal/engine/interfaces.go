package engine

import (
	"context"

	"github.com/kestrelhq/articulate/internal/model"
)

// PolicyVerifier judges a single course against free-text institutional
// policy prose. Implementations are expected to be safe for concurrent
// use; the evaluator calls Verify from multiple workers.
type PolicyVerifier interface {
	Verify(ctx context.Context, course model.Course, policyText string) (model.PolicyVerification, error)
}
