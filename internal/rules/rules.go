// Package rules contains the per-course admission checks that decide
// whether a course clears the transfer floor.
package rules

import "github.com/kestrelhq/articulate/internal/model"

// Result carries the outcome of running one check against a course.
type Result struct {
	Reasons     []string
	NeedsReview bool
}

// Check evaluates one admission rule against a course.
type Check interface {
	Name() string
	Evaluate(course model.Course) Result
}

// Pipeline runs a fixed, ordered list of checks and collects every
// rejection reason in check order. Reasons are not deduplicated.
type Pipeline struct {
	checks []Check
}

// NewPipeline creates a pipeline that runs the given checks in order.
func NewPipeline(checks ...Check) *Pipeline {
	return &Pipeline{checks: checks}
}

// Evaluate runs every check and merges their results.
func (p *Pipeline) Evaluate(course model.Course) Result {
	var merged Result
	for _, check := range p.checks {
		result := check.Evaluate(course)
		merged.Reasons = append(merged.Reasons, result.Reasons...)
		if result.NeedsReview {
			merged.NeedsReview = true
		}
	}
	return merged
}
