// Package engine implements the core transfer credit evaluator that
// decides, per course and in aggregate, what transfers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kestrelhq/articulate/internal/confidence"
	"github.com/kestrelhq/articulate/internal/model"
	"github.com/kestrelhq/articulate/internal/rules"
)

// ReasonFailedPolicyVerification is appended when the policy verifier
// says a course does not transfer.
const ReasonFailedPolicyVerification = "failed policy verification"

// Evaluator orchestrates scoring, rule checks, and optional policy
// verification for every course in a transcript.
type Evaluator struct {
	scorer   *confidence.Scorer
	pipeline *rules.Pipeline
	verifier PolicyVerifier
	config   Config

	// OnProgress, when set, is called after each course finishes.
	// Calls are serialized.
	OnProgress func(completed, total int)
}

// New creates an evaluator. verifier may be nil when no policy document
// is in play.
func New(config Config, verifier PolicyVerifier) *Evaluator {
	pipeline := rules.NewPipeline(
		&rules.GradeFloorCheck{MinGrade: config.MinGrade(), Strict: config.StrictGrades},
		&rules.CourseLevelCheck{},
		&rules.CreditAgeCheck{CurrentDate: config.CurrentDate, LimitYears: config.CreditAgeLimitYears},
	)

	return &Evaluator{
		scorer:   confidence.NewScorer(),
		pipeline: pipeline,
		verifier: verifier,
		config:   config,
	}
}

// EvaluateCourse runs one course through the full decision sequence:
// confidence gate, rule checks, then the optional policy verifier.
func (e *Evaluator) EvaluateCourse(ctx context.Context, course model.Course, inst model.Institution, policyText string) model.CourseEvaluation {
	eval := model.CourseEvaluation{
		Course:          course,
		AdjustedCredits: course.AdjustedCredits(inst.CreditSystem),
	}

	eval.Confidence = e.scorer.ScoreCourse(course, inst)

	// Low-confidence extractions go to manual review before any policy
	// rules run; the confidence failure is the only reason recorded.
	if eval.Confidence.Total < e.config.MinConfidenceThreshold {
		eval.NeedsReview = true
		eval.RejectionReasons = []string{
			fmt.Sprintf("low confidence score (%.2f%%)", eval.Confidence.Total),
		}
		eval.Transferable = false
		return eval
	}

	result := e.pipeline.Evaluate(course)
	eval.RejectionReasons = result.Reasons
	eval.NeedsReview = result.NeedsReview

	if e.verifier != nil && policyText != "" {
		e.applyPolicyVerification(ctx, &eval, policyText)
	}

	eval.Transferable = len(eval.RejectionReasons) == 0
	return eval
}

// applyPolicyVerification merges the verifier's opinion into the
// evaluation. A verified positive verdict overrides the rule outcome;
// a verified negative verdict adds a rejection reason. Verifier
// failures are recorded as diagnostics and never change the outcome.
func (e *Evaluator) applyPolicyVerification(ctx context.Context, eval *model.CourseEvaluation, policyText string) {
	verification, err := e.verifier.Verify(ctx, eval.Course, policyText)
	if err != nil {
		slog.Warn("policy verification failed, keeping rule outcome",
			"course_code", eval.Course.CourseCode,
			"error", err)
		eval.VerifierError = err.Error()
		return
	}

	eval.PolicyVerification = &verification

	if !verification.PolicyVerified {
		return
	}

	if verification.IsTransferable {
		eval.RejectionReasons = nil
		eval.NeedsReview = false
	} else {
		eval.RejectionReasons = append(eval.RejectionReasons, ReasonFailedPolicyVerification)
	}
}

// EvaluateTranscript evaluates every course and aggregates the results.
// Courses are evaluated concurrently by a bounded worker pool; the
// summary is always computed in input order so rounding stays
// deterministic.
func (e *Evaluator) EvaluateTranscript(ctx context.Context, transcript model.Transcript, policyText string) (*model.EvaluationRun, error) {
	courses := transcript.Courses
	evaluations := make([]model.CourseEvaluation, len(courses))

	workers := e.config.Workers
	if workers <= 0 {
		workers = 1
	}

	slog.Info("starting transcript evaluation",
		"institution", transcript.Institution.Name,
		"credit_system", transcript.Institution.CreditSystem,
		"courses", len(courses),
		"workers", workers)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for i, course := range courses {
		wg.Add(1)
		go func(idx int, c model.Course) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			evaluations[idx] = e.EvaluateCourse(ctx, c, transcript.Institution, policyText)

			if e.OnProgress != nil {
				progressMu.Lock()
				completed++
				e.OnProgress(completed, len(courses))
				progressMu.Unlock()
			}
		}(i, course)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("transcript evaluation canceled: %w", err)
	}

	summary := e.summarize(evaluations)

	slog.Info("transcript evaluation complete",
		"transferable_courses", summary.TransferableCourses,
		"rejected_courses", summary.RejectedCourses,
		"low_confidence_courses", summary.LowConfidenceCourses,
		"transferable_credits", summary.TotalTransferableCredits)

	return &model.EvaluationRun{
		Institution: transcript.Institution,
		EvaluatedAt: time.Now(),
		Courses:     evaluations,
		Summary:     summary,
	}, nil
}

// summarize aggregates per-course results in input order. Courses below
// the confidence threshold form their own bucket; everything else is
// either transferable or rejected.
func (e *Evaluator) summarize(evaluations []model.CourseEvaluation) model.TranscriptSummary {
	var summary model.TranscriptSummary
	var transferable float64

	for _, eval := range evaluations {
		credits := eval.AdjustedCredits
		summary.TotalCredits += credits

		switch {
		case eval.Confidence.Total < e.config.MinConfidenceThreshold:
			summary.LowConfidenceCredits += credits
			summary.LowConfidenceCourses++
		case eval.Transferable:
			transferable += credits
			summary.TransferableCourses++
		default:
			summary.TotalRejectedCredits += credits
			summary.RejectedCourses++
		}
	}

	creditCap := e.config.MaxTransferableCredits
	if creditCap > 0 && transferable > creditCap {
		if e.config.CapExcessAsRejected {
			summary.TotalRejectedCredits += transferable - creditCap
		}
		transferable = creditCap
	}

	summary.TotalCredits = model.Round2(summary.TotalCredits)
	summary.TotalTransferableCredits = model.Round2(transferable)
	summary.TotalRejectedCredits = model.Round2(summary.TotalRejectedCredits)
	summary.LowConfidenceCredits = model.Round2(summary.LowConfidenceCredits)

	return summary
}
