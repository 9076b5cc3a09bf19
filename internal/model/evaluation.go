package model

import "time"

// PolicyVerification is the structured opinion returned by the external
// policy verifier for a single course. PolicyVerified is true only when the
// collaborator produced a usable answer; a false value means the opinion
// carries no weight in the evaluation.
type PolicyVerification struct {
	AdditionalNotes   string   `json:"additional_notes,omitempty"`
	SupportingClauses []string `json:"supporting_clauses,omitempty"`
	ConfidenceScore   float64  `json:"confidence_score"`
	IsTransferable    bool     `json:"is_transferable"`
	PolicyVerified    bool     `json:"policy_verified"`
}

// CourseEvaluation is the decision record for one course.
//
// RejectionReasons preserves rule-check order and is not deduplicated.
// Transferable is true exactly when RejectionReasons is empty, except that a
// course short-circuited for low confidence is never transferable.
type CourseEvaluation struct {
	Course              Course              `json:"course"`
	RejectionReasons    []string            `json:"rejection_reasons"`
	PolicyVerification  *PolicyVerification `json:"policy_verification,omitempty"`
	VerifierError       string              `json:"verifier_error,omitempty"`
	Confidence          ConfidenceScore     `json:"confidence"`
	AdjustedCredits     float64             `json:"adjusted_credits"`
	Transferable        bool                `json:"transferable"`
	NeedsReview         bool                `json:"needs_review"`
}

// ConfidenceScore holds the per-category confidence sub-scores (each 0-1)
// and the weighted total on a 0-100 scale, rounded to two decimals.
type ConfidenceScore struct {
	CourseCode   float64 `json:"course_code"`
	Grade        float64 `json:"grade"`
	Credits      float64 `json:"credits"`
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Total        float64 `json:"total"`
}

// TranscriptSummary aggregates the evaluation of an entire transcript.
// All credit totals are in semester-equivalent hours.
type TranscriptSummary struct {
	TotalCredits             float64 `json:"total_credits"`
	TotalTransferableCredits float64 `json:"total_transferable_credits"`
	TotalRejectedCredits     float64 `json:"total_rejected_credits"`
	LowConfidenceCredits     float64 `json:"low_confidence_credits"`
	TransferableCourses      int     `json:"transferable_courses"`
	RejectedCourses          int     `json:"rejected_courses"`
	LowConfidenceCourses     int     `json:"low_confidence_courses"`
}

// EvaluationRun is one persisted evaluation of a transcript.
type EvaluationRun struct {
	EvaluatedAt time.Time          `json:"evaluated_at"`
	Institution Institution        `json:"institution"`
	Courses     []CourseEvaluation `json:"courses"`
	Summary     TranscriptSummary  `json:"summary"`
	ID          int64              `json:"id"`
}
