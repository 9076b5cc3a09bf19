package engine

import "time"

// Config holds the policy parameters for one evaluation run. It is
// constructed once per run and never mutated afterwards.
type Config struct {
	// CurrentDate anchors credit age calculations. Captured at
	// construction so a long-running evaluation is self-consistent.
	CurrentDate time.Time

	// MinGradeUndergraduate and MinGradeGraduate are letter-grade
	// floors; Graduate selects which one applies.
	MinGradeUndergraduate string
	MinGradeGraduate      string
	Graduate              bool

	// MinConfidenceThreshold routes courses below it to manual review,
	// on a 0-100 scale.
	MinConfidenceThreshold float64

	// CreditAgeLimitYears rejects credits older than this. Zero
	// disables the check.
	CreditAgeLimitYears int

	// MaxMajorTransferPercentage caps how much of a major may be
	// satisfied by transfer work.
	MaxMajorTransferPercentage float64

	// MaxTransferableCredits is the global cap on accepted credits.
	MaxTransferableCredits float64

	// StrictGrades routes unrecognized grade tokens to manual review
	// instead of rejecting them outright.
	StrictGrades bool

	// CapExcessAsRejected reclassifies credits above the cap as
	// rejected instead of silently truncating the total.
	CapExcessAsRejected bool

	// Workers bounds the per-course evaluation pool.
	Workers int
}

// DefaultConfig returns the standard policy parameters.
func DefaultConfig() Config {
	return Config{
		CurrentDate:                time.Now(),
		MinGradeUndergraduate:      "C-",
		MinGradeGraduate:           "B-",
		MinConfidenceThreshold:     80.0,
		CreditAgeLimitYears:        10,
		MaxMajorTransferPercentage: 50.0,
		MaxTransferableCredits:     90.0,
		Workers:                    5,
	}
}

// MinGrade returns the letter-grade floor that applies to this run.
func (c Config) MinGrade() string {
	if c.Graduate {
		return c.MinGradeGraduate
	}
	return c.MinGradeUndergraduate
}
