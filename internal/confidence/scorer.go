// Package confidence scores how trustworthy a transcript record is before
// any transfer rules run against it.
package confidence

import (
	"strings"

	"github.com/kestrelhq/articulate/internal/model"
)

// Component weights. They sum to 1.0 so the weighted total maps cleanly
// onto a 0-100 scale.
const (
	weightCourseCode   = 0.25
	weightGrade        = 0.25
	weightCredits      = 0.20
	weightCompleteness = 0.15
	weightConsistency  = 0.15
)

// Recognized standard letter grades.
var standardGrades = map[string]bool{
	"A+": true, "A": true, "A-": true,
	"B+": true, "B": true, "B-": true,
	"C+": true, "C": true, "C-": true,
}

// Pass/fail and transfer markers that carry no GPA signal but are still
// well-formed transcript entries.
var passFailGrades = map[string]bool{
	"S": true, "P": true, "CR": true, "T": true,
}

// Non-passing outcomes. These are legible grades even though the course
// will not transfer.
var nonPassingGrades = map[string]bool{
	"F": true, "W": true, "I": true, "U": true,
}

// Scorer computes per-course confidence scores from transcript data quality.
type Scorer struct{}

// NewScorer creates a confidence scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// ScoreCourse scores a single course against its institution context.
// Component scores are in [0, 1]; Total is the weighted sum on a 0-100
// scale, rounded to two decimals.
func (s *Scorer) ScoreCourse(course model.Course, inst model.Institution) model.ConfidenceScore {
	score := model.ConfidenceScore{
		CourseCode:   s.scoreCourseCode(course),
		Grade:        s.scoreGrade(course),
		Credits:      s.scoreCredits(course, inst),
		Completeness: s.scoreCompleteness(course),
		Consistency:  s.scoreConsistency(course),
	}

	total := score.CourseCode*weightCourseCode +
		score.Grade*weightGrade +
		score.Credits*weightCredits +
		score.Completeness*weightCompleteness +
		score.Consistency*weightConsistency

	score.Total = model.Round2(total * 100)
	return score
}

func (s *Scorer) scoreCourseCode(course model.Course) float64 {
	code := strings.TrimSpace(course.CourseCode)
	if code == "" {
		return 0.0
	}

	level, ok := course.Level()
	if !ok {
		// A code with no digits is unusual but not necessarily wrong.
		return 0.5
	}
	if level >= 1 && level <= 999 {
		return 1.0
	}
	return 0.7
}

func (s *Scorer) scoreGrade(course model.Course) float64 {
	grade := strings.ToUpper(strings.TrimSpace(course.Grade))
	switch {
	case grade == "":
		return 0.0
	case standardGrades[grade]:
		return 1.0
	case nonPassingGrades[grade]:
		return 0.9
	case passFailGrades[grade]:
		return 0.8
	default:
		return 0.3
	}
}

func (s *Scorer) scoreCredits(course model.Course, inst model.Institution) float64 {
	credits := course.Credits
	if credits <= 0 {
		return 0.0
	}

	// Typical per-course ranges depend on the credit system.
	maxTypical := 6.0
	if inst.CreditSystem == model.CreditSystemQuarter {
		maxTypical = 8.0
	}

	switch {
	case credits >= 1 && credits <= maxTypical:
		return 1.0
	case credits < 1:
		return 0.7
	default:
		return 0.8
	}
}

func (s *Scorer) scoreCompleteness(course model.Course) float64 {
	required := []string{course.CourseCode, course.CourseName, course.Grade}
	present := 0
	for _, f := range required {
		if strings.TrimSpace(f) != "" {
			present++
		}
	}
	if course.Credits > 0 {
		present++
	}

	score := 0.8 * float64(present) / 4.0

	// Term and year are optional context worth a small bonus.
	optional := 0
	if strings.TrimSpace(course.Term) != "" {
		optional++
	}
	if strings.TrimSpace(course.Year) != "" {
		optional++
	}
	score += 0.2 * float64(optional) / 2.0

	return score
}

func (s *Scorer) scoreConsistency(course model.Course) float64 {
	score := 1.0
	grade := strings.ToUpper(strings.TrimSpace(course.Grade))

	// Credits earned alongside a withdrawal or incomplete is contradictory.
	if course.Credits > 0 && (grade == "W" || grade == "I") {
		score -= 0.2
	}

	// An introductory course marked as part of the major is suspicious.
	if level, ok := course.Level(); ok && level < 100 && course.IsTransfer {
		score -= 0.1
	}

	// A failing or withdrawn grade on a record flagged for transfer
	// does not add up.
	if (grade == "F" || grade == "W") && course.IsTransfer {
		score -= 0.2
	}

	if score < 0 {
		score = 0
	}
	return score
}
