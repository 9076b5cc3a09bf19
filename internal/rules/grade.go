package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelhq/articulate/internal/model"
)

// ReasonGradeBelowRequirement is appended when a course fails the grade floor.
const ReasonGradeBelowRequirement = "grade or status below requirement"

// ReasonNonStandardGrade is appended in strict mode for grades that
// cannot be mapped onto the GPA table.
const ReasonNonStandardGrade = "non-standard grade requires manual review"

// minPassingPercent is the floor applied to percentage grades.
const minPassingPercent = 70.0

// gradePoints maps letter grades to their GPA values. Tokens outside
// this table compare as -1.0 and always fail the floor.
var gradePoints = map[string]float64{
	"A+": 4.0, "A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0, "D-": 0.7,
	"F": 0.0,
}

// passIndicators are institutional pass markers that clear the floor
// without carrying a GPA value.
var passIndicators = map[string]bool{
	"P": true, "S": true, "CR": true,
}

// GradeFloorCheck rejects courses whose grade or status falls below the
// configured minimum letter grade.
type GradeFloorCheck struct {
	// MinGrade is the minimum acceptable letter grade, e.g. "C-".
	MinGrade string

	// Strict routes unrecognized grade tokens to manual review instead
	// of plain rejection.
	Strict bool
}

// Name implements Check.
func (c *GradeFloorCheck) Name() string {
	return "grade_floor"
}

// Evaluate applies the floor rules in fixed order. The first rule that
// decides the course wins.
func (c *GradeFloorCheck) Evaluate(course model.Course) Result {
	// In-progress work is never rejected for grade.
	if strings.EqualFold(strings.TrimSpace(course.Status), "active") {
		return Result{}
	}

	grade := strings.TrimSpace(course.Grade)
	if grade == "" {
		return Result{Reasons: []string{ReasonGradeBelowRequirement}}
	}

	normalized := strings.ToUpper(grade)
	normalized = strings.TrimSuffix(normalized, "%")
	normalized = strings.TrimSpace(normalized)

	if passIndicators[normalized] {
		return Result{}
	}

	minValue := gradePoints[strings.ToUpper(strings.TrimSpace(c.MinGrade))]

	// Numeric grades are either GPA values or percentages.
	if value, err := strconv.ParseFloat(normalized, 64); err == nil {
		if value <= 4.0 {
			if value >= minValue {
				return Result{}
			}
		} else if value >= minPassingPercent {
			return Result{}
		}
		return Result{Reasons: []string{ReasonGradeBelowRequirement}}
	}

	courseValue, known := gradePoints[normalized]
	if !known {
		if c.Strict {
			return Result{
				Reasons:     []string{ReasonNonStandardGrade},
				NeedsReview: true,
			}
		}
		courseValue = -1.0
	}

	if courseValue >= minValue {
		return Result{}
	}
	return Result{Reasons: []string{ReasonGradeBelowRequirement}}
}

// GradeValue returns the GPA value for a letter grade and whether the
// grade is in the table.
func GradeValue(grade string) (float64, bool) {
	v, ok := gradePoints[strings.ToUpper(strings.TrimSpace(grade))]
	return v, ok
}

// FormatMinGrade renders the floor for display, e.g. "C- (1.7)".
func FormatMinGrade(grade string) string {
	if v, ok := GradeValue(grade); ok {
		return fmt.Sprintf("%s (%.1f)", strings.ToUpper(strings.TrimSpace(grade)), v)
	}
	return grade
}
