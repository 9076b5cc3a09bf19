package rules

import "github.com/kestrelhq/articulate/internal/model"

// ReasonIntroductoryCourse is appended when a course sits below the
// collegiate level floor.
const ReasonIntroductoryCourse = "introductory course (course number below 100)"

// minCollegiateLevel is the lowest course number that counts as
// college-level work.
const minCollegiateLevel = 100

// CourseLevelCheck rejects sub-collegiate courses regardless of grade.
type CourseLevelCheck struct{}

// Name implements Check.
func (c *CourseLevelCheck) Name() string {
	return "course_level"
}

// Evaluate rejects courses numbered below 100. A code without digits is
// not rejected here; data quality concerns are the scorer's job.
func (c *CourseLevelCheck) Evaluate(course model.Course) Result {
	level, ok := course.Level()
	if !ok {
		return Result{}
	}
	if level < minCollegiateLevel {
		return Result{Reasons: []string{ReasonIntroductoryCourse}}
	}
	return Result{}
}
