package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelhq/articulate/internal/model"
)

// CreditAgeCheck rejects courses completed too long ago. Records with
// no parseable year pass through untouched; missing context is a data
// quality concern, not a rejection.
type CreditAgeCheck struct {
	CurrentDate time.Time
	LimitYears  int
}

// Name implements Check.
func (c *CreditAgeCheck) Name() string {
	return "credit_age"
}

// Evaluate compares the course's completion year against the age limit.
func (c *CreditAgeCheck) Evaluate(course model.Course) Result {
	if c.LimitYears <= 0 {
		return Result{}
	}

	year, err := strconv.Atoi(strings.TrimSpace(course.Year))
	if err != nil || year <= 0 {
		return Result{}
	}

	age := c.CurrentDate.Year() - year
	if age > c.LimitYears {
		reason := fmt.Sprintf("credits exceed %d-year age limit", c.LimitYears)
		return Result{Reasons: []string{reason}}
	}
	return Result{}
}
