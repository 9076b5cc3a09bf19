// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CreditSystem identifies how an institution counts credit hours.
type CreditSystem string

// Credit system constants.
const (
	CreditSystemSemester CreditSystem = "semester"
	CreditSystemQuarter  CreditSystem = "quarter"
)

// QuarterToSemesterRatio converts quarter credit hours to semester equivalents.
const QuarterToSemesterRatio = 1.5

// Institution represents the school a transcript was issued by.
type Institution struct {
	Name         string       `json:"name"`
	CreditSystem CreditSystem `json:"credit_system"`
}

// Course represents one normalized course row extracted from a transcript.
// Extraction happens upstream; fields may be missing or malformed, which is
// priced into the confidence score rather than treated as an error.
type Course struct {
	CourseCode        string  `json:"course_code"`
	CourseName        string  `json:"course_name"`
	Grade             string  `json:"grade"`
	Status            string  `json:"status,omitempty"`
	Term              string  `json:"term,omitempty"`
	Year              string  `json:"year,omitempty"`
	SourceInstitution string  `json:"source_institution,omitempty"`
	Credits           float64 `json:"credits"`
	IsTransfer        bool    `json:"is_transfer"`
}

var courseNumberRegex = regexp.MustCompile(`\d+`)

// Level extracts the numeric course level from the course code (the first run
// of digits, e.g. 101 from "ENG101"). The second return value is false when
// the code contains no digits.
func (c *Course) Level() (int, bool) {
	match := courseNumberRegex.FindString(c.CourseCode)
	if match == "" {
		return 0, false
	}
	level, err := strconv.Atoi(match)
	if err != nil {
		// Digit runs longer than an int can hold are garbage extractions.
		return 0, false
	}
	return level, true
}

// HasIdentity reports whether the record can be identified as a course at all.
// A record with neither a code nor a name is discarded at the parsing boundary.
func (c *Course) HasIdentity() bool {
	return strings.TrimSpace(c.CourseCode) != "" || strings.TrimSpace(c.CourseName) != ""
}

// AdjustedCredits returns the semester-equivalent credit value for the given
// credit system, rounded to two decimals. Semester credits pass through.
func (c *Course) AdjustedCredits(system CreditSystem) float64 {
	if system == CreditSystemQuarter {
		return Round2(c.Credits / QuarterToSemesterRatio)
	}
	return c.Credits
}

// GenerateHash creates a stable hash identifying this course record,
// used as a cache key for policy verification.
func (c *Course) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%.2f:%s",
		c.CourseCode,
		c.CourseName,
		c.Grade,
		c.Credits,
		c.SourceInstitution)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Transcript bundles everything the evaluator needs for one student:
// the issuing institution and every normalized course row.
type Transcript struct {
	Institution Institution `json:"institution"`
	Courses     []Course    `json:"courses"`
}
