// Package transcript parses normalized transcript documents produced by
// the upstream extraction layer.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kestrelhq/articulate/internal/common"
	"github.com/kestrelhq/articulate/internal/model"
)

// Parser implements transcript document parsing.
type Parser struct{}

// NewParser creates a new transcript parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses a normalized transcript JSON document. Records with
// neither a course code nor a course name are not courses; they are
// dropped with a warning rather than counted.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*model.Transcript, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var transcript model.Transcript
	if err := json.Unmarshal(content, &transcript); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTranscript, err)
	}

	p.normalizeInstitution(&transcript.Institution)

	courses := make([]model.Course, 0, len(transcript.Courses))
	var dropped int
	for _, course := range transcript.Courses {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		normalizeCourse(&course)

		if !course.HasIdentity() {
			dropped++
			slog.Warn("discarding record with no course identity",
				"grade", course.Grade,
				"credits", course.Credits)
			continue
		}

		courses = append(courses, course)
	}
	transcript.Courses = courses

	slog.Info("parsed transcript",
		"institution", transcript.Institution.Name,
		"credit_system", transcript.Institution.CreditSystem,
		"courses", len(courses),
		"dropped", dropped)

	return &transcript, nil
}

// normalizeInstitution trims fields and defaults the credit system.
func (p *Parser) normalizeInstitution(inst *model.Institution) {
	inst.Name = strings.TrimSpace(inst.Name)

	system := model.CreditSystem(strings.ToLower(strings.TrimSpace(string(inst.CreditSystem))))
	switch system {
	case model.CreditSystemSemester, model.CreditSystemQuarter:
		inst.CreditSystem = system
	default:
		inst.CreditSystem = model.CreditSystemSemester
	}
}

func normalizeCourse(course *model.Course) {
	course.CourseCode = strings.TrimSpace(course.CourseCode)
	course.CourseName = strings.TrimSpace(course.CourseName)
	course.Grade = strings.TrimSpace(course.Grade)
	course.Status = strings.TrimSpace(course.Status)
	course.Term = strings.TrimSpace(course.Term)
	course.Year = strings.TrimSpace(course.Year)
	course.SourceInstitution = strings.TrimSpace(course.SourceInstitution)

	if course.Credits < 0 {
		course.Credits = 0
	}
}
