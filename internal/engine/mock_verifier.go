package engine

import (
	"context"
	"sync"

	"github.com/kestrelhq/articulate/internal/model"
)

// MockVerifier is a test implementation of the PolicyVerifier interface.
// It returns scripted verdicts keyed by course code and records every
// call for verification in tests.
type MockVerifier struct {
	verdicts map[string]model.PolicyVerification
	errs     map[string]error
	calls    []MockVerifierCall
	mu       sync.Mutex

	// Default is returned for courses without a scripted verdict.
	Default model.PolicyVerification
}

// MockVerifierCall records details of a verification request.
type MockVerifierCall struct {
	Course     model.Course
	PolicyText string
}

// NewMockVerifier creates a new mock policy verifier. With no scripted
// verdicts it verifies every course as transferable.
func NewMockVerifier() *MockVerifier {
	return &MockVerifier{
		verdicts: make(map[string]model.PolicyVerification),
		errs:     make(map[string]error),
		Default: model.PolicyVerification{
			PolicyVerified:  true,
			IsTransferable:  true,
			ConfidenceScore: 0.9,
		},
	}
}

// SetVerdict scripts the verdict returned for a course code.
func (m *MockVerifier) SetVerdict(courseCode string, verdict model.PolicyVerification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[courseCode] = verdict
}

// SetError scripts a failure for a course code.
func (m *MockVerifier) SetError(courseCode string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[courseCode] = err
}

// Verify returns the scripted verdict for the course, or Default.
func (m *MockVerifier) Verify(_ context.Context, course model.Course, policyText string) (model.PolicyVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockVerifierCall{Course: course, PolicyText: policyText})

	if err, ok := m.errs[course.CourseCode]; ok {
		return model.PolicyVerification{}, err
	}
	if verdict, ok := m.verdicts[course.CourseCode]; ok {
		return verdict, nil
	}
	return m.Default, nil
}

// Calls returns a copy of all recorded calls.
func (m *MockVerifier) Calls() []MockVerifierCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockVerifierCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of times Verify was called.
func (m *MockVerifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
