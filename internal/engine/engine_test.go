package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelhq/articulate/internal/model"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CurrentDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func semesterInstitution() model.Institution {
	return model.Institution{Name: "State University", CreditSystem: model.CreditSystemSemester}
}

func TestEvaluateCourse_PassingCourse(t *testing.T) {
	evaluator := New(testConfig(), nil)

	course := model.Course{
		CourseCode: "ENG101",
		CourseName: "Composition I",
		Credits:    3,
		Grade:      "B+",
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")

	assert.True(t, eval.Transferable)
	assert.Empty(t, eval.RejectionReasons)
	assert.False(t, eval.NeedsReview)
	assert.Equal(t, 3.0, eval.AdjustedCredits)
}

func TestEvaluateCourse_IntroductoryCourse(t *testing.T) {
	evaluator := New(testConfig(), nil)

	// A passing grade does not save a sub-100 course.
	course := model.Course{
		CourseCode: "MATH099",
		CourseName: "Algebra Basics",
		Credits:    3,
		Grade:      "A",
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")

	assert.False(t, eval.Transferable)
	require.Len(t, eval.RejectionReasons, 1)
	assert.Contains(t, eval.RejectionReasons[0], "introductory")
}

func TestEvaluateCourse_GradeBelowFloor(t *testing.T) {
	evaluator := New(testConfig(), nil)

	course := model.Course{
		CourseCode: "HIST201",
		CourseName: "World History",
		Credits:    3,
		Grade:      "D",
		Term:       "Fall",
		Year:       "2023",
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")

	assert.False(t, eval.Transferable)
	require.Len(t, eval.RejectionReasons, 1)
	assert.Contains(t, eval.RejectionReasons[0], "grade")
}

func TestEvaluateCourse_LowConfidenceShortCircuits(t *testing.T) {
	evaluator := New(testConfig(), nil)

	// Missing grade plus a digitless code drags confidence far below
	// the threshold. The empty grade would also fail the floor rule,
	// but the confidence gate must stop before it runs.
	course := model.Course{
		CourseCode: "SEMINAR",
		CourseName: "Guest Lecture Series",
		Credits:    3,
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")

	assert.True(t, eval.NeedsReview)
	assert.False(t, eval.Transferable)
	require.Len(t, eval.RejectionReasons, 1)
	assert.Contains(t, eval.RejectionReasons[0], "low confidence score")
	assert.NotContains(t, eval.RejectionReasons[0], "grade or status")
}

func TestEvaluateCourse_ActiveStatusAdmitted(t *testing.T) {
	evaluator := New(testConfig(), nil)

	course := model.Course{
		CourseCode: "BIO210",
		CourseName: "Genetics",
		Credits:    4,
		Grade:      "A",
		Status:     "Active",
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")
	assert.True(t, eval.Transferable)
}

func TestEvaluateCourse_CreditAge(t *testing.T) {
	evaluator := New(testConfig(), nil)

	t.Run("old credits rejected", func(t *testing.T) {
		course := model.Course{
			CourseCode: "CHEM110",
			CourseName: "General Chemistry",
			Credits:    4,
			Grade:      "B",
			Term:       "Fall",
			Year:       "2010",
		}
		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")
		assert.False(t, eval.Transferable)
		require.Len(t, eval.RejectionReasons, 1)
		assert.Contains(t, eval.RejectionReasons[0], "age limit")
	})

	t.Run("missing year is not rejected", func(t *testing.T) {
		course := model.Course{
			CourseCode: "CHEM110",
			CourseName: "General Chemistry",
			Credits:    4,
			Grade:      "B",
		}
		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")
		assert.True(t, eval.Transferable)
	})
}

func TestEvaluateCourse_StrictGrades(t *testing.T) {
	cfg := testConfig()
	cfg.StrictGrades = true
	evaluator := New(cfg, nil)

	course := model.Course{
		CourseCode: "ART150",
		CourseName: "Studio Art",
		Credits:    3,
		Grade:      "EXCELLENT",
		Term:       "Spring",
		Year:       "2024",
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")

	assert.True(t, eval.NeedsReview)
	assert.False(t, eval.Transferable)
	require.Len(t, eval.RejectionReasons, 1)
	assert.Contains(t, eval.RejectionReasons[0], "non-standard grade")
}

func TestEvaluateCourse_TransferableMatchesReasons(t *testing.T) {
	evaluator := New(testConfig(), nil)

	courses := []model.Course{
		{CourseCode: "ENG101", CourseName: "Composition I", Credits: 3, Grade: "B+"},
		{CourseCode: "MATH099", CourseName: "Algebra Basics", Credits: 3, Grade: "A"},
		{CourseCode: "HIST201", CourseName: "World History", Credits: 3, Grade: "D", Term: "Fall", Year: "2023"},
		{CourseCode: "PHIL200", CourseName: "Ethics", Credits: 3, Grade: "W", Term: "Fall", Year: "2023"},
	}

	for _, course := range courses {
		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")
		assert.Equal(t, len(eval.RejectionReasons) == 0, eval.Transferable,
			"course %s: transferable must match empty reasons", course.CourseCode)
	}
}

func TestEvaluateCourse_PolicyVerification(t *testing.T) {
	policy := "Courses with a grade of C- or better transfer."

	t.Run("positive verdict overrides rule rejection", func(t *testing.T) {
		verifier := NewMockVerifier()
		verifier.SetVerdict("HIST201", model.PolicyVerification{
			PolicyVerified:  true,
			IsTransferable:  true,
			ConfidenceScore: 0.9,
		})
		evaluator := New(testConfig(), verifier)

		course := model.Course{
			CourseCode: "HIST201",
			CourseName: "World History",
			Credits:    3,
			Grade:      "D",
			Term:       "Fall",
			Year:       "2023",
		}

		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), policy)

		assert.True(t, eval.Transferable)
		assert.Empty(t, eval.RejectionReasons)
		require.NotNil(t, eval.PolicyVerification)
		assert.True(t, eval.PolicyVerification.IsTransferable)
	})

	t.Run("negative verdict adds rejection reason", func(t *testing.T) {
		verifier := NewMockVerifier()
		verifier.SetVerdict("ENG101", model.PolicyVerification{
			PolicyVerified:  true,
			IsTransferable:  false,
			ConfidenceScore: 0.85,
		})
		evaluator := New(testConfig(), verifier)

		course := model.Course{
			CourseCode: "ENG101",
			CourseName: "Composition I",
			Credits:    3,
			Grade:      "B+",
		}

		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), policy)

		assert.False(t, eval.Transferable)
		assert.Contains(t, eval.RejectionReasons, ReasonFailedPolicyVerification)
	})

	t.Run("verifier failure leaves outcome unchanged", func(t *testing.T) {
		verifier := NewMockVerifier()
		verifier.SetError("ENG101", fmt.Errorf("api unreachable"))
		evaluator := New(testConfig(), verifier)

		course := model.Course{
			CourseCode: "ENG101",
			CourseName: "Composition I",
			Credits:    3,
			Grade:      "B+",
		}

		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), policy)

		assert.True(t, eval.Transferable)
		assert.Empty(t, eval.RejectionReasons)
		assert.Nil(t, eval.PolicyVerification)
		assert.Contains(t, eval.VerifierError, "api unreachable")
	})

	t.Run("low confidence courses skip the verifier", func(t *testing.T) {
		verifier := NewMockVerifier()
		evaluator := New(testConfig(), verifier)

		course := model.Course{
			CourseCode: "SEMINAR",
			CourseName: "Guest Lecture Series",
			Credits:    3,
		}

		eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), policy)

		assert.True(t, eval.NeedsReview)
		assert.Equal(t, 0, verifier.CallCount())
	})

	t.Run("no policy text skips the verifier", func(t *testing.T) {
		verifier := NewMockVerifier()
		evaluator := New(testConfig(), verifier)

		course := model.Course{
			CourseCode: "ENG101",
			CourseName: "Composition I",
			Credits:    3,
			Grade:      "B+",
		}

		evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")
		assert.Equal(t, 0, verifier.CallCount())
	})
}

func TestEvaluateTranscript_Summary(t *testing.T) {
	evaluator := New(testConfig(), nil)

	transcript := model.Transcript{
		Institution: semesterInstitution(),
		Courses: []model.Course{
			{CourseCode: "ENG101", CourseName: "Composition I", Credits: 3, Grade: "B+"},
			{CourseCode: "MATH099", CourseName: "Algebra Basics", Credits: 3, Grade: "A"},
			{CourseCode: "SEMINAR", CourseName: "Guest Lecture Series", Credits: 2},
			{CourseCode: "BIO210", CourseName: "Genetics", Credits: 4, Grade: "A-"},
		},
	}

	run, err := evaluator.EvaluateTranscript(context.Background(), transcript, "")
	require.NoError(t, err)
	require.Len(t, run.Courses, 4)

	assert.Equal(t, semesterInstitution(), run.Institution)
	assert.Equal(t, 12.0, run.Summary.TotalCredits)
	assert.Equal(t, 7.0, run.Summary.TotalTransferableCredits)
	assert.Equal(t, 3.0, run.Summary.TotalRejectedCredits)
	assert.Equal(t, 2.0, run.Summary.LowConfidenceCredits)
	assert.Equal(t, 2, run.Summary.TransferableCourses)
	assert.Equal(t, 1, run.Summary.RejectedCourses)
	assert.Equal(t, 1, run.Summary.LowConfidenceCourses)
}

func TestEvaluateTranscript_PreservesInputOrder(t *testing.T) {
	evaluator := New(testConfig(), nil)

	var courses []model.Course
	for i := 0; i < 25; i++ {
		courses = append(courses, model.Course{
			CourseCode: fmt.Sprintf("GEN%d", 100+i),
			CourseName: fmt.Sprintf("General Studies %d", i),
			Credits:    3,
			Grade:      "B",
		})
	}

	run, err := evaluator.EvaluateTranscript(context.Background(), model.Transcript{
		Institution: semesterInstitution(),
		Courses:     courses,
	}, "")
	require.NoError(t, err)

	for i, eval := range run.Courses {
		assert.Equal(t, courses[i].CourseCode, eval.Course.CourseCode)
	}
}

func TestEvaluateTranscript_QuarterConversion(t *testing.T) {
	evaluator := New(testConfig(), nil)

	transcript := model.Transcript{
		Institution: model.Institution{Name: "Quarter College", CreditSystem: model.CreditSystemQuarter},
		Courses: []model.Course{
			{CourseCode: "ENG101", CourseName: "Composition I", Credits: 4.5, Grade: "B+"},
		},
	}

	run, err := evaluator.EvaluateTranscript(context.Background(), transcript, "")
	require.NoError(t, err)

	assert.Equal(t, 3.0, run.Courses[0].AdjustedCredits)
	assert.Equal(t, 3.0, run.Summary.TotalTransferableCredits)
}

func TestEvaluateTranscript_CreditCap(t *testing.T) {
	makeTranscript := func() model.Transcript {
		var courses []model.Course
		for i := 0; i < 30; i++ {
			courses = append(courses, model.Course{
				CourseCode: fmt.Sprintf("GEN%d", 100+i),
				CourseName: fmt.Sprintf("General Studies %d", i),
				Credits:    4,
				Grade:      "A",
			})
		}
		return model.Transcript{Institution: semesterInstitution(), Courses: courses}
	}

	t.Run("default truncates silently", func(t *testing.T) {
		evaluator := New(testConfig(), nil)

		run, err := evaluator.EvaluateTranscript(context.Background(), makeTranscript(), "")
		require.NoError(t, err)

		assert.Equal(t, 90.0, run.Summary.TotalTransferableCredits)
		assert.Equal(t, 0.0, run.Summary.TotalRejectedCredits)
		assert.Equal(t, 30, run.Summary.TransferableCourses)
	})

	t.Run("excess reclassified when configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.CapExcessAsRejected = true
		evaluator := New(cfg, nil)

		run, err := evaluator.EvaluateTranscript(context.Background(), makeTranscript(), "")
		require.NoError(t, err)

		assert.Equal(t, 90.0, run.Summary.TotalTransferableCredits)
		assert.Equal(t, 30.0, run.Summary.TotalRejectedCredits)
	})
}

func TestEvaluateTranscript_Deterministic(t *testing.T) {
	evaluator := New(testConfig(), nil)

	transcript := model.Transcript{
		Institution: semesterInstitution(),
		Courses: []model.Course{
			{CourseCode: "ENG101", CourseName: "Composition I", Credits: 3, Grade: "B+"},
			{CourseCode: "MATH099", CourseName: "Algebra Basics", Credits: 3, Grade: "A"},
			{CourseCode: "HIST201", CourseName: "World History", Credits: 3, Grade: "D", Term: "Fall", Year: "2023"},
			{CourseCode: "SEMINAR", CourseName: "Guest Lecture Series", Credits: 2},
		},
	}

	first, err := evaluator.EvaluateTranscript(context.Background(), transcript, "")
	require.NoError(t, err)
	second, err := evaluator.EvaluateTranscript(context.Background(), transcript, "")
	require.NoError(t, err)

	assert.Equal(t, first.Courses, second.Courses)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestEvaluateTranscript_Progress(t *testing.T) {
	evaluator := New(testConfig(), nil)

	var seen []int
	evaluator.OnProgress = func(completed, total int) {
		assert.Equal(t, 10, total)
		seen = append(seen, completed)
	}

	var courses []model.Course
	for i := 0; i < 10; i++ {
		courses = append(courses, model.Course{
			CourseCode: fmt.Sprintf("GEN%d", 100+i),
			CourseName: "General Studies",
			Credits:    3,
			Grade:      "B",
		})
	}

	_, err := evaluator.EvaluateTranscript(context.Background(), model.Transcript{
		Institution: semesterInstitution(),
		Courses:     courses,
	}, "")
	require.NoError(t, err)

	require.Len(t, seen, 10)
	assert.Equal(t, 10, seen[len(seen)-1])
}

func TestEvaluateTranscript_EmptyTranscript(t *testing.T) {
	evaluator := New(testConfig(), nil)

	run, err := evaluator.EvaluateTranscript(context.Background(), model.Transcript{
		Institution: semesterInstitution(),
	}, "")
	require.NoError(t, err)

	assert.Empty(t, run.Courses)
	assert.Equal(t, 0.0, run.Summary.TotalCredits)
}

func TestEvaluateTranscript_GraduateFloor(t *testing.T) {
	cfg := testConfig()
	cfg.Graduate = true
	evaluator := New(cfg, nil)

	// C+ clears the undergraduate floor but not the graduate one.
	course := model.Course{
		CourseCode: "MGMT520",
		CourseName: "Organizational Behavior",
		Credits:    3,
		Grade:      "C+",
	}

	eval := evaluator.EvaluateCourse(context.Background(), course, semesterInstitution(), "")
	assert.False(t, eval.Transferable)
	require.Len(t, eval.RejectionReasons, 1)
	assert.True(t, strings.Contains(eval.RejectionReasons[0], "grade"))
}
