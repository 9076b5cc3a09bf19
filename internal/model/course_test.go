package model

import "testing"

func TestCourse_Level(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantLevel int
		wantOK    bool
	}{
		{name: "standard code", code: "ENG101", wantLevel: 101, wantOK: true},
		{name: "spaced code", code: "PEB 1138", wantLevel: 1138, wantOK: true},
		{name: "sub-100 course", code: "MATH099", wantLevel: 99, wantOK: true},
		{name: "graduate level", code: "CS500", wantLevel: 500, wantOK: true},
		{name: "no digits", code: "SEMINAR", wantLevel: 0, wantOK: false},
		{name: "empty code", code: "", wantLevel: 0, wantOK: false},
		{name: "digits in middle", code: "BIO2xx-LAB", wantLevel: 2, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := Course{CourseCode: tt.code}
			level, ok := course.Level()
			if ok != tt.wantOK {
				t.Errorf("Level() ok = %v, want %v", ok, tt.wantOK)
			}
			if level != tt.wantLevel {
				t.Errorf("Level() = %d, want %d", level, tt.wantLevel)
			}
		})
	}
}

func TestCourse_HasIdentity(t *testing.T) {
	tests := []struct {
		name   string
		course Course
		want   bool
	}{
		{name: "code only", course: Course{CourseCode: "ENG101"}, want: true},
		{name: "name only", course: Course{CourseName: "Composition I"}, want: true},
		{name: "both", course: Course{CourseCode: "ENG101", CourseName: "Composition I"}, want: true},
		{name: "neither", course: Course{Credits: 3, Grade: "A"}, want: false},
		{name: "whitespace only", course: Course{CourseCode: "  ", CourseName: "\t"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.course.HasIdentity(); got != tt.want {
				t.Errorf("HasIdentity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCourse_AdjustedCredits(t *testing.T) {
	tests := []struct {
		name    string
		system  CreditSystem
		credits float64
		want    float64
	}{
		{name: "semester passthrough", system: CreditSystemSemester, credits: 3, want: 3},
		{name: "quarter conversion", system: CreditSystemQuarter, credits: 4.5, want: 3},
		{name: "quarter rounding", system: CreditSystemQuarter, credits: 4, want: 2.67},
		{name: "quarter zero", system: CreditSystemQuarter, credits: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := Course{Credits: tt.credits}
			if got := course.AdjustedCredits(tt.system); got != tt.want {
				t.Errorf("AdjustedCredits(%s) = %v, want %v", tt.system, got, tt.want)
			}
		})
	}
}

func TestCourse_GenerateHash(t *testing.T) {
	a := Course{CourseCode: "ENG101", CourseName: "Composition I", Grade: "B+", Credits: 3}
	b := Course{CourseCode: "ENG101", CourseName: "Composition I", Grade: "B+", Credits: 3}
	c := Course{CourseCode: "ENG101", CourseName: "Composition I", Grade: "A", Credits: 3}

	if a.GenerateHash() != b.GenerateHash() {
		t.Error("identical courses should produce identical hashes")
	}
	if a.GenerateHash() == c.GenerateHash() {
		t.Error("courses with different grades should produce different hashes")
	}
}
