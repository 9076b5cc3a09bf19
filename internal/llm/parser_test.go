package llm

import (
	"testing"
)

func TestParseVerification_JSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    VerificationResponse
		wantErr bool
	}{
		{
			name:  "plain json verdict",
			input: `{"is_transferable": true, "confidence_score": 0.92, "supporting_clauses": ["Courses completed with a grade of C- or better transfer."], "additional_notes": "Standard composition course."}`,
			want: VerificationResponse{
				IsTransferable:    true,
				ConfidenceScore:   0.92,
				SupportingClauses: []string{"Courses completed with a grade of C- or better transfer."},
				AdditionalNotes:   "Standard composition course.",
			},
		},
		{
			name: "json wrapped in markdown fence",
			input: "```json\n" +
				`{"is_transferable": false, "confidence_score": 0.8, "supporting_clauses": [], "additional_notes": "Remedial coursework excluded."}` +
				"\n```",
			want: VerificationResponse{
				IsTransferable:  false,
				ConfidenceScore: 0.8,
				AdditionalNotes: "Remedial coursework excluded.",
			},
		},
		{
			name: "json wrapped in bare fence",
			input: "```\n" +
				`{"is_transferable": true, "confidence_score": 0.6}` +
				"\n```",
			want: VerificationResponse{
				IsTransferable:  true,
				ConfidenceScore: 0.6,
			},
		},
		{
			name:  "confidence above one is clamped",
			input: `{"is_transferable": true, "confidence_score": 92}`,
			want: VerificationResponse{
				IsTransferable:  true,
				ConfidenceScore: 1.0,
			},
		},
		{
			name:    "garbage input",
			input:   "I cannot determine transferability for this course.",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerification(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerification() error = %v", err)
			}
			if got.IsTransferable != tt.want.IsTransferable {
				t.Errorf("IsTransferable = %v, want %v", got.IsTransferable, tt.want.IsTransferable)
			}
			if got.ConfidenceScore != tt.want.ConfidenceScore {
				t.Errorf("ConfidenceScore = %v, want %v", got.ConfidenceScore, tt.want.ConfidenceScore)
			}
			if len(got.SupportingClauses) != len(tt.want.SupportingClauses) {
				t.Errorf("SupportingClauses = %v, want %v", got.SupportingClauses, tt.want.SupportingClauses)
			}
			if got.AdditionalNotes != tt.want.AdditionalNotes {
				t.Errorf("AdditionalNotes = %q, want %q", got.AdditionalNotes, tt.want.AdditionalNotes)
			}
		})
	}
}

func TestParseVerification_LineFallback(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    VerificationResponse
		wantErr bool
	}{
		{
			name: "full line format",
			input: `TRANSFERABLE: yes
CONFIDENCE: 0.85
CLAUSE: A minimum grade of C- is required for transfer credit.
CLAUSE: Courses must be completed at a regionally accredited institution.
NOTES: Meets both requirements.`,
			want: VerificationResponse{
				IsTransferable:  true,
				ConfidenceScore: 0.85,
				SupportingClauses: []string{
					"A minimum grade of C- is required for transfer credit.",
					"Courses must be completed at a regionally accredited institution.",
				},
				AdditionalNotes: "Meets both requirements.",
			},
		},
		{
			name: "negative verdict with percentage confidence",
			input: `TRANSFERABLE: no
CONFIDENCE: 90%`,
			want: VerificationResponse{
				IsTransferable:  false,
				ConfidenceScore: 0.9,
			},
		},
		{
			name: "verdict only",
			input: `TRANSFERABLE: true
some trailing commentary the model added`,
			want: VerificationResponse{
				IsTransferable: true,
			},
		},
		{
			name:    "no verdict line",
			input:   "CONFIDENCE: 0.5\nNOTES: unclear",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerification(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerification() error = %v", err)
			}
			if got.IsTransferable != tt.want.IsTransferable {
				t.Errorf("IsTransferable = %v, want %v", got.IsTransferable, tt.want.IsTransferable)
			}
			if got.ConfidenceScore != tt.want.ConfidenceScore {
				t.Errorf("ConfidenceScore = %v, want %v", got.ConfidenceScore, tt.want.ConfidenceScore)
			}
			if len(got.SupportingClauses) != len(tt.want.SupportingClauses) {
				t.Errorf("SupportingClauses = %v, want %v", got.SupportingClauses, tt.want.SupportingClauses)
			}
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no fence", input: `{"a": 1}`, want: `{"a": 1}`},
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "surrounding whitespace", input: "  \n```json\n{\"a\": 1}\n```\n  ", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanMarkdownWrapper(tt.input); got != tt.want {
				t.Errorf("cleanMarkdownWrapper() = %q, want %q", got, tt.want)
			}
		})
	}
}
