package llm

import (
	"context"
)

// Client defines the interface for LLM providers.
type Client interface {
	VerifyTransferability(ctx context.Context, prompt string) (VerificationResponse, error)
}

// VerificationResponse contains the LLM's judgment of a course against
// a policy document.
type VerificationResponse struct {
	AdditionalNotes   string
	SupportingClauses []string
	ConfidenceScore   float64
	IsTransferable    bool
}
