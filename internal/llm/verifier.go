package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kestrelhq/articulate/internal/common"
	"github.com/kestrelhq/articulate/internal/model"
	"github.com/kestrelhq/articulate/internal/service"
)

// Verifier implements the engine.PolicyVerifier interface using LLM APIs.
type Verifier struct {
	client      Client
	cache       *verificationCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// Config holds configuration for the LLM policy verifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// NewVerifier creates a new LLM-based policy verifier.
func NewVerifier(cfg Config, logger *slog.Logger) (*Verifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Verifier{
		client:      client,
		cache:       newVerificationCache(cfg.CacheTTL),
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// Verify judges a single course against the policy document text.
func (v *Verifier) Verify(ctx context.Context, course model.Course, policyText string) (model.PolicyVerification, error) {
	key := cacheKey(course, policyText)

	if verdict, found := v.cache.get(key); found {
		v.logger.Debug("cache hit for course verification",
			"course_code", course.CourseCode)
		return toPolicyVerification(verdict), nil
	}

	if err := v.rateLimiter.wait(ctx); err != nil {
		return model.PolicyVerification{}, fmt.Errorf("rate limit error: %w", err)
	}

	prompt := v.buildPrompt(course, policyText)

	var verdict VerificationResponse

	err := common.WithRetry(ctx, func() error {
		v.logger.Debug("attempting policy verification",
			"course_code", course.CourseCode)

		response, err := v.client.VerifyTransferability(ctx, prompt)
		if err != nil {
			v.logger.Warn("policy verification attempt failed",
				"error", err,
				"course_code", course.CourseCode)
			return &common.RetryableError{Err: err, Retryable: true}
		}

		verdict = response
		return nil
	}, v.retryOpts)

	if err != nil {
		return model.PolicyVerification{}, fmt.Errorf("policy verification failed: %w", err)
	}

	v.cache.set(key, verdict)

	v.logger.Info("course verified against policy",
		"course_code", course.CourseCode,
		"transferable", verdict.IsTransferable,
		"confidence", verdict.ConfidenceScore)

	return toPolicyVerification(verdict), nil
}

// buildPrompt creates the prompt for checking one course against the
// policy prose.
func (v *Verifier) buildPrompt(course model.Course, policyText string) string {
	courseDetails := fmt.Sprintf("Course Code: %s\nCourse Name: %s\nCredits: %.2f\nGrade: %s",
		course.CourseCode,
		course.CourseName,
		course.Credits,
		course.Grade)

	if course.Term != "" || course.Year != "" {
		courseDetails += fmt.Sprintf("\nTerm: %s %s", course.Term, course.Year)
	}

	if course.SourceInstitution != "" {
		courseDetails += fmt.Sprintf("\nSource Institution: %s", course.SourceInstitution)
	}

	return fmt.Sprintf(`Determine whether this course is transferable under the institutional policy below.

IMPORTANT GUIDELINES:
- Judge only against clauses that actually appear in the policy text
- Quote the supporting clauses verbatim; do not paraphrase them
- If the policy is silent on this kind of course, say so in the notes rather than inventing a rule

Course:
%s

Policy:
%s

Respond with a JSON object in exactly this shape:
{
  "is_transferable": <true|false>,
  "confidence_score": <0.0-1.0>,
  "supporting_clauses": ["<verbatim clause>", ...],
  "additional_notes": "<1-2 sentences of context>"
}`,
		courseDetails,
		policyText)
}

// Close stops background goroutines and cleans up resources.
func (v *Verifier) Close() error {
	if v.cache != nil {
		v.cache.Close()
	}
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
	return nil
}

// cacheKey ties a verdict to one course and one policy document.
func cacheKey(course model.Course, policyText string) string {
	policyDigest := sha256.Sum256([]byte(policyText))
	return fmt.Sprintf("%s:%x", course.GenerateHash(), policyDigest[:8])
}

func toPolicyVerification(verdict VerificationResponse) model.PolicyVerification {
	return model.PolicyVerification{
		PolicyVerified:    true,
		IsTransferable:    verdict.IsTransferable,
		ConfidenceScore:   verdict.ConfidenceScore,
		SupportingClauses: verdict.SupportingClauses,
		AdditionalNotes:   verdict.AdditionalNotes,
	}
}
