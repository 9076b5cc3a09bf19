// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Transcript errors.
	ErrInvalidTranscript = errors.New("invalid transcript")

	// Verification errors.
	ErrVerificationFailed = errors.New("policy verification failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
