package main

import (
	"fmt"
	"log/slog"

	"github.com/kestrelhq/articulate/internal/config"
	"github.com/kestrelhq/articulate/internal/engine"
	"github.com/kestrelhq/articulate/internal/llm"
)

// createVerifier builds the policy verifier from configuration. This is
// shared by the commands that consult the written transfer policy.
func createVerifier() (engine.PolicyVerifier, func(), error) {
	cfg, err := config.LoadVerifierConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load verifier config: %w", err)
	}

	verifier, err := llm.NewVerifier(cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create policy verifier: %w", err)
	}

	cleanup := func() {
		if closeErr := verifier.Close(); closeErr != nil {
			slog.Error("Failed to close policy verifier", "error", closeErr)
		}
	}
	return verifier, cleanup, nil
}
