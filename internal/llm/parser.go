package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelhq/articulate/internal/common"
)

// cleanMarkdownWrapper strips a fenced code block from around a JSON
// payload. Models wrap JSON in ```json fences often enough that every
// provider response goes through this first.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```json")
			content = strings.TrimPrefix(content, "```")
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}

// parseVerification extracts a verification verdict from the LLM
// response. JSON is the expected format; a line-based fallback covers
// models that ignore the formatting instructions.
func parseVerification(content string) (VerificationResponse, error) {
	cleaned := cleanMarkdownWrapper(content)

	var jsonResp struct {
		AdditionalNotes   string   `json:"additional_notes"`
		SupportingClauses []string `json:"supporting_clauses"`
		ConfidenceScore   float64  `json:"confidence_score"`
		IsTransferable    bool     `json:"is_transferable"`
	}

	if err := json.Unmarshal([]byte(cleaned), &jsonResp); err == nil {
		return VerificationResponse{
			IsTransferable:    jsonResp.IsTransferable,
			ConfidenceScore:   clampScore(jsonResp.ConfidenceScore),
			SupportingClauses: jsonResp.SupportingClauses,
			AdditionalNotes:   jsonResp.AdditionalNotes,
		}, nil
	}

	return parseVerificationLines(cleaned)
}

// parseVerificationLines parses the TRANSFERABLE/CONFIDENCE/CLAUSE/NOTES
// line format.
func parseVerificationLines(content string) (VerificationResponse, error) {
	var resp VerificationResponse
	var sawVerdict bool

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "TRANSFERABLE:"):
			value := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "TRANSFERABLE:")))
			resp.IsTransferable = value == "true" || value == "yes"
			sawVerdict = true
		case strings.HasPrefix(line, "CONFIDENCE:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			score, err := strconv.ParseFloat(value, 64)
			if err != nil && strings.HasSuffix(value, "%") {
				percent := strings.TrimSpace(strings.TrimSuffix(value, "%"))
				if percentVal, parseErr := strconv.ParseFloat(percent, 64); parseErr == nil {
					score = percentVal / 100.0
					err = nil
				}
			}
			if err == nil {
				resp.ConfidenceScore = clampScore(score)
			}
		case strings.HasPrefix(line, "CLAUSE:"):
			clause := strings.TrimSpace(strings.TrimPrefix(line, "CLAUSE:"))
			if clause != "" {
				resp.SupportingClauses = append(resp.SupportingClauses, clause)
			}
		case strings.HasPrefix(line, "NOTES:"):
			resp.AdditionalNotes = strings.TrimSpace(strings.TrimPrefix(line, "NOTES:"))
		}
	}

	if !sawVerdict {
		return VerificationResponse{}, fmt.Errorf("%w: no verdict in response", common.ErrVerificationFailed)
	}

	return resp, nil
}

func clampScore(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
