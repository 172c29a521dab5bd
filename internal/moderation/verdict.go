package moderation

import (
	"fmt"
	"strings"

	"microhub/internal/apperr"
)

// Content types accepted by the engine.
const (
	ContentPost    = "post"
	ContentComment = "comment"
	ContentText    = "text"
)

// MaxBatch is the largest number of items a single batch call may carry.
const MaxBatch = 100

// Verdict is the engine's answer for one piece of content.
type Verdict struct {
	Approved          bool     `json:"approved"`
	Flagged           bool     `json:"flagged"`
	FlaggedCategories []string `json:"flaggedCategories"`
	Details           *Result  `json:"details,omitempty"`
}

// Result is the provider's raw classification, kept for auditing.
type Result struct {
	ID                string             `json:"id"`
	Model             string             `json:"model"`
	Flagged           bool               `json:"flagged"`
	Categories        map[string]bool    `json:"categories"`
	CategoryScores    map[string]float64 `json:"categoryScores"`
	Approved          bool               `json:"approved"`
	FlaggedCategories []string           `json:"flaggedCategories"`
}

// category maps our name to the provider's key. Order is the order flagged
// categories are reported in.
var categories = []struct {
	name     string
	provider string
}{
	{"sexual", "sexual"},
	{"hate", "hate"},
	{"harassment", "harassment"},
	{"selfHarm", "self-harm"},
	{"sexualMinors", "sexual/minors"},
	{"hateThreatening", "hate/threatening"},
	{"violenceGraphic", "violence/graphic"},
	{"selfHarmIntent", "self-harm/intent"},
	{"selfHarmInstructions", "self-harm/instructions"},
	{"harassmentThreatening", "harassment/threatening"},
	{"violence", "violence"},
}

func normalizeContentType(ct string) string {
	switch ct {
	case ContentPost, ContentComment, ContentText:
		return ct
	default:
		return ContentText
	}
}

// ValidateBatch rejects a batch before any network call is made.
func ValidateBatch(contents []string) error {
	if len(contents) > MaxBatch {
		return apperr.Validation(fmt.Sprintf("Batch size cannot exceed %d items", MaxBatch))
	}
	for i, c := range contents {
		if strings.TrimSpace(c) == "" {
			return apperr.ValidationAt(i, fmt.Sprintf("Content at index %d must be a non-empty string", i))
		}
	}
	return nil
}
