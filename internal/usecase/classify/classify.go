// Package classify routes a question to an answering mode using keyword
// rules only; no model call and no session content involved.
package classify

import (
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// Phrases that open a definition-style question (matched against the
// normalized question prefix).
var definitionPrefixes = []string{
	"what is ",
	"define ",
	"definition of ",
	"meaning of ",
	"what does ",
	"what is considered a ",
	"what is considered an ",
	"how is ",
	"how are ",
}

// Definition intent can also appear mid-question ("what does X mean").
var definitionPatterns = []string{" mean", " defined", " definition"}

// Drawing/geometry intent keywords suppress the definition route.
// "elevation" is deliberately absent so "Define principal elevation" stays
// doc-only (it is a regulatory term).
var drawingIntentKeywords = []string{
	"property", "plot", "boundary", "front", "fronts",
	"distance", "angle", "coordinates", "door", "window", "wall", "layer",
	"json", "drawing", "comply", "allowed", "extension",
}

// Count/list phrasing routes to session-only answering.
var countPrefixes = []string{
	"how many ",
	"count ",
	"list the ",
	"list all ",
	"enumerate ",
}

// Mode derives the query mode from the question text. Definition check runs
// strictly before the count check; empty or whitespace input is hybrid.
func Mode(question string) domain.QueryMode {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return domain.ModeHybrid
	}

	definition := isDefinitionOnly(normalized)
	if definition {
		return domain.ModeDocOnly
	}
	if isCountOrList(normalized) {
		return domain.ModeJSONOnly
	}
	return domain.ModeHybrid
}

// isDefinitionOnly reports a purely regulatory definition request, e.g.
// "What is a highway?". Never true when the question implies drawing intent,
// e.g. "Does this property front a highway?".
func isDefinitionOnly(normalized string) bool {
	for _, kw := range drawingIntentKeywords {
		if strings.Contains(normalized, kw) {
			return false
		}
	}
	for _, prefix := range definitionPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	for _, pattern := range definitionPatterns {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}

func isCountOrList(normalized string) bool {
	for _, prefix := range countPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
