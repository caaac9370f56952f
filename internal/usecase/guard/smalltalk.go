// Package guard implements the deterministic checks that can resolve a
// question without retrieval or a model call: smalltalk, missing geometry,
// needs-input follow-ups, and absent definitions.
package guard

import (
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

const smalltalkMaxWords = 4

// Domain keywords suppress smalltalk even for short messages ("hi property").
var domainKeywords = []string{
	"property", "highway", "plot", "boundary", "elevation",
	"planning", "development", "wall", "window", "door",
	"json", "layer",
}

// Greeting/pleasantry phrases, matched after normalization and trailing
// punctuation stripping.
var smalltalkPhrases = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hey there": {}, "hi there": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"morning": {}, "afternoon": {}, "evening": {}, "good day": {},
	"thanks": {}, "thank you": {}, "thx": {},
	"how are you": {}, "how are you doing": {}, "how's it going": {},
	"how do you do": {}, "greetings": {}, "howdy": {},
}

const (
	smalltalkGreetingReply = "Hi! I can help with planning regulations and your current drawing. " +
		"What would you like to check?"
	smalltalkThanksReply = "You're welcome! Let me know if there's anything else to check " +
		"against the regulations or your drawing."
)

// Smalltalk fires only for short greetings/pleasantries with no domain
// keyword. The reply depends on whether the message was a thanks.
func Smalltalk(question string) domain.GuardResult {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return domain.GuardResult{Kind: domain.GuardNone}
	}
	if len(strings.Fields(normalized)) > smalltalkMaxWords {
		return domain.GuardResult{Kind: domain.GuardNone}
	}
	for _, kw := range domainKeywords {
		if strings.Contains(normalized, kw) {
			return domain.GuardResult{Kind: domain.GuardNone}
		}
	}
	phrase := strings.TrimSpace(strings.TrimRight(normalized, ".,!?;:"))
	if _, ok := smalltalkPhrases[phrase]; !ok {
		return domain.GuardResult{Kind: domain.GuardNone}
	}

	reply := smalltalkGreetingReply
	if strings.HasPrefix(phrase, "thank") || phrase == "thx" {
		reply = smalltalkThanksReply
	}
	return domain.GuardResult{Kind: domain.GuardSmalltalk, Answer: reply}
}
