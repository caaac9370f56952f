package guard

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// NoDefinitionMessage is returned for doc-only questions whose term does not
// appear anywhere in the retrieved excerpts. The model is never called.
const NoDefinitionMessage = "No explicit definition was found in the retrieved documents."

const maxTermLength = 80

var (
	reMeantByQuoted = regexp.MustCompile(`(?i)what\s+is\s+meant\s+by\s+['"]([^'"]+)['"]`)
	reMeantBy       = regexp.MustCompile(`(?i)what\s+is\s+meant\s+by\s+([^?,]+?)(?:\s*[?,]|\s*$)`)
	reDefOfArticle  = regexp.MustCompile(`(?i)what\s+is\s+the\s+(?:definition|meaning)\s+of\s+(?:a|an|the)\s+([^?]+?)\s*\??\s*$`)
	reDefOf         = regexp.MustCompile(`(?i)what\s+is\s+the\s+(?:definition|meaning)\s+of\s+([^?]+?)\s*\??\s*$`)
	reWhatIsArticle = regexp.MustCompile(`(?i)what\s+is\s+(?:a|an|the)\s+([^?]+?)\s*\??\s*$`)
	reTermSplit     = regexp.MustCompile(`\s*[?,]\s*`)
)

// ExtractDefinitionTerm pulls the term the user wants defined, e.g.
// "side elevation" from "What is meant by 'side elevation'?". Returns "" when
// no clear term is found, in which case the guard does not apply.
func ExtractDefinitionTerm(question string) string {
	normalized := normalizeTermText(question)
	if normalized == "" {
		return ""
	}

	if m := reMeantByQuoted.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reMeantBy.FindStringSubmatch(normalized); m != nil {
		if term := strings.TrimSpace(m[1]); term != "" && len(term) < maxTermLength {
			return term
		}
	}
	for _, re := range []*regexp.Regexp{reDefOfArticle, reDefOf, reWhatIsArticle} {
		if m := re.FindStringSubmatch(normalized); m != nil {
			if term := strings.TrimSpace(m[1]); term != "" && len(term) < maxTermLength {
				return term
			}
		}
	}
	for _, prefix := range []string{"define ", "definition of ", "meaning of "} {
		if strings.HasPrefix(normalized, prefix) {
			rest := strings.TrimSpace(normalized[len(prefix):])
			if rest == "" {
				continue
			}
			term := strings.TrimSpace(reTermSplit.Split(rest, 2)[0])
			if term != "" && len(term) < maxTermLength {
				return term
			}
		}
	}
	return ""
}

// AbsentDefinition is evaluated just before generation for doc-only mode. If
// a term was extracted and occurs in no retrieved chunk, it short-circuits
// with the fixed no-definition message. With no chunks at all the same
// message applies regardless of term extraction.
func AbsentDefinition(question string, chunks []domain.RetrievedChunk) domain.GuardResult {
	if len(chunks) == 0 {
		return domain.GuardResult{Kind: domain.GuardAbsentDefinition, Answer: NoDefinitionMessage}
	}
	term := ExtractDefinitionTerm(question)
	if term == "" {
		// No clear term: do not block vague questions, let the model answer.
		return domain.GuardResult{Kind: domain.GuardNone}
	}
	if termAppearsInChunks(term, chunks) {
		return domain.GuardResult{Kind: domain.GuardNone}
	}
	return domain.GuardResult{Kind: domain.GuardAbsentDefinition, Answer: NoDefinitionMessage}
}

func termAppearsInChunks(term string, chunks []domain.RetrievedChunk) bool {
	needle := normalizeTermText(term)
	if needle == "" {
		return false
	}
	for _, c := range chunks {
		if strings.Contains(normalizeTermText(c.Text), needle) {
			return true
		}
	}
	return false
}

// normalizeTermText lowercases, trims, and folds typographic quotes and
// hyphen variants so "side-elevation" matches "side elevation".
func normalizeTermText(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	replacer := strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"–", "-", "—", "-",
		"-", " ",
	)
	t = replacer.Replace(t)
	return strings.Join(strings.Fields(t), " ")
}
