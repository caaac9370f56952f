package domain

// QueryMode selects the answering strategy for a question. Derived
// deterministically from the question text, recomputed per request.
type QueryMode string

const (
	// ModeDocOnly answers from retrieved document excerpts only.
	ModeDocOnly QueryMode = "doc_only"
	// ModeJSONOnly answers from session objects only; retrieval is skipped.
	ModeJSONOnly QueryMode = "json_only"
	// ModeHybrid combines retrieved excerpts with session state. Default.
	ModeHybrid QueryMode = "hybrid"
)
