package domain

// GuardKind identifies which deterministic guard resolved a request.
type GuardKind string

const (
	GuardNone             GuardKind = "none"
	GuardSmalltalk        GuardKind = "smalltalk"
	GuardMissingGeometry  GuardKind = "missing_geometry"
	GuardNeedsInput       GuardKind = "needs_input"
	GuardAbsentDefinition GuardKind = "absent_definition"
)

// GuardResult is the outcome of a guard evaluation. A non-none kind
// short-circuits the pipeline with Answer as the final text.
type GuardResult struct {
	Kind GuardKind
	// MissingLayers names the present-but-geometry-less layers for the
	// missing_geometry and needs_input kinds.
	MissingLayers []string
	// Answer is the guard's fixed or templated response.
	Answer string
}

// Triggered reports whether the guard resolved the request.
func (g GuardResult) Triggered() bool { return g.Kind != GuardNone && g.Kind != "" }
