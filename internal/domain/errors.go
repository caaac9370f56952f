package domain

import (
	"errors"
	"strconv"
)

// Sentinel errors mapped to transport status codes in the chi server.
var (
	// ErrInvalidObjects indicates the session object list failed validation.
	ErrInvalidObjects = errors.New("invalid session objects")

	// ErrRetrievalFailed indicates the similarity-search dependency errored.
	// Distinct from an empty result set, which is a legitimate outcome.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrGenerationFailed indicates the language model errored or was unreachable.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationUnconfigured indicates no language model is configured.
	ErrGenerationUnconfigured = errors.New("generation not configured")
)

// FieldError describes a single validation failure on a session object.
type FieldError struct {
	Index int    `json:"index"` // object position in the request list
	Field string `json:"field"`
	Msg   string `json:"message"`
}

// ValidationError aggregates every offending field found during session
// object validation, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return "invalid session objects: 1 field error"
	}
	return "invalid session objects: " + strconv.Itoa(len(e.Fields)) + " field errors"
}

// Unwrap makes errors.Is(err, ErrInvalidObjects) hold.
func (e *ValidationError) Unwrap() error { return ErrInvalidObjects }
