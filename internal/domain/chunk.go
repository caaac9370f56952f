package domain

import "math"

// RetrievedChunk is one similarity-search hit. Immutable once retrieved.
type RetrievedChunk struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Page    string `json:"page,omitempty"`
	Section string `json:"section,omitempty"`
	Text    string `json:"text"`
	// Distance is the similarity cost (lower = more relevant). Nil means the
	// backend did not report one.
	Distance *float64 `json:"distance,omitempty"`
}

// DistanceOrInf returns the chunk distance, treating a missing distance as
// +Inf so it sorts last and fails any finite cutoff.
func (c RetrievedChunk) DistanceOrInf() float64 {
	if c.Distance == nil {
		return math.Inf(1)
	}
	return *c.Distance
}
