package domain

import "unicode/utf8"

// ChunkEvidence points at a retrieved chunk that informed an answer.
type ChunkEvidence struct {
	ChunkID     string `json:"chunk_id"`
	Source      string `json:"source"`
	Page        string `json:"page,omitempty"`
	Section     string `json:"section,omitempty"`
	TextSnippet string `json:"text_snippet"`
}

// ObjectEvidence points at the session layers and object positions used.
type ObjectEvidence struct {
	LayersUsed    []string `json:"layers_used"`
	ObjectIndices []int    `json:"object_indices"`
}

// Evidence is the provenance attached to a generated answer: what actually
// informed it, as opposed to everything that was merely retrieved.
type Evidence struct {
	DocumentChunks []ChunkEvidence `json:"document_chunks"`
	SessionObjects *ObjectEvidence `json:"session_objects,omitempty"`
}

const evidenceSnippetLen = 200

// EvidenceFromChunks builds chunk evidence with bounded text snippets.
func EvidenceFromChunks(chunks []RetrievedChunk) []ChunkEvidence {
	out := make([]ChunkEvidence, 0, len(chunks))
	for _, c := range chunks {
		snippet := c.Text
		if len(snippet) > evidenceSnippetLen {
			// Back off to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := evidenceSnippetLen
			for cut > 0 && !utf8.RuneStart(snippet[cut]) {
				cut--
			}
			snippet = snippet[:cut]
		}
		out = append(out, ChunkEvidence{
			ChunkID:     c.ID,
			Source:      c.Source,
			Page:        c.Page,
			Section:     c.Section,
			TextSnippet: snippet,
		})
	}
	return out
}
