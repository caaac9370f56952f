package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEvidenceFromChunks_ShortTextUntouched(t *testing.T) {
	out := EvidenceFromChunks([]RetrievedChunk{
		{ID: "c1", Source: "guide.pdf", Text: "short text"},
	})
	if len(out) != 1 || out[0].TextSnippet != "short text" {
		t.Fatalf("unexpected evidence: %+v", out)
	}
}

func TestEvidenceFromChunks_SnippetCutOnRuneBoundary(t *testing.T) {
	// "é" is two bytes and straddles the snippet limit.
	text := strings.Repeat("a", evidenceSnippetLen-1) + "é" + strings.Repeat("b", 50)

	out := EvidenceFromChunks([]RetrievedChunk{{ID: "c1", Text: text}})
	snippet := out[0].TextSnippet

	if !utf8.ValidString(snippet) {
		t.Fatalf("snippet is not valid UTF-8: %q", snippet)
	}
	if want := strings.Repeat("a", evidenceSnippetLen-1); snippet != want {
		t.Fatalf("snippet length %d, want %d bytes of 'a'", len(snippet), len(want))
	}
}
