// Package prompt assembles the mode-specific prompts sent to the language
// model. Single source of truth for the instruction templates.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// SystemPrompt is shared by every answering mode.
const SystemPrompt = `You are a careful assistant that answers user questions by combining:
(1) retrieved excerpts from planning/regulatory documents (persistent knowledge) and
(2) the current session's drawing object list in JSON (ephemeral state).

Rules:

1. Treat the retrieved document excerpts as authoritative. If a relevant rule is missing, say so.

2. Treat the JSON object list as the current ground truth for the drawing. Always use the latest JSON provided.

3. Do NOT invent objects, measurements, or rules.

4. **IMPORTANT**: Always analyze what CAN be determined from available geometry FIRST, even if some information is missing. Use the spatial analysis provided to understand relationships (e.g., property-highway fronting, distances).

5. Provide general rules and information that apply, even when specific details are missing. Be helpful and actionable.

6. If the question requires geometric computation and the JSON is insufficient (missing measurements, units, or reference points), explain what CAN be determined, then what cannot be determined, and what additional data is needed.

7. When you cite regulations, quote short phrases (not long passages). Do NOT include inline document references (e.g. [DocName_016_0032 | p16]) in your answer.

8. Return ONLY your direct answer. No "Evidence:" section, no inline document excerpts.

9. If the user's JSON is malformed or inconsistent, request a corrected JSON and explain what is wrong.

10. If required geometric data is missing (geometry is null / no coordinates), you must say it cannot be determined and must not infer spatial relationships. However, if geometry EXISTS, use it to provide useful analysis.`

// Markers used when a context section is empty.
const (
	noExcerptsMarker   = "No relevant excerpts found."
	noDocumentsMarker  = "No document context (retrieval skipped for this question)."
	emptyObjectsMarker = "[]"
)

// Builder renders user prompts for each query mode.
type Builder struct{}

// New creates a prompt builder.
func New() *Builder { return &Builder{} }

// Build renders the user prompt for the given state. The system prompt is
// always SystemPrompt.
func (b *Builder) Build(state *domain.AnswerState) string {
	switch state.Mode {
	case domain.ModeDocOnly:
		return b.docOnly(state.Question, state.Retrieved)
	case domain.ModeJSONOnly:
		return b.hybrid(state, noDocumentsMarker)
	default:
		return b.hybrid(state, FormatChunks(state.Retrieved))
	}
}

func (b *Builder) docOnly(question string, chunks []domain.RetrievedChunk) string {
	return fmt.Sprintf(`User question:
%s

Retrieved regulatory excerpts (persistent knowledge):
%s

Task:
Answer the question using ONLY the retrieved excerpts above. Do not refer to any drawing or session state unless the user explicitly asks about it.
- Quote short phrases from the excerpts where relevant.
- Do NOT include inline document references (e.g. [DocName_016_0032 | p16]).
Return ONLY your direct answer (no Evidence section, no preamble).`,
		question, FormatChunks(chunks))
}

func (b *Builder) hybrid(state *domain.AnswerState, chunksSection string) string {
	return fmt.Sprintf(`User question:
%s

Session drawing objects (current JSON):
%s

Derived session summary (computed by the system):
- Layer counts: %s
- Plot boundary present: %t
- Highways present: %t
- Known limitations: %s
- Spatial analysis: %s

Retrieved regulatory excerpts (persistent knowledge):
%s

Task:
1. **FIRST**: Analyze what CAN be determined from the available geometry and spatial relationships (use the spatial analysis provided).
2. **SECOND**: Answer the user question using BOTH the retrieved excerpts and the current JSON.
3. **THIRD**: If the answer depends on geometry (e.g., "fronts a highway"), use the spatial analysis and explain your reasoning steps briefly.
4. **FOURTH**: If the rule depends on terms (e.g., "principal elevation", "highway"), prefer definitions in the retrieved excerpts.
5. **IMPORTANT**: Even if some information is missing, provide general rules and explain what CAN be determined from available data. Be helpful and actionable.

Return ONLY your direct answer:
- Start with what CAN be determined from available geometry (e.g., "Based on the coordinates, this property fronts a highway...").
- Then provide general rules from the documents that apply.
- Finally, if information is missing, be specific about what's needed (e.g., "For rear extensions, add a Walls layer with elevation='rear'").
- One or two paragraphs: your direct answer (short, direct).
- Do NOT include any inline document references (e.g. [DocName_016_0032 | p16]).
- If uncertain, state uncertainty and what additional data would resolve it.`,
		state.Question,
		prettyObjects(state.SessionObjects),
		formatLayerCounts(state.Summary.LayerCounts),
		state.Summary.PlotBoundaryPresent,
		state.Summary.HighwaysPresent,
		formatList(state.Summary.Limitations),
		formatSpatial(state.Summary.Spatial),
		chunksSection)
}

// FormatChunk renders one retrieved chunk for the prompt.
func FormatChunk(c domain.RetrievedChunk) string {
	page := "p?"
	if c.Page != "" {
		page = "p" + c.Page
	}
	section := ""
	if c.Section != "" {
		section = " | " + c.Section
	}
	id := c.ID
	if id == "" {
		id = "unknown"
	}
	source := c.Source
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("[DOC: %s | %s | chunk: %s%s]\n%s", source, page, id, section, c.Text)
}

// FormatChunks renders all retrieved chunks, or the no-excerpts marker.
func FormatChunks(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return noExcerptsMarker
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = FormatChunk(c)
	}
	return strings.Join(parts, "\n\n")
}

func prettyObjects(objects []domain.DrawingObject) string {
	if len(objects) == 0 {
		return emptyObjectsMarker
	}
	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return emptyObjectsMarker
	}
	return string(data)
}

func formatLayerCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "None"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func formatSpatial(sa *domain.SpatialAnalysis) string {
	if sa == nil {
		return "None"
	}
	var parts []string
	if sa.PropertyHighway != nil {
		parts = append(parts, "Property-Highway: "+sa.PropertyHighway.Analysis)
	}
	if len(sa.AvailableGeometry) > 0 {
		parts = append(parts, "Layers with geometry: "+strings.Join(sa.AvailableGeometry, ", "))
	}
	if len(sa.MissingForExtensions) > 0 {
		parts = append(parts, "Missing for extensions: "+strings.Join(sa.MissingForExtensions, ", "))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "; ")
}
