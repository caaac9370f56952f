package guard

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// Needs-input follow-up phrasing, English and Turkish.
var needsInputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what\s+it\s+needs`),
	regexp.MustCompile(`(?i)what\s+do\s+you\s+need`),
	regexp.MustCompile(`(?i)what\s+is\s+needed`),
	regexp.MustCompile(`(?i)what'?s\s+missing`),
	regexp.MustCompile(`(?i)what\s+do\s+i\s+need`),
	regexp.MustCompile(`(?i)ne\s+laz[ıi]m`),
	regexp.MustCompile(`(?i)ne\s+gerekiyor`),
	regexp.MustCompile(`(?i)ne\s+eksik`),
	regexp.MustCompile(`(?i)neye\s+ihtiya[çc]`),
}

// NeedsInput fires when the user explicitly asks what input is missing after
// a geometry refusal, and some present layer still lacks geometry. The reply
// is a deterministic checklist.
func NeedsInput(question string, objects []domain.DrawingObject) domain.GuardResult {
	text := strings.TrimSpace(question)
	if text == "" {
		return domain.GuardResult{Kind: domain.GuardNone}
	}
	matched := false
	for _, pat := range needsInputPatterns {
		if pat.MatchString(text) {
			matched = true
			break
		}
	}
	if !matched {
		return domain.GuardResult{Kind: domain.GuardNone}
	}

	missing := followupMissingLayers(objects)
	if len(missing) == 0 {
		return domain.GuardResult{Kind: domain.GuardNone}
	}

	return domain.GuardResult{
		Kind:          domain.GuardNeedsInput,
		MissingLayers: missing,
		Answer:        needsInputMessage(missing),
	}
}

// followupMissingLayers considers every layer present in the session plus the
// Highway and Plot Boundary minimum, and reports the geometry-less ones.
func followupMissingLayers(objects []domain.DrawingObject) []string {
	if len(objects) == 0 {
		return nil
	}
	required := map[string]struct{}{
		domain.LayerHighway:      {},
		domain.LayerPlotBoundary: {},
	}
	for _, obj := range objects {
		layer := strings.TrimSpace(obj.Layer)
		if layer == "" {
			continue
		}
		covered := false
		for req := range required {
			if layerMatches(layer, req) {
				covered = true
				break
			}
		}
		if !covered {
			required[layer] = struct{}{}
		}
	}
	missing := MissingGeometryLayers(objects, required)
	sort.Strings(missing)
	return missing
}

func needsInputMessage(missing []string) string {
	return fmt.Sprintf(
		"**Layers needing geometry:** %s\n\n"+
			"**Geometry requirement:** Non-null geometry with coordinates "+
			"(e.g. points, lines, polygons with coordinate arrays). "+
			"Add or correct geometry in the drawing for these layers to answer spatial questions.",
		strings.Join(missing, ", "),
	)
}
