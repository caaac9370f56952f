package guard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// General-rule phrasing means the user asks about regulations in the
// abstract; the geometry guard must not fire even if geometry is missing.
var generalRulePhrases = []string{
	"what is meant by",
	"what is ",
	"would ",
	"normally be permitted",
	"does the presence of",
	"restrict ",
	"according to the regulations",
	"according to the regulation",
	"generally",
}

// The guard requires the question to be about this specific drawing.
var thisDrawingPhrases = []string{
	"does this property",
	"is this plot",
	"in the current drawing",
	"given this drawing",
	"this drawing",
	"this property",
	"this plot",
}

var spatialKeywords = []string{
	"front", "fronts", "fronting",
	"adjacent", "adjacency",
	"distance", "far", "near", "proximity",
	"angle", "degrees",
	"coordinates", "geometry",
	"intersects", "intersection", "touch", "overlap",
	"align", "parallel", "perpendicular",
	"orientation", "position", "located", "relative",
	"elevation",
}

// Keywords that add layers beyond the Highway + Plot Boundary minimum.
var extraLayerKeywords = map[string][]string{
	"elevation": {domain.LayerWalls, domain.LayerDoors},
	"wall":      {domain.LayerWalls},
	"walls":     {domain.LayerWalls},
	"door":      {domain.LayerDoors},
	"doors":     {domain.LayerDoors},
}

// MissingGeometry fires for this-drawing spatial questions whose required
// layers are present in the session but where every object on each such
// layer lacks geometry. The response names exactly those layers.
func MissingGeometry(question string, objects []domain.DrawingObject) domain.GuardResult {
	if !shouldTriggerGeometryGuard(question) {
		return domain.GuardResult{Kind: domain.GuardNone}
	}

	required := RequiredLayers(question)
	missing := MissingGeometryLayers(objects, required)
	if len(missing) == 0 {
		return domain.GuardResult{Kind: domain.GuardNone}
	}

	return domain.GuardResult{
		Kind:          domain.GuardMissingGeometry,
		MissingLayers: missing,
		Answer: fmt.Sprintf(
			"Cannot determine because the current drawing does not provide geometric information "+
				"(coordinates/angles/distances) for: %s.",
			strings.Join(missing, ", "),
		),
	}
}

// shouldTriggerGeometryGuard: spatial AND about this drawing AND not a
// general-rule question.
func shouldTriggerGeometryGuard(question string) bool {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return false
	}
	for _, phrase := range generalRulePhrases {
		if strings.Contains(normalized, phrase) {
			return false
		}
	}
	this := false
	for _, phrase := range thisDrawingPhrases {
		if strings.Contains(normalized, phrase) {
			this = true
			break
		}
	}
	if !this {
		return false
	}
	for _, kw := range spatialKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// RequiredLayers returns the layers that must carry geometry for the
// question. Fronting-style and boundary-relative questions always need
// Highway and Plot Boundary; elevation/wall/door phrasing adds those layers.
func RequiredLayers(question string) map[string]struct{} {
	normalized := strings.ToLower(strings.TrimSpace(question))
	required := make(map[string]struct{})

	for _, p := range []string{"front", "fronts", "fronting"} {
		if strings.Contains(normalized, p) {
			required[domain.LayerHighway] = struct{}{}
			required[domain.LayerPlotBoundary] = struct{}{}
			break
		}
	}
	for _, p := range []string{
		"highway", "boundary", "plot", "adjacent", "distance",
		"intersect", "touch", "overlap", "align", "position",
		"orientation", "coordinates", "geometry",
	} {
		if strings.Contains(normalized, p) {
			required[domain.LayerHighway] = struct{}{}
			required[domain.LayerPlotBoundary] = struct{}{}
			break
		}
	}
	for kw, layers := range extraLayerKeywords {
		if strings.Contains(normalized, kw) {
			for _, l := range layers {
				required[l] = struct{}{}
			}
		}
	}
	return required
}

// MissingGeometryLayers returns, sorted, each required layer that has at
// least one session object but where every such object lacks geometry.
// Layers with no objects at all are a different issue and are not reported.
func MissingGeometryLayers(objects []domain.DrawingObject, required map[string]struct{}) []string {
	if len(required) == 0 || len(objects) == 0 {
		return nil
	}

	byLayer := make(map[string][]domain.DrawingObject)
	for _, obj := range objects {
		layer := strings.TrimSpace(obj.Layer)
		if layer == "" {
			continue
		}
		for req := range required {
			if layerMatches(layer, req) {
				byLayer[req] = append(byLayer[req], obj)
				break
			}
		}
	}

	var missing []string
	for layer, objs := range byLayer {
		all := true
		for _, o := range objs {
			if o.HasGeometry() {
				all = false
				break
			}
		}
		if all {
			missing = append(missing, layer)
		}
	}
	sort.Strings(missing)
	return missing
}

// layerMatches compares an object layer to a canonical layer name,
// case-insensitively with a substring fallback either way.
func layerMatches(layer, canonical string) bool {
	l := strings.ToLower(layer)
	c := strings.ToLower(canonical)
	return l == c || strings.Contains(l, c) || strings.Contains(c, l)
}
