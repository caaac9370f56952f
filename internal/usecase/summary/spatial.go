package summary

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// frontingThreshold is the max plot-to-highway distance, in drawing units,
// that still counts as fronting.
const frontingThreshold = 1.0

type point struct{ x, y float64 }

// analyzeSpatial reports which layers have usable geometry, the
// plot-boundary/highway relationship when both sides have coordinates, and
// what is missing for extension questions.
func analyzeSpatial(objects []domain.DrawingObject) *domain.SpatialAnalysis {
	out := &domain.SpatialAnalysis{
		AvailableGeometry:    []string{},
		MissingForExtensions: []string{},
	}

	var plotBoundary, highway *domain.DrawingObject
	layersPresent := make(map[string]struct{})
	for i := range objects {
		obj := &objects[i]
		lower := strings.ToLower(obj.Layer)
		layersPresent[lower] = struct{}{}
		if obj.HasGeometry() {
			out.AvailableGeometry = append(out.AvailableGeometry, obj.Layer)
		}
		if plotBoundary == nil && (strings.Contains(lower, "plot") || strings.Contains(lower, "boundary")) {
			plotBoundary = obj
		}
		if highway == nil && (strings.Contains(lower, "highway") || strings.Contains(lower, "road")) {
			highway = obj
		}
	}

	if plotBoundary != nil && highway != nil && plotBoundary.HasGeometry() && highway.HasGeometry() {
		out.PropertyHighway = analyzeFronting(*plotBoundary, *highway)
	}

	if _, ok := layersPresent["walls"]; !ok {
		out.MissingForExtensions = append(out.MissingForExtensions,
			"Walls layer (needed to determine principal/rear elevation)")
	}
	if _, ok := layersPresent["doors"]; !ok {
		out.MissingForExtensions = append(out.MissingForExtensions,
			"Doors layer (helps identify principal elevation)")
	}

	return out
}

func analyzeFronting(plot, highway domain.DrawingObject) *domain.FrontingAnalysis {
	plotPts := extractPoints(plot)
	highwayPts := extractPoints(highway)
	if len(plotPts) == 0 || len(highwayPts) == 0 {
		return &domain.FrontingAnalysis{
			Analysis: "Cannot determine: invalid geometry format",
		}
	}

	minDist := math.Inf(1)
	for _, pp := range plotPts {
		for _, hp := range highwayPts {
			if d := math.Hypot(pp.x-hp.x, pp.y-hp.y); d < minDist {
				minDist = d
			}
		}
	}
	// Also measure against highway segments, not just vertices.
	for i := 0; i+1 < len(highwayPts); i++ {
		for _, pp := range plotPts {
			if d := pointToSegment(pp, highwayPts[i], highwayPts[i+1]); d < minDist {
				minDist = d
			}
		}
	}

	if math.IsInf(minDist, 1) {
		return &domain.FrontingAnalysis{Analysis: "Cannot determine fronting relationship"}
	}

	fronts := minDist < frontingThreshold
	analysis := fmt.Sprintf("Property is %.2f units from highway (does not front)", minDist)
	if fronts {
		analysis = fmt.Sprintf("Property fronts highway (distance: %.2f units)", minDist)
	}
	dist := minDist
	return &domain.FrontingAnalysis{
		FrontsHighway:     fronts,
		DistanceToHighway: &dist,
		Analysis:          analysis,
	}
}

// extractPoints flattens an object's coordinates into 2D points. Polygons use
// the first ring ([[[x,y],...]]), lines the point list ([[x,y],...]), points
// the bare pair ([x,y]).
func extractPoints(obj domain.DrawingObject) []point {
	coords := obj.Coordinates
	if coords == nil && obj.Geometry != nil {
		coords, _ = obj.Geometry["coordinates"].([]any)
	}
	if len(coords) == 0 {
		return nil
	}

	// Bare pair [x, y].
	if x, ok := toFloat(coords[0]); ok {
		if len(coords) < 2 {
			return nil
		}
		y, ok := toFloat(coords[1])
		if !ok {
			return nil
		}
		return []point{{x, y}}
	}

	first, ok := coords[0].([]any)
	if !ok {
		return nil
	}
	// Polygon ring [[[x,y],...]].
	if len(first) > 0 {
		if _, nested := first[0].([]any); nested {
			return pairList(first)
		}
	}
	// Line [[x,y],...].
	return pairList(coords)
}

func pairList(raw []any) []point {
	pts := make([]point, 0, len(raw))
	for _, item := range raw {
		pair, ok := item.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		x, okX := toFloat(pair[0])
		y, okY := toFloat(pair[1])
		if okX && okY {
			pts = append(pts, point{x, y})
		}
	}
	return pts
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func pointToSegment(p, a, b point) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.x-(a.x+t*dx), p.y-(a.y+t*dy))
}
