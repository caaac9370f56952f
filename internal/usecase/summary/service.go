// Package summary derives compact aggregate facts from the session object
// list: layer counts, presence flags, detected limitations, and what the
// available geometry supports determining.
package summary

import (
	"strings"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// Limitation strings reported in the session summary.
const (
	LimitNoObjects      = "No session objects provided"
	LimitNoPlotBoundary = "No plot boundary defined"
	LimitNoMeasurements = "No measurement data found in objects"
	LimitNoGeometry     = "No coordinate/geometry data found"
)

// measurementKeys are property names that count as measurement data.
var measurementKeys = map[string]struct{}{
	"length": {}, "width": {}, "height": {}, "area": {}, "distance": {},
}

// Service computes session summaries. Total function: no input can fail it.
type Service struct{}

// New creates a summary service.
func New() *Service { return &Service{} }

// Summarize computes the per-request session summary. Empty input yields an
// all-zero summary with every limitation populated.
func (s *Service) Summarize(objects []domain.DrawingObject) domain.SessionSummary {
	if len(objects) == 0 {
		return domain.SessionSummary{
			LayerCounts: map[string]int{},
			Limitations: []string{
				LimitNoObjects, LimitNoPlotBoundary, LimitNoMeasurements, LimitNoGeometry,
			},
			Spatial: analyzeSpatial(nil),
		}
	}

	counts := make(map[string]int)
	plotBoundary := false
	highways := false
	for _, obj := range objects {
		if canonical, ok := MatchKnownLayer(obj.Layer); ok {
			counts[canonical]++
		}
		lower := strings.ToLower(obj.Layer)
		if strings.Contains(lower, "plot") || strings.Contains(lower, "boundary") {
			plotBoundary = true
		}
		if strings.Contains(lower, "highway") || strings.Contains(lower, "road") {
			highways = true
		}
	}

	return domain.SessionSummary{
		LayerCounts:         counts,
		PlotBoundaryPresent: plotBoundary,
		HighwaysPresent:     highways,
		TotalObjects:        len(objects),
		Limitations:         detectLimitations(objects, plotBoundary),
		Spatial:             analyzeSpatial(objects),
	}
}

func detectLimitations(objects []domain.DrawingObject, plotBoundary bool) []string {
	var limitations []string

	if !plotBoundary {
		limitations = append(limitations, LimitNoPlotBoundary)
	}

	hasMeasurements := false
	for _, obj := range objects {
		for k := range obj.Properties {
			if _, ok := measurementKeys[strings.ToLower(k)]; ok {
				hasMeasurements = true
				break
			}
		}
		if hasMeasurements {
			break
		}
	}
	if !hasMeasurements {
		limitations = append(limitations, LimitNoMeasurements)
	}

	hasGeometry := false
	for _, obj := range objects {
		if obj.HasGeometry() {
			hasGeometry = true
			break
		}
	}
	if !hasGeometry {
		limitations = append(limitations, LimitNoGeometry)
	}

	return limitations
}

// MatchKnownLayer maps a raw layer name to its canonical vocabulary entry.
// Matching is case-insensitive; a substring match either way also counts so
// "Plot boundary (main)" still maps to Plot Boundary.
func MatchKnownLayer(layer string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(layer))
	if name == "" {
		return "", false
	}
	for _, known := range domain.KnownLayers {
		lk := strings.ToLower(known)
		if name == lk || strings.Contains(name, lk) || strings.Contains(lk, name) {
			return known, true
		}
	}
	return "", false
}
