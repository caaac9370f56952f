package summary

import (
	"testing"

	"github.com/kailas-cloud/planagent/internal/domain"
)

func lineWithGeometry(layer string) domain.DrawingObject {
	return domain.DrawingObject{
		Type:  "LINE",
		Layer: layer,
		Geometry: map[string]any{
			"coordinates": []any{[]any{0.0, 0.0}, []any{10.0, 0.0}},
		},
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := New().Summarize(nil)

	if s.TotalObjects != 0 {
		t.Fatalf("TotalObjects = %d, want 0", s.TotalObjects)
	}
	if len(s.LayerCounts) != 0 {
		t.Fatalf("LayerCounts = %v, want empty", s.LayerCounts)
	}
	if s.PlotBoundaryPresent || s.HighwaysPresent {
		t.Fatal("presence flags must be false for empty input")
	}
	want := []string{LimitNoObjects, LimitNoPlotBoundary, LimitNoMeasurements, LimitNoGeometry}
	if len(s.Limitations) != len(want) {
		t.Fatalf("Limitations = %v, want all of %v", s.Limitations, want)
	}
}

func TestSummarize_CountsAndFlags(t *testing.T) {
	objects := []domain.DrawingObject{
		lineWithGeometry("Highway"),
		lineWithGeometry("highway"),
		{Type: "POLYGON", Layer: "Plot Boundary"},
		{Type: "LINE", Layer: "Garden"}, // not in vocabulary
		{Type: "LINE", Layer: "walls", Properties: map[string]any{"Length": 4.2}},
	}

	s := New().Summarize(objects)

	if s.TotalObjects != 5 {
		t.Fatalf("TotalObjects = %d, want 5", s.TotalObjects)
	}
	if s.LayerCounts[domain.LayerHighway] != 2 {
		t.Fatalf("Highway count = %d, want 2", s.LayerCounts[domain.LayerHighway])
	}
	if s.LayerCounts[domain.LayerPlotBoundary] != 1 || s.LayerCounts[domain.LayerWalls] != 1 {
		t.Fatalf("unexpected counts: %v", s.LayerCounts)
	}

	// Vocabulary-matched counts sum to 4; "Garden" is excluded.
	sum := 0
	for _, n := range s.LayerCounts {
		sum += n
	}
	if sum != 4 {
		t.Fatalf("layer count sum = %d, want 4", sum)
	}

	if !s.PlotBoundaryPresent || !s.HighwaysPresent {
		t.Fatalf("presence flags = (%v, %v), want both true", s.PlotBoundaryPresent, s.HighwaysPresent)
	}
	for _, lim := range s.Limitations {
		if lim == LimitNoMeasurements || lim == LimitNoGeometry || lim == LimitNoPlotBoundary {
			t.Fatalf("unexpected limitation %q", lim)
		}
	}
}

func TestSummarize_Limitations(t *testing.T) {
	objects := []domain.DrawingObject{
		{Type: "LINE", Layer: "Walls"}, // no geometry, no measurements
	}
	s := New().Summarize(objects)

	found := map[string]bool{}
	for _, lim := range s.Limitations {
		found[lim] = true
	}
	if !found[LimitNoPlotBoundary] || !found[LimitNoMeasurements] || !found[LimitNoGeometry] {
		t.Fatalf("Limitations = %v, want plot boundary, measurements and geometry limits", s.Limitations)
	}
}

func TestSummarize_SpatialFronting(t *testing.T) {
	objects := []domain.DrawingObject{
		{Type: "POLYGON", Layer: "Plot Boundary", Geometry: map[string]any{
			"type": "Polygon",
			"coordinates": []any{[]any{
				[]any{0.0, 0.0}, []any{10.0, 0.0}, []any{10.0, 10.0}, []any{0.0, 10.0},
			}},
		}},
		{Type: "LINE", Layer: "Highway", Geometry: map[string]any{
			"type":        "LineString",
			"coordinates": []any{[]any{0.0, -0.5}, []any{10.0, -0.5}},
		}},
	}

	s := New().Summarize(objects)

	if s.Spatial == nil || s.Spatial.PropertyHighway == nil {
		t.Fatal("expected property-highway analysis")
	}
	pha := s.Spatial.PropertyHighway
	if !pha.FrontsHighway {
		t.Fatalf("expected fronting at 0.5 units, got %+v", pha)
	}
	if pha.DistanceToHighway == nil || *pha.DistanceToHighway > 0.51 {
		t.Fatalf("unexpected distance: %+v", pha.DistanceToHighway)
	}
	if len(s.Spatial.AvailableGeometry) != 2 {
		t.Fatalf("AvailableGeometry = %v, want both layers", s.Spatial.AvailableGeometry)
	}
	if len(s.Spatial.MissingForExtensions) != 2 {
		t.Fatalf("MissingForExtensions = %v, want walls and doors hints", s.Spatial.MissingForExtensions)
	}
}

func TestMatchKnownLayer(t *testing.T) {
	tests := []struct {
		in        string
		canonical string
		ok        bool
	}{
		{"Highway", domain.LayerHighway, true},
		{"HIGHWAY", domain.LayerHighway, true},
		{"Plot boundary", domain.LayerPlotBoundary, true},
		{"plot boundary (main)", domain.LayerPlotBoundary, true},
		{"Garden", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchKnownLayer(tt.in)
		if got != tt.canonical || ok != tt.ok {
			t.Fatalf("MatchKnownLayer(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.canonical, tt.ok)
		}
	}
}
