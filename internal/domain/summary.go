package domain

// Known layer vocabulary. Layer counting and geometry guards match against
// these canonical names case-insensitively.
const (
	LayerPlotBoundary = "Plot Boundary"
	LayerHighway      = "Highway"
	LayerWalls        = "Walls"
	LayerDoors        = "Doors"
	LayerWindows      = "Windows"
)

// KnownLayers lists the canonical layer vocabulary in display order.
var KnownLayers = []string{
	LayerPlotBoundary, LayerHighway, LayerWalls, LayerDoors, LayerWindows,
}

// SessionSummary is a read-only aggregate derived once per request from the
// session object list.
type SessionSummary struct {
	LayerCounts         map[string]int   `json:"layer_counts"`
	PlotBoundaryPresent bool             `json:"plot_boundary_present"`
	HighwaysPresent     bool             `json:"highways_present"`
	TotalObjects        int              `json:"total_objects"`
	Limitations         []string         `json:"limitations"`
	Spatial             *SpatialAnalysis `json:"spatial_analysis,omitempty"`
}

// SpatialAnalysis captures what the geometry actually supports determining.
type SpatialAnalysis struct {
	PropertyHighway      *FrontingAnalysis `json:"property_highway_analysis,omitempty"`
	AvailableGeometry    []string          `json:"available_geometry"`
	MissingForExtensions []string          `json:"missing_for_extensions"`
}

// FrontingAnalysis is the plot-boundary vs highway relationship.
type FrontingAnalysis struct {
	FrontsHighway     bool     `json:"fronts_highway"`
	DistanceToHighway *float64 `json:"distance_to_highway,omitempty"`
	Analysis          string   `json:"analysis"`
}
