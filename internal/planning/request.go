// Package planning defines the planner's external contract: the
// PlanRequest input, the closed PlannerEvent variant set, and the
// EventSink capability the original's global socket emit was
// re-architected into (spec §9).
package planning

import "github.com/PossumXI/Asgard/Condor/internal/geo"

// GridType selects the survey lattice.
type GridType string

const (
	GridSquare GridType = "SQUARE"
	GridHex    GridType = "HEX"
)

// RefreshMode selects how dynamic-weather energy refresh recomputes the
// energy matrix.
type RefreshMode string

const (
	RefreshFull    RefreshMode = "FULL"
	RefreshPartial RefreshMode = "PARTIAL"
)

// DroneConfig holds the aerodynamic and sensor parameters of the survey
// drone (spec §6).
type DroneConfig struct {
	BatteryWh     float64
	ReservePct    float64
	SpeedKmh      float64
	PayloadKg     float64
	AltitudeM     float64
	FovDeg        float64
	OverlapPerp   float64
	OverlapPar    float64
	MinCellAreaM2 float64
}

// Polygon is a closed ring of geographic points.
type Polygon []geo.Point

// PlanRequest is the sole input to Plan (spec §6).
type PlanRequest struct {
	Base     geo.Point
	AreaPoly Polygon
	NoFly    []Polygon

	Drone DroneConfig

	GridType   GridType
	CellSizeKm float64

	Ants  int
	Iters int

	DynamicWeather  bool
	RefreshInterval int
	RefreshMode     RefreshMode
	RefreshFraction float64

	// PriorityRegions overrides the default per-cell reward (§3 Cell.reward)
	// for cells whose centroid falls within a region — a spec-sanctioned
	// supplement, not new scope.
	PriorityRegions []PriorityRegion
}

// PriorityRegion overrides the default reward for cells whose centroid
// lies within Region.
type PriorityRegion struct {
	Region Polygon
	Reward float64
}
