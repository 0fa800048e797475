package planning

import "github.com/PossumXI/Asgard/Condor/internal/geo"

// PlannerEvent is the closed set of progress events a Plan call emits,
// re-architected from the original's global socket `emit(...)` calls into a
// capability interface (spec §9 design note). Each concrete type below is a
// variant; EventSink.Emit accepts any of them.
type PlannerEvent interface {
	plannerEvent()
}

// WeatherUpdateEvent reports the weather snapshot read at the base station
// before planning begins.
type WeatherUpdateEvent struct {
	TempC       float64
	WindSpeedMs float64
	WindDegFrom float64
	HumidityPct float64
	Description string
	VisibilityM float64
}

func (WeatherUpdateEvent) plannerEvent() {}

// GridCell is the Grid event's per-cell summary payload.
type GridCell struct {
	Index          int
	Center         geo.Point
	BBox           [4]float64 // minLat, minLon, maxLat, maxLon
	Path           []geo.Point
	OrientationDeg float64
}

// GraphEdge is the Grid event's adjacency-edge summary payload.
type GraphEdge struct {
	From, To geo.Point
	Weight   float64
}

// GridEvent reports the discretized cell set and adjacency graph, emitted
// once per plan after discretization and lawnmower synthesis complete.
type GridEvent struct {
	Cells      []GridCell
	GraphEdges []GraphEdge
}

func (GridEvent) plannerEvent() {}

// AcoIterEvent reports one ACO iteration's result and the monotonic best
// tour seen so far (spec §6, §8 property 1).
type AcoIterEvent struct {
	Iteration int
	IterScore float64
	IterCost  float64
	IterTour  []geo.Point
	BestScore float64
	BestCost  float64
	BestTour  []geo.Point
}

func (AcoIterEvent) plannerEvent() {}

// WeatherDynamicEvent reports a mid-plan wind refresh when dynamic_weather
// is enabled.
type WeatherDynamicEvent struct {
	WindSpeedMs float64
	WindDegFrom float64
}

func (WeatherDynamicEvent) plannerEvent() {}

// AcoErrorEvent terminates a plan early; no further events follow it
// (spec §7's error taxonomy).
type AcoErrorEvent struct {
	Message string
}

func (AcoErrorEvent) plannerEvent() {}

// DoneEvent is the terminal success event. Route/MissionLenKm carry the
// logical (centroid-to-centroid) route and length; CoverageRoute/EnergyWh
// carry the stitched, energy-aware route and the ACO solver's realized cost
// (spec §4.10's Done description).
type DoneEvent struct {
	Route         []geo.Point
	MissionLenKm  float64
	CoverageRoute []geo.Point
	EnergyWh      float64
	GraphEdges    []GraphEdge
}

func (DoneEvent) plannerEvent() {}

// EventSink receives PlannerEvents as the plan progresses. Emit must not
// block indefinitely; it is the planner's only suspension point (spec §6's
// scheduling model).
type EventSink interface {
	Emit(PlannerEvent)
}

// SliceSink is a trivial in-memory EventSink, useful for tests and for the
// CLI driver.
type SliceSink struct {
	Events []PlannerEvent
}

// Emit appends event to the sink's buffer.
func (s *SliceSink) Emit(event PlannerEvent) {
	s.Events = append(s.Events, event)
}
