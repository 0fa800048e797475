// Package planner wires together discretization, lawnmower synthesis,
// energy accounting, the ACO orienteering solver, and path stitching into
// the single Plan entry point (spec §4.10).
package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PossumXI/Asgard/Condor/internal/aco"
	"github.com/PossumXI/Asgard/Condor/internal/decomposition"
	"github.com/PossumXI/Asgard/Condor/internal/energy"
	"github.com/PossumXI/Asgard/Condor/internal/footprint"
	"github.com/PossumXI/Asgard/Condor/internal/geo"
	"github.com/PossumXI/Asgard/Condor/internal/geom"
	"github.com/PossumXI/Asgard/Condor/internal/lawnmower"
	"github.com/PossumXI/Asgard/Condor/internal/nofly"
	"github.com/PossumXI/Asgard/Condor/internal/planning"
	"github.com/PossumXI/Asgard/Condor/internal/providers"
	"github.com/PossumXI/Asgard/Condor/internal/stitch"
)

// Error sentinels for the taxonomy in spec §7. All of them are also
// surfaced to the sink as an AcoErrorEvent before being returned.
var (
	ErrInputInvalid             = errors.New("planner: invalid input")
	ErrDegenerateDiscretization = errors.New("planner: discretization empty")
)

// PlanResult is Plan's successful output.
type PlanResult struct {
	JobID         string
	LogicalRoute  []geo.Point
	CoverageRoute []geo.Point
	LogicalKm     float64
	CoverageKm    float64
	BestScore     float64
	BestCost      float64
}

const defaultMinCellAreaM2 = 200.0

// Plan runs the full discretize -> synthesize -> energy -> ACO -> stitch
// pipeline for req, emitting progress through sink as it goes.
//
// Cancellation is expressed through ctx rather than the original's job_id
// comparison at the sink: ctx.Done() is checked at every point the original
// checked job_id, which is the same cooperative-cancellation contract
// expressed the idiomatic Go way (see DESIGN.md).
func Plan(
	ctx context.Context,
	req planning.PlanRequest,
	elevation providers.ElevationProvider,
	weather providers.WeatherProvider,
	sink planning.EventSink,
	rng *rand.Rand,
	log *logrus.Logger,
) (PlanResult, error) {
	jobID := uuid.NewString()
	if log != nil {
		log.WithField("job_id", jobID).Info("planner: new job")
	}

	if err := ctx.Err(); err != nil {
		return PlanResult{}, err
	}

	if msg, ok := validate(req); !ok {
		sink.Emit(planning.AcoErrorEvent{Message: msg})
		return PlanResult{}, fmt.Errorf("%w: %s", ErrInputInvalid, msg)
	}

	wind := energy.Wind{}
	if weather != nil {
		if snap, ok := weather.At(req.Base.Lat, req.Base.Lon); ok {
			sink.Emit(planning.WeatherUpdateEvent{
				TempC:       snap.TempC,
				WindSpeedMs: snap.WindSpeedMs,
				WindDegFrom: snap.WindDegFrom,
				HumidityPct: snap.HumidityPct,
				Description: snap.Description,
				VisibilityM: snap.VisibilityM,
			})
			wind = energy.Wind{SpeedMs: snap.WindSpeedMs, FromDeg: snap.WindDegFrom}
		}
	}

	usableEnergyWh := req.Drone.BatteryWh * maxf(0, 100.0-req.Drone.ReservePct) / 100.0

	fp := footprint.Compute(req.Drone.AltitudeM, req.Drone.FovDeg, req.Drone.OverlapPerp, req.Drone.OverlapPar, req.CellSizeKm)

	areaMetric := toMetricRing(req.AreaPoly)
	if areaMetric.AbsArea() < 1e-6 {
		sink.Emit(planning.AcoErrorEvent{Message: "discretization empty"})
		return PlanResult{}, ErrDegenerateDiscretization
	}

	var obstaclesMetric []geom.Ring
	for _, raw := range req.NoFly {
		safe := nofly.SafePolygons([]geom.Ring{toMetricRing(raw)})
		obstaclesMetric = append(obstaclesMetric, safe...)
	}
	rawNoFly := make([][]geo.Point, len(req.NoFly))
	for i, p := range req.NoFly {
		rawNoFly[i] = []geo.Point(p)
	}
	noFlyIdx := nofly.Build(rawNoFly)

	gridType := footprint.Square
	if req.GridType == planning.GridHex {
		gridType = footprint.Hex
	}

	tauMinArea := req.Drone.MinCellAreaM2
	if tauMinArea <= 0 {
		tauMinArea = defaultMinCellAreaM2
	}

	cells := footprint.Discretize(areaMetric, obstaclesMetric, fp, gridType, tauMinArea)
	if len(cells) == 0 {
		sink.Emit(planning.AcoErrorEvent{Message: "discretization empty"})
		return PlanResult{}, ErrDegenerateDiscretization
	}

	for i := range cells {
		cells[i].CentroidGeo = geo.ToGeo(geo.MetricPoint{X: cells[i].CentroidMetric.X, Y: cells[i].CentroidMetric.Y})
		cells[i].BBoxGeo = bboxGeoOf(cells[i].GeomMetric)
	}

	var priorityRegions []footprint.PriorityRegion
	for _, r := range req.PriorityRegions {
		priorityRegions = append(priorityRegions, footprint.PriorityRegion{Region: toMetricRing(r.Region), Reward: float32(r.Reward)})
	}
	footprint.ApplyPriority(cells, priorityRegions)

	cellRings := make([]geom.Ring, len(cells))
	centroidsMetric := make([]geom.Point, len(cells))
	for i, c := range cells {
		cellRings[i] = c.GeomMetric
		centroidsMetric[i] = c.CentroidMetric
	}
	areaInner := areaMetric.Offset(-fp.BufferM)
	if len(areaInner) < 3 || areaInner.AbsArea() < 1e-9 {
		areaInner = areaMetric
	}
	obstaclesBuf := make([]geom.Ring, 0, len(obstaclesMetric))
	for _, o := range obstaclesMetric {
		obstaclesBuf = append(obstaclesBuf, o.Offset(fp.BufferM))
	}
	subareas := decomposition.BoustrophedonDecompose(geom.FreeSpace{Outer: areaInner, Holes: obstaclesBuf}, 0.0)
	phis := decomposition.AssignOrientations(cellRings, subareas)
	for i := range cells {
		cells[i].OrientationDeg = phis[i]
	}
	graph := decomposition.BuildAdjacencyGraph(cellRings, centroidsMetric, phis)

	for i := range cells {
		pathMetric := lawnmower.BuildPath(cells[i].GeomMetric, cells[i].OrientationDeg, fp.SwathWidthM, fp.DeltaPerpM)
		cells[i].SweepPath = make([]geo.Point, len(pathMetric))
		for k, m := range pathMetric {
			cells[i].SweepPath[k] = geo.ToGeo(geo.MetricPoint{X: m.X, Y: m.Y})
		}
	}

	graphEdges := make([]planning.GraphEdge, len(graph.Edges))
	for i, e := range graph.Edges {
		graphEdges[i] = planning.GraphEdge{From: cells[e.From].CentroidGeo, To: cells[e.To].CentroidGeo, Weight: e.Weight}
	}

	gridCells := make([]planning.GridCell, len(cells))
	for i, c := range cells {
		gridCells[i] = planning.GridCell{
			Index:          int(c.Index),
			Center:         c.CentroidGeo,
			BBox:           [4]float64{c.BBoxGeo.MinLat, c.BBoxGeo.MinLon, c.BBoxGeo.MaxLat, c.BBoxGeo.MaxLon},
			Path:           c.SweepPath,
			OrientationDeg: c.OrientationDeg,
		}
	}
	sink.Emit(planning.GridEvent{Cells: gridCells, GraphEdges: graphEdges})

	if err := ctx.Err(); err != nil {
		return PlanResult{}, err
	}

	points := make([]aco.Point, len(cells)+1)
	weights := make([]float64, len(cells)+1)
	points[0] = aco.Point{Lat: req.Base.Lat, Lon: req.Base.Lon}
	weights[0] = 0
	for i, c := range cells {
		points[i+1] = aco.Point{Lat: c.CentroidGeo.Lat, Lon: c.CentroidGeo.Lon}
		weights[i+1] = float64(c.Reward)
	}
	const baseIdx = 0

	var elev providers.ElevationProvider = elevation
	if elevation != nil {
		elev = providers.NewElevationCache(elevation, log)
	}

	heights := make([]float64, len(points))
	if elev != nil {
		for i, p := range points {
			heights[i] = elev.Elevation(p.Lat, p.Lon)
		}
	}

	model := energy.Model{SpeedKmh: req.Drone.SpeedKmh, PayloadKg: req.Drone.PayloadKg}
	windState := &providers.WindState{}
	windState.Update(wind.SpeedMs, wind.FromDeg)

	energyFn := func(i, j int) float64 {
		cur := windState.Snapshot()
		curWind := energy.Wind{SpeedMs: cur.SpeedMs, FromDeg: cur.FromDeg}
		return model.LegWh(geoOfAco(points[i]), geoOfAco(points[j]), heights[i], heights[j], curWind)
	}
	energyBackFn := func(i int) float64 {
		return energyFn(i, baseIdx)
	}
	noFlyFn := func(i, j int) bool {
		return noFlyIdx.Intersects(geoOfAco(points[i]), geoOfAco(points[j]))
	}

	acoCfg := aco.DefaultConfig()
	if req.Ants > 0 {
		acoCfg.Ants = req.Ants
	}
	if req.Iters > 0 {
		acoCfg.Iterations = req.Iters
	}
	acoCfg.DynamicWeather = req.DynamicWeather
	if req.RefreshInterval > 0 {
		acoCfg.RefreshInterval = req.RefreshInterval
	}
	if req.RefreshMode == planning.RefreshFull {
		acoCfg.RefreshMode = aco.RefreshFull
	}
	if req.RefreshFraction > 0 {
		acoCfg.RefreshFraction = req.RefreshFraction
	}

	onIter := func(ev aco.IterEvent) bool {
		if acoCfg.DynamicWeather && weather != nil && acoCfg.RefreshInterval > 0 && ev.Iteration%acoCfg.RefreshInterval == 0 {
			if snap, ok := weather.At(req.Base.Lat, req.Base.Lon); ok {
				windState.Update(snap.WindSpeedMs, snap.WindDegFrom)
				cur := windState.Snapshot()
				if log != nil {
					log.WithField("job_id", jobID).WithField("wind_version", cur.Version).Debug("planner: wind refreshed")
				}
				sink.Emit(planning.WeatherDynamicEvent{WindSpeedMs: cur.SpeedMs, WindDegFrom: cur.FromDeg})
			}
		}
		sink.Emit(planning.AcoIterEvent{
			Iteration: ev.Iteration,
			IterScore: ev.IterScore,
			IterCost:  ev.IterCost,
			IterTour:  tourToGeo(points, ev.IterTour),
			BestScore: ev.BestScore,
			BestCost:  ev.BestCost,
			BestTour:  tourToGeo(points, ev.BestTour),
		})
		return ctx.Err() == nil
	}

	budgetWh := usableEnergyWh
	reserveWh := usableEnergyWh * 0.1

	res := aco.Run(points, weights, baseIdx, energyFn, energyBackFn, noFlyFn, budgetWh, reserveWh, acoCfg, rng, onIter)

	if err := ctx.Err(); err != nil {
		return PlanResult{}, err
	}

	var visitCells []int
	for _, idx := range trimEnds(res.BestTour) {
		if idx != baseIdx {
			visitCells = append(visitCells, idx-1)
		}
	}

	logicalRoute := []geo.Point{req.Base}
	for _, ci := range visitCells {
		logicalRoute = append(logicalRoute, cells[ci].CentroidGeo)
	}
	logicalRoute = append(logicalRoute, req.Base)

	if len(req.AreaPoly) >= 3 {
		areaGeog := toGeogRing(req.AreaPoly)
		if clipped := clipRouteToRing(logicalRoute, areaGeog); len(clipped) > 0 {
			logicalRoute = clipped
		}
	}
	logicalKm := stitch.RouteLengthKm(logicalRoute)

	cellPaths := make([][]geo.Point, len(visitCells))
	for i, ci := range visitCells {
		cellPaths[i] = cells[ci].SweepPath
	}
	stitchCfg := stitch.NewConfig(usableEnergyWh)
	coverageRoute := stitch.Paths(cellPaths, req.Base, stitchCfg)
	coverageKm := stitch.RouteLengthKm(coverageRoute)

	sink.Emit(planning.DoneEvent{
		Route:         logicalRoute,
		MissionLenKm:  logicalKm,
		CoverageRoute: coverageRoute,
		EnergyWh:      res.BestCost,
		GraphEdges:    graphEdges,
	})

	return PlanResult{
		JobID:         jobID,
		LogicalRoute:  logicalRoute,
		CoverageRoute: coverageRoute,
		LogicalKm:     logicalKm,
		CoverageKm:    coverageKm,
		BestScore:     res.BestScore,
		BestCost:      res.BestCost,
	}, nil
}

// validate implements spec §7's InputInvalid checks.
func validate(req planning.PlanRequest) (string, bool) {
	if len(req.AreaPoly) < 3 {
		return "area polygon absent or degenerate", false
	}
	if req.Drone.BatteryWh <= 0 {
		return "battery budget must be positive", false
	}
	if req.Drone.AltitudeM <= 0 {
		return "altitude must be positive", false
	}
	return "", true
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func toMetricRing(pts []geo.Point) geom.Ring {
	ring := make(geom.Ring, len(pts))
	for i, p := range pts {
		m := geo.ToMetric(p)
		ring[i] = geom.Point{X: m.X, Y: m.Y}
	}
	return ring
}

func toGeogRing(pts []geo.Point) geom.Ring {
	ring := make(geom.Ring, len(pts))
	for i, p := range pts {
		ring[i] = geom.Point{X: p.Lon, Y: p.Lat}
	}
	return ring
}

func bboxGeoOf(ring geom.Ring) footprint.BBox {
	if len(ring) == 0 {
		return footprint.BBox{}
	}
	first := geo.ToGeo(geo.MetricPoint{X: ring[0].X, Y: ring[0].Y})
	box := footprint.BBox{MinLat: first.Lat, MinLon: first.Lon, MaxLat: first.Lat, MaxLon: first.Lon}
	for _, m := range ring[1:] {
		p := geo.ToGeo(geo.MetricPoint{X: m.X, Y: m.Y})
		box.MinLat = minf(box.MinLat, p.Lat)
		box.MaxLat = maxf(box.MaxLat, p.Lat)
		box.MinLon = minf(box.MinLon, p.Lon)
		box.MaxLon = maxf(box.MaxLon, p.Lon)
	}
	return box
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func geoOfAco(p aco.Point) geo.Point {
	return geo.Point{Lat: p.Lat, Lon: p.Lon}
}

func tourToGeo(points []aco.Point, tour []int) []geo.Point {
	out := make([]geo.Point, len(tour))
	for i, idx := range tour {
		out[i] = geoOfAco(points[idx])
	}
	return out
}

// trimEnds drops the leading and trailing base-index entries a closed tour
// always carries, leaving only the visited cell indices in between.
func trimEnds(tour []int) []int {
	if len(tour) <= 2 {
		return nil
	}
	return tour[1 : len(tour)-1]
}

// clipRouteToRing clips each logical-route leg against ring (the raw,
// unprojected area polygon, matching the original's lat/lon-space clip) and
// concatenates the surviving sub-segments in order. Supports a route whose
// clip result is effectively a MultiLineString, per spec §9's note that the
// clip may yield more than one line.
func clipRouteToRing(route []geo.Point, ring geom.Ring) []geo.Point {
	var out []geo.Point
	for k := 0; k+1 < len(route); k++ {
		a := geom.Point{X: route[k].Lon, Y: route[k].Lat}
		b := geom.Point{X: route[k+1].Lon, Y: route[k+1].Lat}
		for _, seg := range geom.ClipLineToRing(a, b, ring) {
			out = append(out, geo.Point{Lat: seg.A.Y, Lon: seg.A.X}, geo.Point{Lat: seg.B.Y, Lon: seg.B.X})
		}
	}
	return out
}
