// Package footprint turns a sensor/aerodynamic model and an area of interest
// into the survey grid: sensor footprint dimensions, square/hex grid centers
// over free space, and the clipped, area-filtered Cell set.
package footprint

import (
	"math"

	"github.com/PossumXI/Asgard/Condor/internal/geo"
	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

// GridType selects the lattice used to cover free space.
type GridType int

const (
	Square GridType = iota
	Hex
)

func (g GridType) String() string {
	if g == Hex {
		return "HEX"
	}
	return "SQUARE"
}

// Footprint holds the sensor swath geometry derived from altitude, field of
// view, and along/across-track overlap.
type Footprint struct {
	SwathWidthM float64
	DeltaPerpM  float64
	DeltaParM   float64
	BufferM     float64
}

// Compute derives the footprint per spec §4.3:
//
//	W = 2h·tan(theta/2); Δperp = cellSizeKm*1000 if provided else W·(1-oPerp);
//	Δpar = W·(1-oPar); buffer = 0.5·W·oPerp.
func Compute(h, thetaDeg, oPerp, oPar, cellSizeKm float64) Footprint {
	thetaRad := thetaDeg * math.Pi / 180.0
	w := 2.0 * h * math.Tan(thetaRad/2.0)

	var deltaPerp float64
	if cellSizeKm > 0 {
		deltaPerp = cellSizeKm * 1000.0
	} else {
		deltaPerp = w * (1.0 - oPerp)
	}

	return Footprint{
		SwathWidthM: w,
		DeltaPerpM:  deltaPerp,
		DeltaParM:   w * (1.0 - oPar),
		BufferM:     0.5 * w * oPerp,
	}
}

// RegularGridCenters lays out a rectangular lattice of step (dx, dy) over a
// metric bounding box, inclusive of the far edge.
func RegularGridCenters(minx, miny, maxx, maxy, dx, dy float64) []geom.Point {
	var centers []geom.Point
	if dx <= 0 || dy <= 0 {
		return centers
	}
	for x := minx; x <= maxx+0.5*dx; x += dx {
		for y := miny; y <= maxy+0.5*dy; y += dy {
			centers = append(centers, geom.Point{X: x, Y: y})
		}
	}
	return centers
}

// HexGridCenters lays out a hex lattice of the given pitch, rows offset by
// pitch/2 on odd rows and spaced by (sqrt(3)/2)*pitch.
func HexGridCenters(minx, miny, maxx, maxy, pitch float64) []geom.Point {
	var centers []geom.Point
	if pitch <= 0 {
		return centers
	}
	dx := pitch
	dy := math.Sqrt(3.0) * pitch / 2.0

	row := 0
	for y := miny; y <= maxy+dy; y += dy {
		xOffset := 0.0
		if row%2 != 0 {
			xOffset = dx / 2.0
		}
		for x := minx + xOffset; x <= maxx+dx; x += dx {
			centers = append(centers, geom.Point{X: x, Y: y})
		}
		row++
	}
	return centers
}

// SquareCell builds an axis-aligned square cell polygon of the given side
// centered at c.
func SquareCell(c geom.Point, side float64) geom.Ring {
	half := side / 2.0
	return geom.Ring{
		{X: c.X - half, Y: c.Y - half},
		{X: c.X + half, Y: c.Y - half},
		{X: c.X + half, Y: c.Y + half},
		{X: c.X - half, Y: c.Y + half},
	}
}

// HexCell builds a regular hexagon of circumradius pitch/2 centered at c,
// vertices at 30°+60k°: vertex-to-vertex height is pitch, flat-to-flat
// width is (sqrt(3)/2)*pitch.
func HexCell(c geom.Point, pitch float64) geom.Ring {
	r := pitch / 2.0
	ring := make(geom.Ring, 6)
	for k := 0; k < 6; k++ {
		angle := (60.0*float64(k) + 30.0) * math.Pi / 180.0
		ring[k] = geom.Point{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle)}
	}
	return ring
}

// Cell is a discretized survey cell, populated by Discretize; the sweep path
// and orientation are filled in by the lawnmower and decomposition stages.
type Cell struct {
	Index          uint32
	GeomMetric     geom.Ring
	CentroidMetric geom.Point
	CentroidGeo    geo.Point
	BBoxGeo        BBox
	OrientationDeg float64
	SweepPath      []geo.Point
	Reward         float32
}

// BBox is a geographic bounding box.
type BBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// PriorityRegion overrides the default reward (1.0) for cells whose centroid
// falls within it — a supplement to the base discretizer that lets callers
// bias ACO selection toward regions of interest (spec §3's Cell.reward
// field, exposed as a pluggable input rather than hardcoded).
type PriorityRegion struct {
	Region geom.Ring
	Reward float32
}

// Discretize builds the free-space grid and returns the filtered Cell set
// (metric centroid, geometry and the default reward 1.0; orientation and
// path are attached later, and ApplyPriority may override the reward).
// areaMetric and obstaclesMetric are already in the metric projection.
func Discretize(areaMetric geom.Ring, obstaclesMetric []geom.Ring, fp Footprint, gridType GridType, tauMinArea float64) []Cell {
	areaInner := areaMetric.Offset(-fp.BufferM)
	if len(areaInner) < 3 || areaInner.AbsArea() < 1e-9 {
		areaInner = areaMetric
	}

	obstaclesBuf := make([]geom.Ring, 0, len(obstaclesMetric))
	for _, o := range obstaclesMetric {
		obstaclesBuf = append(obstaclesBuf, o.Offset(fp.BufferM))
	}

	freeSpace := geom.FreeSpace{Outer: areaInner, Holes: obstaclesBuf}
	minx, miny, maxx, maxy := areaInner.Bounds()

	var centers []geom.Point
	switch gridType {
	case Hex:
		centers = HexGridCenters(minx, miny, maxx, maxy, fp.DeltaPerpM)
	default:
		centers = RegularGridCenters(minx, miny, maxx, maxy, fp.DeltaPerpM, fp.DeltaParM)
	}
	cellSide := fp.DeltaPerpM

	var cells []Cell
	var idx uint32
	for _, c := range centers {
		var c0 geom.Ring
		if gridType == Hex {
			c0 = HexCell(c, cellSide)
		} else {
			c0 = SquareCell(c, cellSide)
		}

		clip := freeSpace.ClipToWindow(c0)
		if clip.Empty || clip.Area < tauMinArea {
			continue
		}
		if !freeSpace.Contains(clip.Centroid) {
			continue
		}

		cells = append(cells, Cell{
			Index:          idx,
			GeomMetric:     clip.Outer,
			CentroidMetric: clip.Centroid,
			Reward:         1.0,
		})
		idx++
	}
	return cells
}

// ApplyPriority overrides rewards for cells whose metric centroid falls
// within a PriorityRegion (first match wins).
func ApplyPriority(cells []Cell, regions []PriorityRegion) {
	for i := range cells {
		for _, r := range regions {
			if r.Region.Contains(cells[i].CentroidMetric) {
				cells[i].Reward = r.Reward
				break
			}
		}
	}
}
