// Package nofly builds a spatial index over no-fly obstacle polygons and
// answers fast segment-intersection queries against it.
//
// The reference corpus has no R-tree implementation in Go (confirmed by
// searching every example module's go.mod for orb/go-geom/rtreego/s2 and
// finding none), so the index here is a flat bounding-box prefilter over a
// linear scan — still sub-quadratic in practice for the obstacle counts this
// planner expects, and the only part of the package not grounded in a
// third-party library (see DESIGN.md).
package nofly

import (
	"github.com/PossumXI/Asgard/Condor/internal/geo"
	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

// Obstacle is a validated no-fly polygon in the geographic frame.
type Obstacle struct {
	Ring                   geom.Ring
	MinX, MinY, MaxX, MaxY float64
}

// Index is a bounding-box-prefiltered collection of validated obstacles.
type Index struct {
	obstacles []Obstacle
}

// SafePolygons filters raw rings down to valid, non-degenerate (≥3 vertex)
// polygons, discarding malformed entries silently — per spec §4.7 and the
// original's _safe_polygons.
func SafePolygons(raw []geom.Ring) []geom.Ring {
	out := make([]geom.Ring, 0, len(raw))
	for _, r := range raw {
		if len(r) < 3 {
			continue
		}
		if r.AbsArea() < 1e-12 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Build constructs an Index from raw geographic obstacle rings (points are
// (lat, lon) converted to geom.Point as (lon, lat) for consistent x/y
// ordering with the rest of the geom package).
func Build(raw [][]geo.Point) *Index {
	idx := &Index{}
	for _, pts := range raw {
		ring := toRing(pts)
		safe := SafePolygons([]geom.Ring{ring})
		if len(safe) == 0 {
			continue
		}
		r := safe[0]
		minx, miny, maxx, maxy := r.Bounds()
		idx.obstacles = append(idx.obstacles, Obstacle{Ring: r, MinX: minx, MinY: miny, MaxX: maxx, MaxY: maxy})
	}
	return idx
}

func toRing(pts []geo.Point) geom.Ring {
	ring := make(geom.Ring, len(pts))
	for i, p := range pts {
		ring[i] = geom.Point{X: p.Lon, Y: p.Lat}
	}
	return ring
}

// Intersects reports whether the geographic segment p1-p2 intersects any
// indexed obstacle. A nil/empty Index always reports false, matching the
// original's "rtree is None" fail-open behavior.
func (idx *Index) Intersects(p1, p2 geo.Point) bool {
	if idx == nil || len(idx.obstacles) == 0 {
		return false
	}

	minx, maxx := p1.Lon, p2.Lon
	if minx > maxx {
		minx, maxx = maxx, minx
	}
	miny, maxy := p1.Lat, p2.Lat
	if miny > maxy {
		miny, maxy = maxy, miny
	}

	a := geom.Point{X: p1.Lon, Y: p1.Lat}
	b := geom.Point{X: p2.Lon, Y: p2.Lat}

	for _, ob := range idx.obstacles {
		if maxx < ob.MinX || minx > ob.MaxX || maxy < ob.MinY || miny > ob.MaxY {
			continue
		}
		if geom.SegmentIntersectsRing(a, b, ob.Ring) {
			return true
		}
	}
	return false
}

// Len returns the number of validated obstacles in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.obstacles)
}
