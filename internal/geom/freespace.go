package geom

import "math"

// FreeSpace is a polygon-with-holes region: the area of interest, buffered
// inward, with obstacles (buffered outward) removed.
type FreeSpace struct {
	Outer Ring
	Holes []Ring
}

// Contains reports whether pt lies in the outer ring and outside every hole.
func (f FreeSpace) Contains(pt Point) bool {
	if !f.Outer.Contains(pt) {
		return false
	}
	for _, h := range f.Holes {
		if h.Contains(pt) {
			return false
		}
	}
	return true
}

// ClipResult is the outcome of clipping a convex window against a FreeSpace:
// the clipped outer piece, the clipped hole pieces nested inside it, and the
// net (outer-minus-holes) area and centroid.
type ClipResult struct {
	Outer  Ring
	Holes  []Ring
	Area   float64
	Centroid Point
	Empty  bool
}

// ClipToWindow intersects the free space with a convex window (a grid cell)
// and returns the net area/centroid, per spec §4.3: "intersect with
// free_space, keep the largest component if multi, drop if area too small or
// centroid escapes". Sutherland-Hodgman clipping cannot truly split a result
// into disjoint components (see package docs), so "largest component" here
// degenerates to "the one clipped outer piece"; degenerate/empty results are
// reported via ClipResult.Empty.
func (f FreeSpace) ClipToWindow(window Ring) ClipResult {
	w := window.Normalized()

	outerClipped := ClipToConvex(f.Outer.Normalized(), w)
	outerArea := outerClipped.AbsArea()
	if len(outerClipped) < 3 || outerArea < 1e-9 {
		return ClipResult{Empty: true}
	}

	holeClipped := make([]Ring, 0, len(f.Holes))
	holeAreaTotal := 0.0
	for _, h := range f.Holes {
		hc := ClipToConvex(h.Normalized(), w)
		if len(hc) < 3 {
			continue
		}
		a := hc.AbsArea()
		if a < 1e-9 {
			continue
		}
		holeClipped = append(holeClipped, hc)
		holeAreaTotal += a
	}

	netArea := outerArea - holeAreaTotal
	if netArea <= 1e-9 {
		return ClipResult{Empty: true}
	}

	// Area-weighted centroid of outer minus holes (exact for holes properly
	// nested within the outer piece, which clipping against the same convex
	// window guarantees at the grid-cell working scale).
	oc := outerClipped.Centroid()
	cx := oc.X * outerArea
	cy := oc.Y * outerArea
	for _, hc := range holeClipped {
		hcArea := hc.AbsArea()
		hcc := hc.Centroid()
		cx -= hcc.X * hcArea
		cy -= hcc.Y * hcArea
	}

	return ClipResult{
		Outer:    outerClipped,
		Holes:    holeClipped,
		Area:     netArea,
		Centroid: Point{X: cx / netArea, Y: cy / netArea},
	}
}

// SegmentIntersectsRing reports whether the segment p1-p2 intersects the
// ring's boundary or lies with either endpoint inside it.
func SegmentIntersectsRing(p1, p2 Point, ring Ring) bool {
	if ring.Contains(p1) || ring.Contains(p2) {
		return true
	}
	n := len(ring)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if segmentsIntersect(p1, p2, a, b) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := cross(sub(p4, p3), sub(p1, p3))
	d2 := cross(sub(p4, p3), sub(p2, p3))
	d3 := cross(sub(p2, p1), sub(p3, p1))
	d4 := cross(sub(p2, p1), sub(p4, p1))

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if math.Abs(d1) < 1e-12 && onSegment(p3, p4, p1) {
		return true
	}
	if math.Abs(d2) < 1e-12 && onSegment(p3, p4, p2) {
		return true
	}
	if math.Abs(d3) < 1e-12 && onSegment(p1, p2, p3) {
		return true
	}
	if math.Abs(d4) < 1e-12 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X)-1e-9 <= p.X && p.X <= math.Max(a.X, b.X)+1e-9 &&
		math.Min(a.Y, b.Y)-1e-9 <= p.Y && p.Y <= math.Max(a.Y, b.Y)+1e-9
}

func sub(a, b Point) Point { return Point{X: a.X - b.X, Y: a.Y - b.Y} }
func cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }
