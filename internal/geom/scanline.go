package geom

import "sort"

// LineSegment is a straight segment between two points.
type LineSegment struct {
	A, B Point
}

// ClipLineToRing intersects the segment p1-p2 against ring's boundary and
// returns the interior sub-segments, ordered along p1->p2. This is a
// scanline-style polygon clip (collect boundary crossings, pair them up
// alternately) rather than true Sutherland-Hodgman — it tolerates
// non-convex (but simple) rings, which the lawnmower stripe/cell
// intersection needs since a clipped cell is not guaranteed convex.
func ClipLineToRing(p1, p2 Point, ring Ring) []LineSegment {
	n := len(ring)
	if n < 3 {
		return nil
	}

	var ts []float64
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if t, ok := lineSegmentParam(p1, p2, a, b); ok {
			ts = append(ts, t)
		}
	}
	if len(ts) < 2 {
		return nil
	}

	sort.Float64s(ts)
	var dedup []float64
	const eps = 1e-9
	for _, t := range ts {
		if len(dedup) > 0 && t-dedup[len(dedup)-1] < eps {
			continue
		}
		dedup = append(dedup, t)
	}
	if len(dedup)%2 != 0 {
		// An odd crossing count means a tangential touch at a vertex;
		// drop the last spurious crossing rather than misattribute parity.
		dedup = dedup[:len(dedup)-1]
	}

	var segs []LineSegment
	for i := 0; i+1 < len(dedup); i += 2 {
		segs = append(segs, LineSegment{
			A: lerp(p1, p2, dedup[i]),
			B: lerp(p1, p2, dedup[i+1]),
		})
	}
	return segs
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// lineSegmentParam returns the parameter t along p1->p2 (clamped to [0,1])
// at which it crosses segment a-b (also required to lie within [0,1] of
// a-b), or ok=false if parallel or out of range.
func lineSegmentParam(p1, p2, a, b Point) (t float64, ok bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := b.X-a.X, b.Y-a.Y

	denom := d1x*d2y - d1y*d2x
	if denom > -1e-15 && denom < 1e-15 {
		return 0, false
	}

	wx, wy := a.X-p1.X, a.Y-p1.Y
	tt := (wx*d2y - wy*d2x) / denom
	ss := (wx*d1y - wy*d1x) / denom

	if tt < -1e-9 || tt > 1+1e-9 || ss < -1e-9 || ss > 1+1e-9 {
		return 0, false
	}
	if tt < 0 {
		tt = 0
	}
	if tt > 1 {
		tt = 1
	}
	return tt, true
}
