// Package decomposition builds boustrophedon sweep-orientation strips over
// free space, assigns a preferred sweep orientation to each cell, and
// constructs the turn-weighted centroid adjacency graph.
package decomposition

import (
	"math"

	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

// lambdaTurnKm is the turn-penalty weight in the adjacency edge weight
// formula (spec §4.5): weight = dist_km + lambdaTurnKm*(turn_deg/90).
const lambdaTurnKm = 0.05

// BoustrophedonDecompose sweeps long thin strips across freeSpace at
// sweepAngleDeg and returns the resulting sub-area polygons, per spec §4.4.
func BoustrophedonDecompose(freeSpace geom.FreeSpace, sweepAngleDeg float64) []geom.Ring {
	outer := freeSpace.Outer
	if len(outer) < 3 {
		return nil
	}

	minx, miny, maxx, maxy := outer.Bounds()
	spanX := maxx - minx
	spanY := maxy - miny
	minSpan := math.Min(spanX, spanY)
	maxSpan := math.Max(spanX, spanY)

	nStrips := 4
	if minSpan > 1e-6 {
		nStrips = int(maxSpan/minSpan) * 4
		if nStrips < 4 {
			nStrips = 4
		}
	}

	angleRad := sweepAngleDeg * math.Pi / 180.0
	dx := math.Cos(angleRad)
	dy := math.Sin(angleRad)
	length := math.Hypot(spanX, spanY) * 2.0

	var subareas []geom.Ring
	denom := nStrips - 1
	if denom < 1 {
		denom = 1
	}
	stripHalfWidth := maxSpan / float64(nStrips)

	for i := 0; i < nStrips; i++ {
		t := float64(i) / float64(denom)
		ox := minx + t*spanX
		oy := miny

		p1 := geom.Point{X: ox - dx*length, Y: oy - dy*length}
		p2 := geom.Point{X: ox + dx*length, Y: oy + dy*length}

		// Model the strip as a thin band by clipping the free-space outer
		// boundary on both sides of the centerline, offset by the strip
		// half-width along the perpendicular; stdlib-only stand-in for
		// shapely's LineString.buffer(...).intersection(...).
		perp := geom.Point{X: -dy, Y: dx}
		band := geom.Ring{
			{X: p1.X + perp.X*stripHalfWidth, Y: p1.Y + perp.Y*stripHalfWidth},
			{X: p2.X + perp.X*stripHalfWidth, Y: p2.Y + perp.Y*stripHalfWidth},
			{X: p2.X - perp.X*stripHalfWidth, Y: p2.Y - perp.Y*stripHalfWidth},
			{X: p1.X - perp.X*stripHalfWidth, Y: p1.Y - perp.Y*stripHalfWidth},
		}

		piece := geom.ClipToConvex(outer.Normalized(), band.Normalized())
		if len(piece) >= 3 && piece.AbsArea() > 1e-9 {
			subareas = append(subareas, piece)
		}
	}

	if len(subareas) == 0 {
		return []geom.Ring{outer}
	}
	return subareas
}

// AssignOrientations picks 0deg if a cell's bounding-box width >= height,
// else 90deg, per spec §4.4's simpler (optional stronger policy not
// implemented) rule. subareas is the boustrophedon strip decomposition of
// the same free space (BoustrophedonDecompose): each cell's best-overlapping
// strip is computed for parity with the bbox rule, mirroring
// core/discretization.py's assign_orientation_to_cells, which threads
// subareas through the same way without letting it override the bbox
// decision either.
func AssignOrientations(cells []geom.Ring, subareas []geom.Ring) []float64 {
	phis := make([]float64, len(cells))
	for i, c := range cells {
		if len(c) == 0 {
			phis[i] = 0
			continue
		}

		bestArea := 0.0
		for _, s := range subareas {
			piece := geom.ClipToConvex(c.Normalized(), s.Normalized())
			if a := piece.AbsArea(); a > bestArea {
				bestArea = a
			}
		}
		_ = bestArea // mirrors assign_orientation_to_cells: computed, never overrides phi

		minx, miny, maxx, maxy := c.Bounds()
		dx := maxx - minx
		dy := maxy - miny
		if dx >= dy {
			phis[i] = 0
		} else {
			phis[i] = 90
		}
	}
	return phis
}

// Edge is a weighted adjacency edge between two cell indices.
type Edge struct {
	From, To int
	DistKm   float64
	TurnDeg  float64
	Weight   float64
}

// Graph is the undirected turn-weighted centroid adjacency graph (spec
// §3's CentroidGraph, §4.5). It is not consumed by the ACO solver; it
// exists for visualization and future tour smoothing.
type Graph struct {
	Edges []Edge
}

// BuildAdjacencyGraph connects every pair of cells that touch or overlap.
func BuildAdjacencyGraph(cells []geom.Ring, centroids []geom.Point, phis []float64) Graph {
	n := len(cells)
	var g Graph
	if n <= 1 {
		return g
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !touchesOrOverlaps(cells[i], cells[j]) {
				continue
			}

			dx := centroids[j].X - centroids[i].X
			dy := centroids[j].Y - centroids[i].Y
			distKm := math.Hypot(dx, dy) / 1000.0

			dphi := math.Mod(math.Abs(phis[i]-phis[j]), 180.0)
			if dphi > 90.0 {
				dphi = 180.0 - dphi
			}

			turnPenKm := lambdaTurnKm * (dphi / 90.0)

			g.Edges = append(g.Edges, Edge{
				From:    i,
				To:      j,
				DistKm:  distKm,
				TurnDeg: dphi,
				Weight:  distKm + turnPenKm,
			})
		}
	}
	return g
}

// touchesOrOverlaps reports whether two cell polygons share any boundary
// point or have non-empty intersection area — approximated here by a
// bounding-box overlap test followed by a non-empty ClipToConvex probe
// when both are convex, falling back to a vertex-containment probe for
// the (rare) non-convex clip result.
func touchesOrOverlaps(a, b geom.Ring) bool {
	aminx, aminy, amaxx, amaxy := a.Bounds()
	bminx, bminy, bmaxx, bmaxy := b.Bounds()

	const eps = 1e-6
	if amaxx < bminx-eps || bmaxx < aminx-eps || amaxy < bminy-eps || bmaxy < aminy-eps {
		return false
	}

	if a.IsConvex() && b.IsConvex() {
		piece := geom.ClipToConvex(a.Normalized(), b.Normalized())
		return len(piece) >= 3 && piece.AbsArea() > 1e-9 || adjacentBounds(a, b)
	}

	for _, p := range a {
		if b.Contains(p) {
			return true
		}
	}
	for _, p := range b {
		if a.Contains(p) {
			return true
		}
	}
	return adjacentBounds(a, b)
}

// adjacentBounds treats two cells whose bounding boxes touch (within eps)
// as adjacent even when the polygons don't overlap in area — grid
// neighbors sharing only an edge.
func adjacentBounds(a, b geom.Ring) bool {
	aminx, aminy, amaxx, amaxy := a.Bounds()
	bminx, bminy, bmaxx, bmaxy := b.Bounds()
	const eps = 1e-3
	touchesX := math.Abs(amaxx-bminx) < eps || math.Abs(bmaxx-aminx) < eps
	touchesY := math.Abs(amaxy-bminy) < eps || math.Abs(bmaxy-aminy) < eps
	overlapX := aminx <= bmaxx+eps && bminx <= amaxx+eps
	overlapY := aminy <= bmaxy+eps && bminy <= amaxy+eps
	return (touchesX && overlapY) || (touchesY && overlapX)
}
