// Package lawnmower synthesizes per-cell sweep paths: rotate the cell to its
// preferred orientation, lay horizontal stripes across it, clip each stripe
// to the cell, and concatenate the resulting segments in snake order.
package lawnmower

import (
	"sort"

	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

// BuildPath synthesizes the snake-ordered sweep path for a single cell, in
// the same metric frame as cellMetric, per spec §4.6.
//
//   - orientationDeg: preferred sweep azimuth.
//   - swathWidthM: sensor swath width W, used to overhang stripes past the
//     cell bounds so edge coverage isn't clipped short.
//   - deltaPerpM: lane spacing (footprint.Footprint.DeltaPerpM).
func BuildPath(cellMetric geom.Ring, orientationDeg, swathWidthM, deltaPerpM float64) []geom.Point {
	if len(cellMetric) < 3 {
		return nil
	}

	centroid := cellMetric.Centroid()
	phi := orientationDeg

	rotated := cellMetric.Rotate(centroid, -phi)
	minx, miny, maxx, maxy := rotated.Bounds()
	height := maxy - miny
	if height < 1.0 {
		return nil
	}

	laneStep := deltaPerpM
	if laneStep < 1.0 {
		laneStep = 1.0
	}
	nLanes := int(height/laneStep) + 1
	if nLanes < 2 {
		nLanes = 2
	}

	overhang := 3.0 * swathWidthM

	var segs []geom.LineSegment
	for i := 0; i < nLanes; i++ {
		y := miny + float64(i)*laneStep
		p1 := geom.Point{X: minx - overhang, Y: y}
		p2 := geom.Point{X: maxx + overhang, Y: y}
		segs = append(segs, geom.ClipLineToRing(p1, p2, rotated)...)
	}
	if len(segs) == 0 {
		return nil
	}

	sort.SliceStable(segs, func(i, j int) bool {
		return segCentroidY(segs[i]) < segCentroidY(segs[j])
	})

	var result []geom.Point
	flip := false
	for _, s := range segs {
		pts := []geom.Point{s.A, s.B}
		if flip {
			pts[0], pts[1] = pts[1], pts[0]
		}
		result = append(result, pts...)
		flip = !flip
	}
	if len(result) == 0 {
		return nil
	}

	out := make([]geom.Point, len(result))
	for i, p := range result {
		out[i] = geom.RotatePoint(p, centroid, phi)
	}
	return out
}

func segCentroidY(s geom.LineSegment) float64 {
	return (s.A.Y + s.B.Y) / 2.0
}
