// Package energy implements the per-leg Wh energy model used by the ACO
// solver and the stitcher: distance, wind-along-track, payload and
// elevation-delta terms combined into a single leg cost.
package energy

import (
	"math"

	"github.com/PossumXI/Asgard/Condor/internal/geo"
)

// Epsilon is the floor LegWh clamps a leg's energy to (spec §3 invariant on
// EnergyMatrix). A leg shorter than 1e-6 km returns 0 before the clamp.
const Epsilon = 1e-6

// Model holds the aerodynamic parameters a leg's energy depends on.
type Model struct {
	SpeedKmh  float64
	PayloadKg float64
}

// DefaultModel returns a reasonable default survey-drone model.
func DefaultModel() Model {
	return Model{SpeedKmh: 40.0, PayloadKg: 0.0}
}

// Wind is a snapshot of the along-track wind state at plan time.
type Wind struct {
	SpeedMs float64
	FromDeg float64
}

// AlongTrackKmh returns the wind component along the given track bearing,
// in km/h; headwind is negative.
func (w Wind) AlongTrackKmh(trackDeg float64) float64 {
	toDir := math.Mod(w.FromDeg+180.0, 360.0)
	rel := math.Mod(toDir-trackDeg+540.0, 360.0) - 180.0
	relRad := rel * math.Pi / 180.0
	vKmh := w.SpeedMs * 3.6
	return vKmh * math.Cos(relRad)
}

// PerKmWh returns the horizontal energy cost per kilometer, before the
// leg distance is applied.
func (m Model) PerKmWh(windAlongKmh float64) float64 {
	const a, b = 6.0, 0.06
	base := a + b*m.SpeedKmh*m.SpeedKmh

	windFactor := 1.0 + (-windAlongKmh)/200.0
	if windFactor < 0.7 {
		windFactor = 0.7
	}
	if windFactor > 1.5 {
		windFactor = 1.5
	}
	payloadFactor := 1.0 + 0.03*m.PayloadKg

	return base * windFactor * payloadFactor
}

// LegWh computes the total leg energy in Wh between p1 (elevation h1) and
// p2 (elevation h2), per spec §4.2.
func (m Model) LegWh(p1, p2 geo.Point, h1, h2 float64, w Wind) float64 {
	dKm := geo.PlanarDistanceKm(p1, p2)
	if dKm < 1e-6 {
		return 0
	}

	track := geo.BearingDeg(p1, p2)
	wAlong := w.AlongTrackKmh(track)
	horizontal := m.PerKmWh(wAlong) * dKm

	dh := h2 - h1
	var vertical float64
	if dh > 0 {
		vertical = dh * 0.12
	} else {
		vertical = math.Abs(dh) * 0.03
	}

	total := horizontal + vertical
	if total < Epsilon {
		return Epsilon
	}
	return total
}
