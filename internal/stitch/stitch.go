// Package stitch concatenates per-cell sweep paths into a single coverage
// polyline, inserting forced returns to base whenever the remaining battery
// range can't cover the next cell plus its own return leg.
package stitch

import "github.com/PossumXI/Asgard/Condor/internal/geo"

// Config holds the stitcher's range parameters, derived from the energy
// budget (spec §4.9): battery_km = usable_energy_wh * DefaultKmPerWh,
// reserve_km = 0.1 * battery_km.
type Config struct {
	BatteryKm float64
	ReserveKm float64
}

// DefaultKmPerWh is the approximate km-per-Wh conversion used to turn the
// energy budget into a range budget for stitching.
const DefaultKmPerWh = 0.015

// NewConfig derives a Config from a usable energy budget in Wh.
func NewConfig(usableEnergyWh float64) Config {
	batteryKm := usableEnergyWh * DefaultKmPerWh
	return Config{
		BatteryKm: batteryKm,
		ReserveKm: 0.1 * batteryKm,
	}
}

const epsilonKm = 1e-6

// Paths concatenates the ordered cell sweep paths into one coverage route,
// per spec §4.9.
func Paths(cellPaths [][]geo.Point, base geo.Point, cfg Config) []geo.Point {
	var mission []geo.Point
	remain := cfg.BatteryKm
	pos := base

	add := func(pts []geo.Point) {
		if len(pts) == 0 {
			return
		}
		mission = append(mission, pts...)
		pos = pts[len(pts)-1]
	}

	for _, cellPath := range cellPaths {
		if len(cellPath) == 0 {
			continue
		}

		path := orientTowards(pos, cellPath)

		need := geo.PlanarDistanceKm(pos, path[0]) + intraPathLength(path)

		returnLegKm := geo.PlanarDistanceKm(path[len(path)-1], base)
		reserve := cfg.ReserveKm
		if returnLegKm > reserve {
			reserve = returnLegKm
		}

		if remain < need+reserve {
			if geo.PlanarDistanceKm(pos, base) > epsilonKm {
				add([]geo.Point{pos, base})
			}
			remain = cfg.BatteryKm
			pos = base
		}

		if geo.PlanarDistanceKm(pos, path[0]) > epsilonKm {
			add([]geo.Point{pos, path[0]})
		}

		add(path)
		remain -= need
	}

	if geo.PlanarDistanceKm(pos, base) > epsilonKm {
		add([]geo.Point{pos, base})
	}

	return mission
}

// orientTowards returns path as-is or reversed, whichever endpoint is
// closer to pos.
func orientTowards(pos geo.Point, path []geo.Point) []geo.Point {
	if geo.PlanarDistanceKm(pos, path[0]) <= geo.PlanarDistanceKm(pos, path[len(path)-1]) {
		return path
	}
	rev := make([]geo.Point, len(path))
	for i, p := range path {
		rev[len(path)-1-i] = p
	}
	return rev
}

func intraPathLength(path []geo.Point) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		total += geo.PlanarDistanceKm(path[i], path[i+1])
	}
	return total
}

// RouteLengthKm sums the planar length of a polyline.
func RouteLengthKm(route []geo.Point) float64 {
	return intraPathLength(route)
}
