package aco

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// gridPoints lays out a base plus n equally spaced points along a line, so
// energy and distance are simple linear functions of index distance.
func gridPoints(n int) []Point {
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{Lat: 50.0, Lon: 30.0 + float64(i)*0.01}
	}
	return pts
}

func linearEnergy(points []Point) EnergyFn {
	return func(i, j int) float64 {
		return math.Abs(float64(i-j)) * 1.0
	}
}

func TestRunProducesClosedFeasibleTour(t *testing.T) {
	pts := gridPoints(6)
	weights := []float64{0, 1, 1, 1, 1, 1}
	energyFn := linearEnergy(pts)
	energyBackFn := func(i int) float64 { return energyFn(i, 0) }

	cfg := DefaultConfig()
	cfg.Ants = 5
	cfg.Iterations = 5
	rng := rand.New(rand.NewSource(42))

	res := Run(pts, weights, 0, energyFn, energyBackFn, nil, 100, 0, cfg, rng, nil)

	if len(res.BestTour) < 2 {
		t.Fatalf("expected a non-trivial tour, got %v", res.BestTour)
	}
	if res.BestTour[0] != 0 || res.BestTour[len(res.BestTour)-1] != 0 {
		t.Fatalf("expected tour to start/end at base, got %v", res.BestTour)
	}
	if res.BestCost > 100 {
		t.Fatalf("expected cost within budget, got %v", res.BestCost)
	}

	seen := map[int]bool{}
	for _, idx := range res.BestTour[1 : len(res.BestTour)-1] {
		if seen[idx] {
			t.Fatalf("expected no interior duplicates, got %v", res.BestTour)
		}
		seen[idx] = true
	}
}

func TestRunZeroBudgetFallsBackToTrivialTour(t *testing.T) {
	pts := gridPoints(4)
	weights := []float64{0, 1, 1, 1}
	energyFn := linearEnergy(pts)
	energyBackFn := func(i int) float64 { return energyFn(i, 0) }

	cfg := DefaultConfig()
	cfg.Ants = 3
	cfg.Iterations = 3
	rng := rand.New(rand.NewSource(1))

	res := Run(pts, weights, 0, energyFn, energyBackFn, nil, 0.01, 0, cfg, rng, nil)
	if res.BestScore != 0 {
		t.Fatalf("expected zero score under an infeasible budget, got %v", res.BestScore)
	}
}

func TestRunNeverCrossesABlockedLeg(t *testing.T) {
	pts := gridPoints(6)
	weights := []float64{0, 1, 1, 1, 1, 1}
	energyFn := linearEnergy(pts)
	energyBackFn := func(i int) float64 { return energyFn(i, 0) }

	// Block the direct leg between nodes 1 and 2 specifically.
	blocked := func(i, j int) bool {
		return (i == 1 && j == 2) || (i == 2 && j == 1)
	}

	cfg := DefaultConfig()
	cfg.Ants = 10
	cfg.Iterations = 10
	rng := rand.New(rand.NewSource(7))

	res := Run(pts, weights, 0, energyFn, energyBackFn, blocked, 100, 0, cfg, rng, nil)

	for k := 0; k+1 < len(res.BestTour); k++ {
		if blocked(res.BestTour[k], res.BestTour[k+1]) {
			t.Fatalf("returned tour crosses a blocked leg: %v", res.BestTour)
		}
	}
}

func TestRunIterCallbackMonotonicBestScore(t *testing.T) {
	pts := gridPoints(8)
	weights := []float64{0, 1, 2, 3, 1, 2, 1, 1}
	energyFn := linearEnergy(pts)
	energyBackFn := func(i int) float64 { return energyFn(i, 0) }

	cfg := DefaultConfig()
	cfg.Ants = 8
	cfg.Iterations = 10
	rng := rand.New(rand.NewSource(99))

	var lastBestScore float64
	var lastBestCost float64
	first := true

	Run(pts, weights, 0, energyFn, energyBackFn, nil, 50, 0, cfg, rng, func(ev IterEvent) bool {
		if !first {
			if ev.BestScore < lastBestScore {
				t.Fatalf("best_score decreased: %v -> %v", lastBestScore, ev.BestScore)
			}
			if ev.BestScore == lastBestScore && ev.BestCost > lastBestCost+1e-9 {
				t.Fatalf("best_cost increased at equal best_score: %v -> %v", lastBestCost, ev.BestCost)
			}
		}
		lastBestScore = ev.BestScore
		lastBestCost = ev.BestCost
		first = false
		return true
	})
}

func TestRunCancellationStopsIterations(t *testing.T) {
	pts := gridPoints(6)
	weights := []float64{0, 1, 1, 1, 1, 1}
	energyFn := linearEnergy(pts)
	energyBackFn := func(i int) float64 { return energyFn(i, 0) }

	cfg := DefaultConfig()
	cfg.Ants = 4
	cfg.Iterations = 20
	rng := rand.New(rand.NewSource(3))

	calls := 0
	Run(pts, weights, 0, energyFn, energyBackFn, nil, 100, 0, cfg, rng, func(ev IterEvent) bool {
		calls++
		return ev.Iteration < 2
	})
	if calls > 2 {
		t.Fatalf("expected iteration to stop shortly after cancellation, got %d callbacks", calls)
	}
}

// TestTwoOptRemovesCrossing checks 2-opt against a deliberately crossed
// baseline tour around a unit square: visiting the corners out of order
// (base -> C -> B -> D -> base) crosses the diagonals and costs more than
// the uncrossed perimeter walk.
func TestTwoOptRemovesCrossing(t *testing.T) {
	corners := []Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}
	n := len(corners)
	E := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dlat := corners[i].Lat - corners[j].Lat
			dlon := corners[i].Lon - corners[j].Lon
			E.SetSym(i, j, math.Hypot(dlat, dlon))
		}
	}

	crossed := []int{0, 2, 1, 3, 0}
	crossedCost := routeCost(crossed, E)

	fixed, fixedCost := twoOpt(crossed, E, 1e12)

	if fixedCost >= crossedCost {
		t.Fatalf("expected 2-opt to reduce cost below %v, got %v for tour %v", crossedCost, fixedCost, fixed)
	}

	want := []int{0, 1, 2, 3, 0}
	if !reflect.DeepEqual(fixed, want) {
		t.Fatalf("expected the uncrossed perimeter tour %v, got %v", want, fixed)
	}
}

// TestRunDynamicWeatherRefreshesEnergyMatrix exercises Config.DynamicWeather:
// a rising headwind makes the return leg from the far node unaffordable
// partway through the run, and the full-refresh mode must pick it up via
// the periodic precomputeEnergyMatrix call rather than solving against a
// stale matrix for the whole run.
func TestRunDynamicWeatherRefreshesEnergyMatrix(t *testing.T) {
	pts := gridPoints(4)
	weights := []float64{0, 1, 1, 1}

	headwindKmh := 0.0
	energyFn := func(i, j int) float64 {
		base := math.Abs(float64(i - j))
		if j == 0 || i == 0 {
			return base + headwindKmh
		}
		return base
	}
	energyBackFn := func(i int) float64 { return energyFn(i, 0) }

	cfg := DefaultConfig()
	cfg.Ants = 4
	cfg.Iterations = 6
	cfg.DynamicWeather = true
	cfg.RefreshInterval = 2
	cfg.RefreshMode = RefreshFull
	rng := rand.New(rand.NewSource(11))

	var bestScoreAtRefresh float64
	iterations := 0
	res := Run(pts, weights, 0, energyFn, energyBackFn, nil, 5, 0, cfg, rng, func(ev IterEvent) bool {
		iterations++
		if ev.Iteration == 2 {
			headwindKmh = 100
			bestScoreAtRefresh = ev.BestScore
		}
		return true
	})

	if iterations != cfg.Iterations {
		t.Fatalf("expected %d iteration callbacks, got %d", cfg.Iterations, iterations)
	}
	if res.BestCost > 5 {
		t.Fatalf("expected best tour to respect the budget even after the mid-run refresh, got cost %v", res.BestCost)
	}
	if res.BestScore > bestScoreAtRefresh {
		t.Fatalf("expected the post-refresh headwind to block further improvement: score at refresh %v, final %v", bestScoreAtRefresh, res.BestScore)
	}
}
