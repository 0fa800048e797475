// Package aco implements the Ant Colony Optimization orienteering solver:
// pheromone-guided ant construction under a single energy budget, 2-opt
// refinement, pheromone update, optional dynamic-weather edge refresh, and
// a greedy fallback when no ant completes a positive-score tour.
package aco

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// RefreshMode selects how the dynamic-weather energy refresh recomputes E.
type RefreshMode int

const (
	RefreshFull RefreshMode = iota
	RefreshPartial
)

// Config holds the ACO solver's tunable parameters (spec §4.8 defaults).
type Config struct {
	Ants       int
	Iterations int
	Alpha      float64
	Beta       float64
	Rho        float64
	Q0         float64
	Q          float64

	DynamicWeather  bool
	RefreshInterval int
	RefreshMode     RefreshMode
	RefreshFraction float64
}

// DefaultConfig returns the spec's default ACO parameters.
func DefaultConfig() Config {
	return Config{
		Ants:            20,
		Iterations:      20,
		Alpha:           1.0,
		Beta:            2.0,
		Rho:             0.1,
		Q0:              0.1,
		Q:               1.0,
		DynamicWeather:  false,
		RefreshInterval: 5,
		RefreshMode:     RefreshPartial,
		RefreshFraction: 0.15,
	}
}

// EnergyFn returns the directed (but symmetric in practice) leg energy
// between node indices i and j, closed over the caller's points/elevation/
// wind state.
type EnergyFn func(i, j int) float64

// EnergyBackFn returns the energy required to return to base from node i.
type EnergyBackFn func(i int) float64

// NoFlyFn reports whether the leg i->j crosses a no-fly obstacle.
type NoFlyFn func(i, j int) bool

// IterEvent is emitted after every ACO iteration (spec §6's AcoIter).
type IterEvent struct {
	Iteration int
	IterScore float64
	IterCost  float64
	IterTour  []int
	BestScore float64
	BestCost  float64
	BestTour  []int
}

// IterCallback receives each iteration's event; returning false requests
// cooperative cancellation (spec §5's job_id check at the sink).
type IterCallback func(IterEvent) bool

// Result is the solver's final output.
type Result struct {
	BestTour  []int
	BestScore float64
	BestCost  float64
}

// Point is a minimal coordinate pair used only for the distance surrogate,
// kept local so this package doesn't need to import internal/geo: index 0
// of the caller's slice is base, 1..n-1 are cell centroids.
type Point struct{ Lat, Lon float64 }

// Run executes the full ACO orienteering search.
func Run(
	points []Point,
	weights []float64,
	baseIdx int,
	energyFn EnergyFn,
	energyBackFn EnergyBackFn,
	noFlyFn NoFlyFn,
	budgetWh, reserveWh float64,
	cfg Config,
	rng *rand.Rand,
	onIter IterCallback,
) Result {
	n := len(points)
	if n == 0 {
		return Result{BestTour: nil, BestScore: 0, BestCost: 0}
	}

	if budgetWh <= 0 {
		budgetWh = 1e12
		reserveWh = 0
	}
	effBudget := math.Max(0, budgetWh-reserveWh)

	E := precomputeEnergyMatrix(n, energyFn)
	D := precomputeDistMatrix(points)
	tau := initialPheromone(n, rng)

	feasible := func(cur, nxt int, used float64) bool {
		if noFlyFn != nil && noFlyFn(cur, nxt) {
			return false
		}
		c := E.At(cur, nxt)
		b := energyBackFn(nxt)
		if c <= 0 || b <= 0 {
			return false
		}
		return used+c+b <= effBudget
	}

	crossesNoFly := func(tour []int) bool {
		if noFlyFn == nil {
			return false
		}
		for k := 0; k+1 < len(tour); k++ {
			if noFlyFn(tour[k], tour[k+1]) {
				return true
			}
		}
		return false
	}

	uniform := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	bestTour := []int{baseIdx, baseIdx}
	bestScore := 0.0
	bestCost := 1e12

	for it := 0; it < cfg.Iterations; it++ {
		if cfg.DynamicWeather && it > 0 && cfg.RefreshInterval > 0 && it%cfg.RefreshInterval == 0 {
			switch cfg.RefreshMode {
			case RefreshFull:
				E = precomputeEnergyMatrix(n, energyFn)
				tau.Scale(0.9, tau)
			default:
				edges := int(cfg.RefreshFraction * float64(n) * float64(n))
				if edges < 1 {
					edges = 1
				}
				for k := 0; k < edges; k++ {
					i := rng.Intn(n)
					j := rng.Intn(n)
					if i == j {
						continue
					}
					e := energyFn(i, j)
					if e <= 0 {
						e = 1e-6
					}
					E.SetSym(i, j, e)
				}
				tau.Scale(0.95, tau)
			}
		}

		iterTour, iterScore, iterCost, found := runAnts(n, baseIdx, weights, E, D, tau, cfg, feasible, energyBackFn, effBudget, uniform)
		if !found {
			if onIter != nil && !onIter(IterEvent{Iteration: it + 1, BestScore: bestScore, BestCost: bestCost, BestTour: append([]int(nil), bestTour...)}) {
				break
			}
			continue
		}

		if optTour, optCost := twoOpt(iterTour, E, effBudget); !crossesNoFly(optTour) {
			iterTour, iterCost = optTour, optCost
		}

		if iterScore > bestScore || (iterScore == bestScore && iterCost < bestCost) {
			bestScore = iterScore
			bestCost = iterCost
			bestTour = append([]int(nil), iterTour...)
		}

		decayPheromone(tau, cfg.Rho)
		depositPheromone(tau, iterTour, iterCost, cfg.Q)

		if onIter != nil {
			cont := onIter(IterEvent{
				Iteration: it + 1,
				IterScore: iterScore,
				IterCost:  iterCost,
				IterTour:  append([]int(nil), iterTour...),
				BestScore: bestScore,
				BestCost:  bestCost,
				BestTour:  append([]int(nil), bestTour...),
			})
			if !cont {
				break
			}
		}
	}

	if bestScore <= 0 || len(bestTour) <= 2 {
		bestTour, bestScore, bestCost = greedyFallback(n, baseIdx, weights, E, energyBackFn, effBudget)
	}

	return Result{BestTour: bestTour, BestScore: bestScore, BestCost: bestCost}
}

func precomputeEnergyMatrix(n int, energyFn EnergyFn) *mat.SymDense {
	E := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			e := energyFn(i, j)
			if e <= 0 {
				e = 1e-6
			}
			E.SetSym(i, j, e)
		}
	}
	return E
}

func precomputeDistMatrix(points []Point) *mat.SymDense {
	n := len(points)
	D := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dlat := points[i].Lat - points[j].Lat
			dlon := points[i].Lon - points[j].Lon
			D.SetSym(i, j, math.Hypot(dlat, dlon))
		}
	}
	return D
}

func initialPheromone(n int, rng *rand.Rand) *mat.Dense {
	tau := mat.NewDense(n, n, nil)
	u := distuv.Uniform{Min: 0, Max: 0.02, Src: rng}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tau.Set(i, j, 1.0+u.Rand())
		}
	}
	return tau
}

func decayPheromone(tau *mat.Dense, rho float64) {
	tau.Scale(1.0-rho, tau)
}

func depositPheromone(tau *mat.Dense, tour []int, cost float64, q float64) {
	d := q / (cost + 1e-9)
	for k := 0; k+1 < len(tour); k++ {
		u, v := tour[k], tour[k+1]
		tau.Set(u, v, tau.At(u, v)+d)
		tau.Set(v, u, tau.At(v, u)+d)
	}
}

func runAnts(
	n, baseIdx int,
	weights []float64,
	E *mat.SymDense,
	D *mat.SymDense,
	tau *mat.Dense,
	cfg Config,
	feasible func(cur, nxt int, used float64) bool,
	energyBackFn EnergyBackFn,
	effBudget float64,
	uniform distuv.Uniform,
) (tour []int, score, cost float64, found bool) {
	bestScore := -1.0
	bestCost := 1e12
	var bestTour []int

	for a := 0; a < cfg.Ants; a++ {
		visited := make([]bool, n)
		visited[baseIdx] = true

		cur := baseIdx
		used := 0.0
		antScore := 0.0
		antTour := []int{baseIdx}

		for {
			var candidates []int
			for j := 0; j < n; j++ {
				if j == baseIdx || visited[j] {
					continue
				}
				if feasible(cur, j, used) {
					candidates = append(candidates, j)
				}
			}
			if len(candidates) == 0 {
				break
			}

			type weighted struct {
				j   int
				val float64
			}
			probs := make([]weighted, 0, len(candidates))
			sum := 0.0
			for _, j := range candidates {
				eta := 1.0 / math.Pow(D.At(cur, j)+1e-12, cfg.Beta)
				val := math.Pow(tau.At(cur, j), cfg.Alpha) * eta
				probs = append(probs, weighted{j: j, val: val})
				sum += val
			}
			if sum <= 0 {
				break
			}

			var chosen int
			if uniform.Rand() < cfg.Q0 {
				chosen = candidates[0]
				bestVal := -1.0
				for _, j := range candidates {
					val := math.Pow(tau.At(cur, j), cfg.Alpha) / math.Pow(D.At(cur, j)+1e-12, cfg.Beta)
					if val > bestVal {
						bestVal = val
						chosen = j
					}
				}
			} else {
				r := uniform.Rand() * sum
				acc := 0.0
				chosen = probs[len(probs)-1].j
				for _, w := range probs {
					acc += w.val
					if acc >= r {
						chosen = w.j
						break
					}
				}
			}

			used += E.At(cur, chosen)
			antScore += weights[chosen]
			visited[chosen] = true
			antTour = append(antTour, chosen)
			cur = chosen
		}

		used += energyBackFn(cur)
		antTour = append(antTour, baseIdx)

		if used <= effBudget && (antScore > bestScore || (antScore == bestScore && used < bestCost)) {
			bestTour = antTour
			bestScore = antScore
			bestCost = used
		}
	}

	if bestTour == nil {
		return nil, 0, 0, false
	}
	return bestTour, bestScore, bestCost, true
}

func routeCost(tour []int, E *mat.SymDense) float64 {
	if len(tour) <= 1 {
		return 0
	}
	sum := 0.0
	for k := 0; k+1 < len(tour); k++ {
		sum += E.At(tour[k], tour[k+1])
	}
	return sum
}

func twoOpt(tour []int, E *mat.SymDense, effBudget float64) ([]int, float64) {
	if len(tour) <= 4 {
		return tour, routeCost(tour, E)
	}

	best := append([]int(nil), tour...)
	bestCost := routeCost(best, E)

	improved := true
	for improved {
		improved = false
	scan:
		for i := 1; i < len(best)-2; i++ {
			for j := i + 2; j < len(best)-1; j++ {
				cand := append([]int(nil), best...)
				reverse(cand[i:j])
				c := routeCost(cand, E)
				if c < bestCost && c <= effBudget {
					best = cand
					bestCost = c
					improved = true
					break scan
				}
			}
		}
	}
	return best, bestCost
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func greedyFallback(n, baseIdx int, weights []float64, E *mat.SymDense, energyBackFn EnergyBackFn, effBudget float64) ([]int, float64, float64) {
	order := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != baseIdx {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]] > weights[order[b]]
	})

	tour := []int{baseIdx}
	cur := baseIdx
	used := 0.0
	score := 0.0

	for _, j := range order {
		c := E.At(cur, j)
		b := energyBackFn(j)
		if used+c+b > effBudget {
			continue
		}
		used += c
		score += weights[j]
		tour = append(tour, j)
		cur = j
	}

	used += energyBackFn(cur)
	tour = append(tour, baseIdx)
	return tour, score, used
}
