package decomposition

import (
	"testing"

	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

func square(cx, cy, half float64) geom.Ring {
	return geom.Ring{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}
}

func TestBoustrophedonDecomposeNonEmpty(t *testing.T) {
	fs := geom.FreeSpace{Outer: square(0, 0, 100)}
	subareas := BoustrophedonDecompose(fs, 0)
	if len(subareas) == 0 {
		t.Fatalf("expected non-empty decomposition")
	}
}

func TestAssignOrientationsWideVsTall(t *testing.T) {
	wide := geom.Ring{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 10}, {X: 0, Y: 10}}
	tall := geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 100}, {X: 0, Y: 100}}
	phis := AssignOrientations([]geom.Ring{wide, tall}, nil)
	if phis[0] != 0 {
		t.Fatalf("expected wide cell orientation 0, got %v", phis[0])
	}
	if phis[1] != 90 {
		t.Fatalf("expected tall cell orientation 90, got %v", phis[1])
	}
}

func TestAssignOrientationsIgnoresSubareasForDecision(t *testing.T) {
	wide := geom.Ring{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 10}, {X: 0, Y: 10}}
	fs := geom.FreeSpace{Outer: square(50, 5, 60)}
	subareas := BoustrophedonDecompose(fs, 90)

	phis := AssignOrientations([]geom.Ring{wide}, subareas)
	if phis[0] != 0 {
		t.Fatalf("expected bbox rule to still pick orientation 0 regardless of strip overlap, got %v", phis[0])
	}
}

func TestBuildAdjacencyGraphConnectsTouchingCells(t *testing.T) {
	c1 := square(0, 0, 10)
	c2 := square(20, 0, 10) // touches at x=10
	c3 := square(1000, 1000, 10)

	cells := []geom.Ring{c1, c2, c3}
	centroids := []geom.Point{c1.Centroid(), c2.Centroid(), c3.Centroid()}
	phis := AssignOrientations(cells, nil)

	g := BuildAdjacencyGraph(cells, centroids, phis)

	foundAdjacent := false
	for _, e := range g.Edges {
		if (e.From == 0 && e.To == 1) || (e.From == 1 && e.To == 0) {
			foundAdjacent = true
		}
		if e.TurnDeg < 0 || e.TurnDeg > 90 {
			t.Fatalf("turn_deg out of range: %v", e.TurnDeg)
		}
	}
	if !foundAdjacent {
		t.Fatalf("expected cells 0 and 1 to be adjacent")
	}

	for _, e := range g.Edges {
		if (e.From == 2 || e.To == 2) {
			t.Fatalf("expected far cell 2 to have no edges, found %+v", e)
		}
	}
}
