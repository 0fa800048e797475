package footprint

import (
	"math"
	"testing"

	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

func TestComputeFootprint(t *testing.T) {
	fp := Compute(100, 60, 0.2, 0.2, 0)
	wantW := 2.0 * 100 * math.Tan(30*math.Pi/180.0)
	if math.Abs(fp.SwathWidthM-wantW) > 1e-6 {
		t.Fatalf("W = %v, want %v", fp.SwathWidthM, wantW)
	}
	wantPerp := wantW * 0.8
	if math.Abs(fp.DeltaPerpM-wantPerp) > 1e-6 {
		t.Fatalf("DeltaPerp = %v, want %v", fp.DeltaPerpM, wantPerp)
	}
}

func TestComputeFootprintExplicitCellSize(t *testing.T) {
	fp := Compute(100, 60, 0.2, 0.2, 0.1)
	if math.Abs(fp.DeltaPerpM-100) > 1e-6 {
		t.Fatalf("DeltaPerp = %v, want 100 (0.1km)", fp.DeltaPerpM)
	}
}

func TestRegularGridCentersCoversBounds(t *testing.T) {
	centers := RegularGridCenters(0, 0, 100, 100, 25, 25)
	if len(centers) == 0 {
		t.Fatalf("expected non-empty grid")
	}
	for _, c := range centers {
		if c.X < -1e-9 || c.X > 100+1e-9 || c.Y < -1e-9 || c.Y > 100+1e-9 {
			t.Fatalf("center out of bounds: %+v", c)
		}
	}
}

func TestSquareCellArea(t *testing.T) {
	c := SquareCell(geom.Point{X: 0, Y: 0}, 10)
	if math.Abs(c.AbsArea()-100) > 1e-9 {
		t.Fatalf("area = %v, want 100", c.AbsArea())
	}
}

func TestHexCellVertexCount(t *testing.T) {
	c := HexCell(geom.Point{X: 0, Y: 0}, 10)
	if len(c) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(c))
	}
	if c.AbsArea() <= 0 {
		t.Fatalf("expected positive hex area")
	}
}

func TestDiscretizeProducesCellsWithinFreeSpace(t *testing.T) {
	area := SquareCell(geom.Point{X: 0, Y: 0}, 200)
	fp := Compute(100, 60, 0.2, 0.2, 0.05)

	cells := Discretize(area, nil, fp, Square, 10.0)
	if len(cells) == 0 {
		t.Fatalf("expected at least one cell")
	}
	for _, c := range cells {
		if math.Abs(c.CentroidMetric.X) > 100+1e-6 || math.Abs(c.CentroidMetric.Y) > 100+1e-6 {
			t.Fatalf("centroid escaped area: %+v", c.CentroidMetric)
		}
		if c.Reward != 1.0 {
			t.Fatalf("expected default reward 1.0, got %v", c.Reward)
		}
	}
}

func TestDiscretizeWithObstacleShrinksFreeSpace(t *testing.T) {
	area := SquareCell(geom.Point{X: 0, Y: 0}, 200)
	obstacle := SquareCell(geom.Point{X: 0, Y: 0}, 150)
	fp := Compute(100, 60, 0.2, 0.2, 0.05)

	withOverlap := Discretize(area, nil, fp, Square, 10.0)
	withObstacle := Discretize(area, []geom.Ring{obstacle}, fp, Square, 10.0)
	if len(withObstacle) >= len(withOverlap) {
		t.Fatalf("expected obstacle to reduce cell count: %d vs %d", len(withObstacle), len(withOverlap))
	}
}

func TestApplyPriorityOverridesReward(t *testing.T) {
	cells := []Cell{
		{CentroidMetric: geom.Point{X: 0, Y: 0}, Reward: 1.0},
		{CentroidMetric: geom.Point{X: 1000, Y: 1000}, Reward: 1.0},
	}
	regions := []PriorityRegion{
		{Region: SquareCell(geom.Point{X: 0, Y: 0}, 10), Reward: 5.0},
	}
	ApplyPriority(cells, regions)
	if cells[0].Reward != 5.0 {
		t.Fatalf("expected priority override, got %v", cells[0].Reward)
	}
	if cells[1].Reward != 1.0 {
		t.Fatalf("expected default reward unaffected, got %v", cells[1].Reward)
	}
}
