package plan

import (
	"testing"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/rasterize"
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
	"github.com/sparkwire/edmplan/internal/voxel"
)

func buildTestGrid(t *testing.T) *tracking.Grid {
	t.Helper()
	const res = 1.0
	nx, ny, nz := uint32(10), uint32(10), uint32(10)
	ofs := vecmath.V3(-5, -5, -1)

	stock, err := shape.NewCylinder(vecmath.Vector3{}, vecmath.V3(0, 0, 1), 3, 6)
	if err != nil {
		t.Fatalf("NewCylinder(stock): %v", err)
	}
	target, err := shape.NewCylinder(vecmath.Vector3{}, vecmath.V3(0, 0, 1), 2, 4)
	if err != nil {
		t.Fatalf("NewCylinder(target): %v", err)
	}

	workVG := voxel.New[uint8](res, nx, ny, nz, ofs)
	targetVG := voxel.New[uint8](res, nx, ny, nz, ofs)
	rasterize.Rasterize(rasterize.ShapeUnion{stock}, workVG)
	rasterize.Rasterize(rasterize.ShapeUnion{target}, targetVG)

	grid, err := tracking.Install(workVG, targetVG)
	if err != nil {
		t.Fatalf("tracking.Install: %v", err)
	}
	grid.StrictOvercut = false
	return grid
}

func testPlanConfig() model.Config {
	c := model.DefaultConfig()
	c.FeedDepth = 1.0
	c.EWRMax = 0.3
	c.ToolNaturalDiameter = 1.0
	c.ToolNaturalLength = 20.0
	c.StockCutWidth = 0.5
	return c
}

func TestPlannerRunsToCompletion(t *testing.T) {
	grid := buildTestGrid(t)
	p := New(grid, testPlanConfig(), vecmath.Vector3{})

	const maxSteps = 5000
	steps := 0
	for {
		status, err := p.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		steps++
		if status == Done {
			break
		}
		if steps > maxSteps {
			t.Fatalf("planner did not reach Done within %d steps", maxSteps)
		}
	}

	if p.NumSweeps() == 0 {
		t.Errorf("expected at least one committed sweep")
	}
	if len(p.Plan()) == 0 {
		t.Errorf("expected a nonempty plan")
	}
	if p.RemainingVol() < 0 {
		t.Errorf("remaining volume should never be negative, got %v", p.RemainingVol())
	}
}

func TestGenAllSweepsMatchesStepLoop(t *testing.T) {
	grid := buildTestGrid(t)
	p := New(grid, testPlanConfig(), vecmath.Vector3{})

	path, err := p.GenAllSweeps()
	if err != nil {
		t.Fatalf("GenAllSweeps: %v", err)
	}
	if len(path) != len(p.Plan()) {
		t.Errorf("GenAllSweeps result length %d != Plan() length %d", len(path), len(p.Plan()))
	}
}
