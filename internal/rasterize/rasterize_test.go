package rasterize

import (
	"testing"

	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
	"github.com/sparkwire/edmplan/internal/voxel"
)

func cylinderUnion(t *testing.T, p, n vecmath.Vector3, r, h float64) ShapeUnion {
	t.Helper()
	s, err := shape.NewCylinder(p, n, r, h)
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	return ShapeUnion{s}
}

func TestRasterizeInteriorIsFull(t *testing.T) {
	surf := cylinderUnion(t, vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1), 10, 10)
	grid := voxel.New[uint8](0.5, 40, 40, 20, vecmath.V3(-10, -10, 0))
	Rasterize(surf, grid)

	// A cell near the cylinder axis, well inside, should be fully full.
	nx, ny, nz := grid.Dims()
	ix, iy, iz := nx/2, ny/2, nz/2
	if got := grid.Get(ix, iy, iz); got != tracking.RasterFull {
		t.Errorf("interior cell = %d, want RasterFull (%d)", got, tracking.RasterFull)
	}
}

func TestRasterizeExteriorIsEmpty(t *testing.T) {
	surf := cylinderUnion(t, vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1), 10, 10)
	grid := voxel.New[uint8](0.5, 40, 40, 20, vecmath.V3(-10, -10, 0))
	Rasterize(surf, grid)

	// Corner of the grid is far outside the cylinder.
	if got := grid.Get(0, 0, 0); got != tracking.RasterEmpty {
		t.Errorf("exterior cell = %d, want RasterEmpty (%d)", got, tracking.RasterEmpty)
	}
}

func TestRasterizeBoundaryIsPartial(t *testing.T) {
	surf := cylinderUnion(t, vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1), 10, 10)
	res := 0.5
	grid := voxel.New[uint8](res, 40, 40, 20, vecmath.V3(-10, -10, 0))
	Rasterize(surf, grid)

	// Find a cell straddling the cylindrical wall (radius exactly 10 at
	// y=0, z mid-height): scan along x near the wall.
	nx, _, nz := grid.Dims()
	iz := nz / 2
	found := false
	for ix := uint32(0); ix < nx; ix++ {
		c := grid.CellCenter(ix, 20, iz)
		if c.X > 9 && c.X < 11 {
			if grid.Get(ix, 20, iz) == tracking.RasterPartial {
				found = true
				break
			}
		}
	}
	if !found {
		t.Errorf("expected at least one RasterPartial cell near the cylinder wall")
	}
}
