// Package rasterize implements the §6 external rasterizer contract: filling
// a pre-allocated voxel grid with classified cell values from a surface.
// Full mesh voxelization (triangle-soup loading) is explicitly out of scope
// for the planner core (spec §1); this package only implements the
// documented 8-corner-sample contract against a minimal Surface interface,
// so the rest of the planner can be exercised end-to-end without a mesh
// loader.
package rasterize

import (
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/vecmath"
	"github.com/sparkwire/edmplan/internal/voxel"
)

// Surface is the minimal interface the rasterizer needs from a target or
// stock shape: a point-containment predicate.
type Surface interface {
	Inside(p vecmath.Vector3) bool
}

// ShapeUnion implements Surface as the union of a set of shape.Shape
// primitives: a point is inside if it is inside (or on the surface of) any
// one of them.
type ShapeUnion []shape.Shape

// Inside reports whether p is inside or on the surface of any shape in the
// union (Eval <= 0).
func (u ShapeUnion) Inside(p vecmath.Vector3) bool {
	for _, s := range u {
		if s.Eval(p) <= 0 {
			return true
		}
	}
	return false
}

// Rasterize implements rasterize(surface, grid) (spec §6): for every cell,
// samples all 8 voxel corners and writes RasterFull (255) if all are
// inside, RasterEmpty (0) if none are, RasterPartial (128) otherwise. grid
// must already be allocated at the desired resolution/dimensions/offset.
func Rasterize(surface Surface, grid *voxel.Grid[uint8]) {
	nx, ny, nz := grid.Dims()
	res := grid.Res()
	ofs := grid.Ofs()

	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				insideCount := 0
				for _, corner := range cellCorners(ofs, res, ix, iy, iz) {
					if surface.Inside(corner) {
						insideCount++
					}
				}
				switch insideCount {
				case 8:
					grid.Set(ix, iy, iz, 255)
				case 0:
					grid.Set(ix, iy, iz, 0)
				default:
					grid.Set(ix, iy, iz, 128)
				}
			}
		}
	}
}

// cellCorners returns the 8 voxel corners of cell (ix,iy,iz): the cell's
// axis-aligned box is [ofs+(ix,iy,iz)*res, ofs+(ix+1,iy+1,iz+1)*res).
func cellCorners(ofs vecmath.Vector3, res float64, ix, iy, iz uint32) [8]vecmath.Vector3 {
	base := ofs.Add(vecmath.V3(float64(ix)*res, float64(iy)*res, float64(iz)*res))
	var out [8]vecmath.Vector3
	n := 0
	for _, dx := range [2]float64{0, res} {
		for _, dy := range [2]float64{0, res} {
			for _, dz := range [2]float64{0, res} {
				out[n] = base.Add(vecmath.V3(dx, dy, dz))
				n++
			}
		}
	}
	return out
}
