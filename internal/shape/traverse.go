package shape

import (
	"math"

	"github.com/sparkwire/edmplan/internal/vecmath"
)

// Grid is the minimal surface internal/voxel.Grid exposes to the
// shape-traversal helpers below — just enough to iterate cell centers
// without an import cycle (internal/voxel depends on internal/shape, not
// the other way around).
type Grid interface {
	Dims() (nx, ny, nz uint32)
	Res() float64
	CellCenter(ix, iy, iz uint32) vecmath.Vector3
}

// blockSide is the minimum tile side (in cells) used by the two-tier
// conservative traversal (spec §4.1): blocks are pruned before their cells
// are visited individually.
const blockSide = 4

// TraverseOffsetBand calls fn(ix,iy,iz) for every cell of grid whose center
// c satisfies Eval(s, c) <= offset. The traversal is conservative at the
// block level: cells are grouped into blockSide^3 tiles, and a tile is
// skipped only when its center is farther than its half-diagonal plus
// offset from the shape, guaranteeing no false negatives. Call order is
// unspecified.
func TraverseOffsetBand(g Grid, s Shape, offset float64, fn func(ix, iy, iz uint32)) {
	nx, ny, nz := g.Dims()
	res := g.Res()
	blockHalfDiag := 0.5 * math.Sqrt(3) * float64(blockSide) * res

	for bx := uint32(0); bx < nx; bx += blockSide {
		for by := uint32(0); by < ny; by += blockSide {
			for bz := uint32(0); bz < nz; bz += blockSide {
				ex := minU32(bx+blockSide, nx)
				ey := minU32(by+blockSide, ny)
				ez := minU32(bz+blockSide, nz)

				blockCenter := blockCentroid(g, bx, ex, by, ey, bz, ez)
				if s.Eval(blockCenter) > blockHalfDiag+offset {
					continue
				}

				for ix := bx; ix < ex; ix++ {
					for iy := by; iy < ey; iy++ {
						for iz := bz; iz < ez; iz++ {
							c := g.CellCenter(ix, iy, iz)
							if s.Eval(c) <= offset {
								fn(ix, iy, iz)
							}
						}
					}
				}
			}
		}
	}
}

func blockCentroid(g Grid, bx, ex, by, ey, bz, ez uint32) vecmath.Vector3 {
	lo := g.CellCenter(bx, by, bz)
	hi := g.CellCenter(ex-1, ey-1, ez-1)
	return lo.Add(hi).Scale(0.5)
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// EveryPointIn reports whether pred holds for every cell in the shape's
// offset band.
func EveryPointIn(g Grid, s Shape, offset float64, pred func(ix, iy, iz uint32) bool) bool {
	ok := true
	TraverseOffsetBand(g, s, offset, func(ix, iy, iz uint32) {
		if ok && !pred(ix, iy, iz) {
			ok = false
		}
	})
	return ok
}

// AnyPointIn reports whether pred holds for at least one cell in the
// shape's offset band.
func AnyPointIn(g Grid, s Shape, offset float64, pred func(ix, iy, iz uint32) bool) bool {
	found := false
	TraverseOffsetBand(g, s, offset, func(ix, iy, iz uint32) {
		if !found && pred(ix, iy, iz) {
			found = true
		}
	})
	return found
}

// ForEachPointIn calls fn for every cell in the shape's offset band.
func ForEachPointIn(g Grid, s Shape, offset float64, fn func(ix, iy, iz uint32)) {
	TraverseOffsetBand(g, s, offset, fn)
}
