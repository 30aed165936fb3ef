package tracking

import (
	"fmt"

	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/voxel"
)

// CommitRemoval implements spec §4.3's commit_removal: builds MIN (union of
// minShapes, conservative under-cover) and MAX (union of maxShapes,
// conservative over-cover) scratch grids, checks nesting and overcut, then
// commits every REMAINING cell inside MIN to DONE. Returns the removed
// volume (removed_count * res^3).
//
// Cells where MAX is true but MIN is false (the "penumbra") are never
// committed: they may or may not have been removed physically, so they are
// conservatively treated as still present.
func (g *Grid) CommitRemoval(minShapes, maxShapes []shape.Shape, allowOvercut bool) (float64, error) {
	nx, ny, nz := g.Dims()
	res := g.Res()

	minGrid := voxel.New[uint8](res, nx, ny, nz, g.Ofs())
	for _, s := range minShapes {
		minGrid.FillShape(s, 1, voxel.BoundaryInside)
	}
	maxGrid := voxel.New[uint8](res, nx, ny, nz, g.Ofs())
	for _, s := range maxShapes {
		maxGrid.FillShape(s, 1, voxel.BoundaryOutside)
	}

	// Validate over the whole grid first (nesting + overcut tally) before
	// committing anything: a failing commit must leave the grid untouched,
	// so the planner's "abort the sweep" contract (spec §7) holds even
	// when the reversal or overcut is only discovered late in the scan.
	damages := 0
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				inMin := minGrid.Get(ix, iy, iz) != 0
				inMax := maxGrid.Get(ix, iy, iz) != 0

				if inMin && !inMax {
					return 0, fmt.Errorf("%w: at cell (%d,%d,%d)", ErrMinMaxReversal, ix, iy, iz)
				}

				if inMax && g.ClassOf(ix, iy, iz) != Empty && !allowOvercut {
					damages++
				}
			}
		}
	}

	if damages > 0 && g.StrictOvercut {
		return 0, fmt.Errorf("%w: %d cell(s) damaged", ErrOvercut, damages)
	}

	removed := 0
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				if minGrid.Get(ix, iy, iz) != 0 && g.StatusOf(ix, iy, iz) == Remaining {
					g.work.Set(ix, iy, iz, uint8(Done))
					removed++
				}
			}
		}
	}

	if damages > 0 {
		g.Damages += damages
	}

	return float64(removed) * res * res * res, nil
}

// RemainingWorkVolume returns the volume, in mm^3, of cells still REMAINING.
func (g *Grid) RemainingWorkVolume() float64 {
	res := g.Res()
	nx, ny, nz := g.Dims()
	n := 0
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				if g.StatusOf(ix, iy, iz) == Remaining {
					n++
				}
			}
		}
	}
	return float64(n) * res * res * res
}
