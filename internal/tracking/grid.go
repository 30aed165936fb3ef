// Package tracking implements the TrackingGrid (spec §3, §4.3): a voxel
// grid carrying per-cell target-classification x work-status state, the
// shape-based blocked/has-work queries, commit-of-removal between a
// min/max envelope pair, and the jump-flood deviation map.
package tracking

import (
	"errors"
	"fmt"
	"math"

	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/vecmath"
	"github.com/sparkwire/edmplan/internal/voxel"
)

// TargetClass is a cell's classification relative to the final part.
type TargetClass uint8

const (
	Empty TargetClass = iota
	Partial
	Full
)

// WorkStatus is a cell's machining status.
type WorkStatus uint8

const (
	Remaining WorkStatus = iota
	Done
)

// Raster values used by the external rasterizer contract (spec §6) and by
// set_from_work_and_target (spec §4.3).
const (
	RasterEmpty   uint8 = 0
	RasterPartial uint8 = 128
	RasterFull    uint8 = 255
)

// Sentinel errors, following the teacher's errors.New + fmt.Errorf("%w")
// wrapping convention rather than custom error types.
var (
	ErrUnreachableTarget      = errors.New("tracking: unreachable target")
	ErrMinMaxReversal         = errors.New("tracking: min-cut shape not a subset of max-cut")
	ErrOvercut                = errors.New("tracking: overcut detected in strict mode")
	ErrProtectionAlreadySet   = errors.New("tracking: protected_z already installed")
	ErrGridMismatch           = voxel.ErrGridMismatch
)

// halfDiagCoeff is 0.5*sqrt(3), the conservative voxel half-diagonal
// coefficient used throughout the spec's offset-band formulas.
var halfDiagCoeff = 0.5 * math.Sqrt(3)

// Grid is the TrackingGrid: a target-class array and a work-status array
// over the same geometry.
type Grid struct {
	target *voxel.Grid[uint8]
	work   *voxel.Grid[uint8]

	protectedInstalled bool

	// StrictOvercut controls commit_removal's overcut behavior (spec §7):
	// when true, any counted damage aborts the commit with ErrOvercut; when
	// false, damages are tallied in Damages and the commit proceeds.
	StrictOvercut bool
	// Damages accumulates non-fatal overcut counts across every
	// CommitRemoval call made with StrictOvercut == false.
	Damages int

	// protected marks cells promoted from EMPTY_REMAINING to FULL_DONE by
	// SetProtectedWorkBelowZ. ExtractWorkWithDeviation uses this to let
	// excludeProtected distinguish "really part of the target" FULL cells
	// from "stock kept for next session" cells masquerading as FULL_DONE.
	protected []bool
}

// New allocates an empty TrackingGrid of the given geometry. Cells start as
// Empty/Done (no work, nothing to remove) until Install populates them.
// StrictOvercut defaults to true, matching the spec's "strict mode" default
// posture (an uncaught overcut aborts the sweep rather than being silently
// tolerated).
func New(res float64, nx, ny, nz uint32, ofs vecmath.Vector3) *Grid {
	g := &Grid{
		target:        voxel.New[uint8](res, nx, ny, nz, ofs),
		work:          voxel.New[uint8](res, nx, ny, nz, ofs),
		StrictOvercut: true,
	}
	g.work.Fill(uint8(Done))
	return g
}

func (g *Grid) Res() float64             { return g.target.Res() }
func (g *Grid) Dims() (nx, ny, nz uint32) { return g.target.Dims() }
func (g *Grid) Ofs() vecmath.Vector3      { return g.target.Ofs() }

// CellCenter satisfies shape.Grid.
func (g *Grid) CellCenter(ix, iy, iz uint32) vecmath.Vector3 { return g.target.CellCenter(ix, iy, iz) }

// GridCenter returns the world-space centroid of the tracking grid.
func (g *Grid) GridCenter() vecmath.Vector3 { return g.target.GridCenter() }

// BoundingRadius returns the radius of the grid's bounding sphere (center =
// grid center, radius = half diagonal), used by the planar-sweep generator
// to size its tessellated disk (spec §4.4.1 step 3).
func (g *Grid) BoundingRadius() float64 { return g.target.BoundingRadius() }

// ClassOf and StatusOf read a single cell's combined state.
func (g *Grid) ClassOf(ix, iy, iz uint32) TargetClass { return TargetClass(g.target.Get(ix, iy, iz)) }
func (g *Grid) StatusOf(ix, iy, iz uint32) WorkStatus  { return WorkStatus(g.work.Get(ix, iy, iz)) }

// Install builds the tracking grid from a work grid and a target grid,
// each using raster values {0,128,255} (spec §4.3's table). Returns
// ErrUnreachableTarget if any cell has target dominating work (partial/full
// target with lesser work).
func Install(workVG, targetVG *voxel.Grid[uint8]) (*Grid, error) {
	nx, ny, nz := workVG.Dims()
	tnx, tny, tnz := targetVG.Dims()
	if nx != tnx || ny != tny || nz != tnz || workVG.Res() != targetVG.Res() || workVG.Ofs() != targetVG.Ofs() {
		return nil, fmt.Errorf("%w: work and target grids must be grid-compatible", ErrGridMismatch)
	}

	g := New(workVG.Res(), nx, ny, nz, workVG.Ofs())

	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				w := workVG.Get(ix, iy, iz)
				tgt := targetVG.Get(ix, iy, iz)

				class, status, ok := classify(tgt, w)
				if !ok {
					return nil, fmt.Errorf("%w: at cell (%d,%d,%d) target=%d work=%d", ErrUnreachableTarget, ix, iy, iz, tgt, w)
				}
				g.target.Set(ix, iy, iz, uint8(class))
				g.work.Set(ix, iy, iz, uint8(status))
			}
		}
	}
	return g, nil
}

// classify implements spec §4.3's install table.
func classify(tgt, work uint8) (TargetClass, WorkStatus, bool) {
	switch tgt {
	case RasterEmpty:
		switch work {
		case RasterEmpty:
			return Empty, Done, true
		case RasterPartial, RasterFull:
			return Empty, Remaining, true
		}
	case RasterPartial:
		if work == RasterFull {
			return Partial, Remaining, true
		}
		return 0, 0, false
	case RasterFull:
		if work == RasterFull {
			return Full, Done, true
		}
		return 0, 0, false
	}
	return 0, 0, false
}

// SetProtectedWorkBelowZ promotes every EMPTY_REMAINING cell whose center z
// is below z to FULL_DONE (spec §3, §4.3). Must be called at most once.
func (g *Grid) SetProtectedWorkBelowZ(z float64) error {
	if g.protectedInstalled {
		return ErrProtectionAlreadySet
	}
	nx, ny, nz := g.Dims()
	if g.protected == nil {
		g.protected = make([]bool, int(nx)*int(ny)*int(nz))
	}
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				if g.ClassOf(ix, iy, iz) == Empty && g.StatusOf(ix, iy, iz) == Remaining {
					c := g.CellCenter(ix, iy, iz)
					if c.Z < z {
						g.target.Set(ix, iy, iz, uint8(Full))
						g.work.Set(ix, iy, iz, uint8(Done))
						g.protected[g.target.Index(ix, iy, iz)] = true
					}
				}
			}
		}
	}
	g.protectedInstalled = true
	return nil
}

// isProtected reports whether (ix,iy,iz) was promoted to FULL_DONE by
// SetProtectedWorkBelowZ rather than being part of the installed target.
func (g *Grid) isProtected(ix, iy, iz uint32) bool {
	if g.protected == nil {
		return false
	}
	return g.protected[g.target.Index(ix, iy, iz)]
}

// QueryWorkOffset returns the maximal signed distance d(c,normal) plus a
// conservative voxel half-diagonal, over every cell currently REMAINING;
// returns math.Inf(-1) if no work remains (spec §4.3).
func (g *Grid) QueryWorkOffset(normal vecmath.Vector3) float64 {
	halfDiag := halfDiagCoeff * g.Res()
	best := math.Inf(-1)
	nx, ny, nz := g.Dims()
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				if g.StatusOf(ix, iy, iz) != Remaining {
					continue
				}
				c := g.CellCenter(ix, iy, iz)
				d := c.Dot(normal) + halfDiag
				if d > best {
					best = d
				}
			}
		}
	}
	return best
}

// QueryBlocked reports whether any cell in shape's outer offset band
// (+halfDiag) is FULL_DONE, PARTIAL_DONE, or PARTIAL_REMAINING — material
// that must not be cut (spec §4.3).
func (g *Grid) QueryBlocked(s shape.Shape) bool {
	halfDiag := halfDiagCoeff * g.Res()
	return shape.AnyPointIn(g, s, halfDiag, func(ix, iy, iz uint32) bool {
		class := g.ClassOf(ix, iy, iz)
		status := g.StatusOf(ix, iy, iz)
		if class == Full {
			return true // FULL is always DONE
		}
		if class == Partial {
			return true // PARTIAL_DONE or PARTIAL_REMAINING
		}
		_ = status
		return false
	})
}

// QueryHasWork reports whether any cell in shape's nearest band (offset 0)
// is EMPTY_REMAINING or PARTIAL_REMAINING (spec §4.3).
func (g *Grid) QueryHasWork(s shape.Shape) bool {
	return shape.AnyPointIn(g, s, 0, func(ix, iy, iz uint32) bool {
		return g.StatusOf(ix, iy, iz) == Remaining
	})
}
