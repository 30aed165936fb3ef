package tracking

import (
	"math"

	"github.com/sparkwire/edmplan/internal/vecmath"
	"github.com/sparkwire/edmplan/internal/voxel"
)

// seed tracks, per cell, the nearest target-bearing cell's center and the
// squared distance to it (spec §4.3: "(seed_pos, distance) — four f32s per
// cell"). Allocated once per ExtractWorkWithDeviation call and dropped at
// the end, per spec §9's scratch-allocation note.
type seed struct {
	has    bool
	pos    vecmath.Vector3
	distSq float64
}

// ExtractWorkWithDeviation runs a jump-flood distance transform seeded from
// every non-EMPTY (target) cell, then writes a per-cell deviation value
// (spec §4.3):
//   - EMPTY_DONE (and excluded if excludeProtected and the cell reads as
//     protected-now-FULL_DONE): -1 ("no material").
//   - distance == 0 (material at/inside the part): 0.
//   - otherwise: distance + 0.5*sqrt(3)*res (conservative upper bound).
func (g *Grid) ExtractWorkWithDeviation(excludeProtected bool) *voxel.Grid[float32] {
	nx, ny, nz := g.Dims()
	res := g.Res()
	n := int(nx) * int(ny) * int(nz)

	seeds := make([]seed, n)
	idx := func(ix, iy, iz uint32) int {
		return int(ix) + int(iy)*int(nx) + int(iz)*int(nx)*int(ny)
	}

	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				if g.ClassOf(ix, iy, iz) == Empty {
					continue
				}
				if excludeProtected && g.isProtected(ix, iy, iz) {
					continue
				}
				c := g.CellCenter(ix, iy, iz)
				seeds[idx(ix, iy, iz)] = seed{has: true, pos: c, distSq: 0}
			}
		}
	}

	maxDim := nx
	if ny > maxDim {
		maxDim = ny
	}
	if nz > maxDim {
		maxDim = nz
	}
	passes := int(math.Ceil(math.Log2(float64(maxDim))))
	if passes < 1 {
		passes = 1
	}

	offsets := [6][3]int{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}

	for p := 0; p < passes; p++ {
		step := int(math.Pow(2, float64(passes-1-p)))
		next := make([]seed, n)
		copy(next, seeds)

		for ix := uint32(0); ix < nx; ix++ {
			for iy := uint32(0); iy < ny; iy++ {
				for iz := uint32(0); iz < nz; iz++ {
					here := idx(ix, iy, iz)
					cur := seeds[here]
					c := g.CellCenter(ix, iy, iz)

					for _, o := range offsets {
						nix := int(ix) + o[0]*step
						niy := int(iy) + o[1]*step
						niz := int(iz) + o[2]*step
						if nix < 0 || niy < 0 || niz < 0 || nix >= int(nx) || niy >= int(ny) || niz >= int(nz) {
							continue
						}
						neighbor := seeds[idx(uint32(nix), uint32(niy), uint32(niz))]
						if !neighbor.has {
							continue
						}
						d := c.Sub(neighbor.pos).Dot(c.Sub(neighbor.pos))
						if !cur.has || d < cur.distSq {
							cur = seed{has: true, pos: neighbor.pos, distSq: d}
						}
					}
					next[here] = cur
				}
			}
		}
		seeds = next
	}

	halfDiag := halfDiagCoeff * res
	out := voxel.New[float32](res, nx, ny, nz, g.Ofs())
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			for iz := uint32(0); iz < nz; iz++ {
				isEmptyDone := g.ClassOf(ix, iy, iz) == Empty && g.StatusOf(ix, iy, iz) == Done
				isExcludedProtected := excludeProtected && g.isProtected(ix, iy, iz)
				if isEmptyDone || isExcludedProtected {
					out.Set(ix, iy, iz, -1)
					continue
				}
				s := seeds[idx(ix, iy, iz)]
				dist := 0.0
				if s.has {
					dist = math.Sqrt(s.distSq)
				}
				if dist == 0 {
					out.Set(ix, iy, iz, 0)
				} else {
					out.Set(ix, iy, iz, float32(dist+halfDiag))
				}
			}
		}
	}
	return out
}
