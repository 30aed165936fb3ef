// Package voxel implements the regular 3D VoxelGrid (spec §4.2): a flat
// array of scalar cells addressed by (ix,iy,iz), plus the fill/map/reduce
// and shape-rasterization operations shared by every grid-backed component
// in the planner.
package voxel

import (
	"errors"
	"fmt"
	"math"

	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

// ErrGridMismatch is returned by binary operations when two grids disagree
// on resolution, dimensions, or world offset.
var ErrGridMismatch = errors.New("grid mismatch")

// Cell is the set of scalar types a VoxelGrid may hold.
type Cell interface {
	~uint32 | ~float32 | ~uint8
}

// Grid is a regular 3D array of cells of type T. Cell (ix,iy,iz) covers
// [ofs+ix*res, ofs+(ix+1)*res) per axis; its center is
// ofs + (ix+0.5, iy+0.5, iz+0.5)*res. The linear index is
// ix + iy*nx + iz*nx*ny.
type Grid[T Cell] struct {
	res        float64
	nx, ny, nz uint32
	ofs        vecmath.Vector3
	data       []T
}

// New allocates a Grid with the given resolution, dimensions, and world
// offset. All cells start at the zero value of T.
func New[T Cell](res float64, nx, ny, nz uint32, ofs vecmath.Vector3) *Grid[T] {
	return &Grid[T]{
		res: res, nx: nx, ny: ny, nz: nz, ofs: ofs,
		data: make([]T, int(nx)*int(ny)*int(nz)),
	}
}

// Clone returns a deep copy.
func (g *Grid[T]) Clone() *Grid[T] {
	out := &Grid[T]{res: g.res, nx: g.nx, ny: g.ny, nz: g.nz, ofs: g.ofs}
	out.data = make([]T, len(g.data))
	copy(out.data, g.data)
	return out
}

// Res, Dims, Ofs are the geometry accessors.
func (g *Grid[T]) Res() float64                 { return g.res }
func (g *Grid[T]) Dims() (nx, ny, nz uint32)     { return g.nx, g.ny, g.nz }
func (g *Grid[T]) Ofs() vecmath.Vector3          { return g.ofs }
func (g *Grid[T]) Len() int                      { return len(g.data) }

// Index computes the flat data index for (ix,iy,iz).
func (g *Grid[T]) Index(ix, iy, iz uint32) int {
	return int(ix) + int(iy)*int(g.nx) + int(iz)*int(g.nx)*int(g.ny)
}

// InBounds reports whether (ix,iy,iz) addresses a real cell.
func (g *Grid[T]) InBounds(ix, iy, iz uint32) bool {
	return ix < g.nx && iy < g.ny && iz < g.nz
}

// Get returns the value at (ix,iy,iz).
func (g *Grid[T]) Get(ix, iy, iz uint32) T {
	return g.data[g.Index(ix, iy, iz)]
}

// Set stores v at (ix,iy,iz).
func (g *Grid[T]) Set(ix, iy, iz uint32, v T) {
	g.data[g.Index(ix, iy, iz)] = v
}

// CellCenter returns the world-space center of cell (ix,iy,iz). Satisfies
// shape.Grid.
func (g *Grid[T]) CellCenter(ix, iy, iz uint32) vecmath.Vector3 {
	return g.ofs.Add(vecmath.V3((float64(ix)+0.5)*g.res, (float64(iy)+0.5)*g.res, (float64(iz)+0.5)*g.res))
}

// CenterOf is an alias for CellCenter matching the spec's naming
// (center_of(ix,iy,iz)).
func (g *Grid[T]) CenterOf(ix, iy, iz uint32) vecmath.Vector3 { return g.CellCenter(ix, iy, iz) }

// GridCenter returns the world-space centroid of the whole grid.
func (g *Grid[T]) GridCenter() vecmath.Vector3 {
	return g.ofs.Add(vecmath.V3(float64(g.nx)*g.res/2, float64(g.ny)*g.res/2, float64(g.nz)*g.res/2))
}

// BoundingRadius returns the radius of the bounding sphere of the grid
// (center = grid center, radius = half diagonal), used by the planar-sweep
// generator to size its tessellated disk (spec §4.4.1 step 3).
func (g *Grid[T]) BoundingRadius() float64 {
	return 0.5 * g.res * math.Sqrt(float64(g.nx)*float64(g.nx)+float64(g.ny)*float64(g.ny)+float64(g.nz)*float64(g.nz))
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Map applies fn to every cell in place.
func (g *Grid[T]) Map(fn func(v T) T) {
	for i, v := range g.data {
		g.data[i] = fn(v)
	}
}

// CountIf returns the number of cells for which pred holds.
func (g *Grid[T]) CountIf(pred func(v T) bool) int {
	n := 0
	for _, v := range g.data {
		if pred(v) {
			n++
		}
	}
	return n
}

// Max returns the maximum cell value. Panics on an empty grid.
func (g *Grid[T]) Max() T {
	m := g.data[0]
	for _, v := range g.data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Volume returns count(v>0) * res^3, matching the spec's definition.
func (g *Grid[T]) Volume() float64 {
	n := g.CountIf(func(v T) bool { return v > 0 })
	return float64(n) * g.res * g.res * g.res
}

// compatible reports whether two grids share geometry (spec: "grid
// compatible").
func compatible[T Cell](a, b *Grid[T]) bool {
	return a.res == b.res && a.nx == b.nx && a.ny == b.ny && a.nz == b.nz && a.ofs == b.ofs
}

// Or computes the element-wise logical OR of two grids (nonzero == true)
// into a new grid of the same type, writing 1 where either input is
// nonzero. Requires grid-compatible inputs.
func Or[T Cell](a, b *Grid[T]) (*Grid[T], error) {
	if !compatible(a, b) {
		return nil, fmt.Errorf("%w: Or requires grid-compatible inputs", ErrGridMismatch)
	}
	out := New[T](a.res, a.nx, a.ny, a.nz, a.ofs)
	for i := range out.data {
		if a.data[i] != 0 || b.data[i] != 0 {
			out.data[i] = 1
		}
	}
	return out, nil
}

// And computes the element-wise logical AND of two grids. Requires
// grid-compatible inputs.
func And[T Cell](a, b *Grid[T]) (*Grid[T], error) {
	if !compatible(a, b) {
		return nil, fmt.Errorf("%w: And requires grid-compatible inputs", ErrGridMismatch)
	}
	out := New[T](a.res, a.nx, a.ny, a.nz, a.ofs)
	for i := range out.data {
		if a.data[i] != 0 && b.data[i] != 0 {
			out.data[i] = 1
		}
	}
	return out, nil
}

// Boundary selects how FillShape handles cells whose classification is
// ambiguous at the voxel scale.
type Boundary int

const (
	// BoundaryInside is conservative under-cover: only cells fully
	// guaranteed inside the shape are written (offset = -halfDiag).
	BoundaryInside Boundary = iota
	// BoundaryOutside is conservative over-cover: every cell that might
	// touch the shape is written (offset = +halfDiag).
	BoundaryOutside
	// BoundaryNearest is a centroid test (offset = 0).
	BoundaryNearest
)

// FillShape writes v into every cell within the offset band of s implied
// by boundary, per spec §4.2: -halfDiag (Inside), +halfDiag (Outside), or 0
// (Nearest), where halfDiag = 0.5*sqrt(3)*res.
func (g *Grid[T]) FillShape(s shape.Shape, v T, boundary Boundary) {
	halfDiag := 0.5 * math.Sqrt(3) * g.res
	var offset float64
	switch boundary {
	case BoundaryInside:
		offset = -halfDiag
	case BoundaryOutside:
		offset = halfDiag
	case BoundaryNearest:
		offset = 0
	}
	shape.ForEachPointIn(g, s, offset, func(ix, iy, iz uint32) {
		g.Set(ix, iy, iz, v)
	})
}
