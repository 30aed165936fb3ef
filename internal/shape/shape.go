// Package shape implements the SDF shape library (spec §4.1): a closed set
// of primitive shapes, their signed-distance evaluation, and the
// conservative grid-traversal helpers used to query and cut a voxel grid.
//
// Shapes are modeled as a closed sum type (a Go struct with a Kind tag)
// rather than an interface, per the spec's §9 design note: dispatch in Eval
// is a switch on Kind, not a virtual call, which also makes a shape trivial
// to pack into a uniform GPU buffer later (four Vector3s plus a tag).
package shape

import (
	"errors"
	"fmt"

	"github.com/sparkwire/edmplan/internal/vecmath"
)

// Kind tags the variant of a Shape.
type Kind int

const (
	KindCylinder Kind = iota
	KindELH
	KindBox
)

// ErrInvalidShape is returned by constructors when a precondition on a
// shape's geometry is violated (non-unit direction, non-orthogonal box
// half-vectors, negative radius/height).
var ErrInvalidShape = errors.New("invalid shape")

// unitTolerance is how far from length 1 a direction vector may be before
// construction rejects it.
const unitTolerance = 1e-6

// orthoTolerance bounds how far from zero the dot product between two box
// half-vectors may be before construction rejects them as non-orthogonal.
const orthoTolerance = 1e-6

// Shape is a tagged variant over Cylinder, ELH, and Box (spec §3).
type Shape struct {
	Kind Kind

	// Cylinder: P, N (unit), R, H. Spans [P, P+H*N], radius R.
	// ELH: P, Q, N (unit), R, H. 2D long-hole around segment P->Q extruded
	// along N by H; (Q-P)·N must be 0.
	// Box: Center=P, Half0=N, Half1=Q, Half2=stored in R-independent field
	// below (see BoxHalf2).
	P, Q, N vecmath.Vector3
	R, H    float64

	// BoxHalf2 is the third (mutually perpendicular) half-extent vector of
	// a Box shape; P is Box.Center, N is Half0, Q is Half1.
	BoxHalf2 vecmath.Vector3
}

// NewCylinder constructs a cylinder of radius r and length h along
// unit axis n, spanning [p, p+h*n].
func NewCylinder(p, n vecmath.Vector3, r, h float64) (Shape, error) {
	if !n.IsUnit(unitTolerance) {
		return Shape{}, fmt.Errorf("%w: cylinder axis is not a unit vector (len=%.9f)", ErrInvalidShape, n.Length())
	}
	if r < 0 || h < 0 {
		return Shape{}, fmt.Errorf("%w: cylinder radius/height must be nonnegative (r=%.6f h=%.6f)", ErrInvalidShape, r, h)
	}
	return Shape{Kind: KindCylinder, P: p, N: n.Normalize(), R: r, H: h}, nil
}

// NewELH constructs an "extruded long hole": a 2D long-hole of radius r
// around segment p->q, extruded along unit axis n by h. (q-p) must be
// perpendicular to n.
func NewELH(p, q, n vecmath.Vector3, r, h float64) (Shape, error) {
	if !n.IsUnit(unitTolerance) {
		return Shape{}, fmt.Errorf("%w: ELH axis is not a unit vector (len=%.9f)", ErrInvalidShape, n.Length())
	}
	if r < 0 || h < 0 {
		return Shape{}, fmt.Errorf("%w: ELH radius/height must be nonnegative (r=%.6f h=%.6f)", ErrInvalidShape, r, h)
	}
	if d := q.Sub(p).Dot(n); d > 1e-4 || d < -1e-4 {
		return Shape{}, fmt.Errorf("%w: ELH segment p->q is not perpendicular to n (dot=%.6f)", ErrInvalidShape, d)
	}
	return Shape{Kind: KindELH, P: p, Q: q, N: n.Normalize(), R: r, H: h}, nil
}

// NewBox constructs an oriented box given its center and three mutually
// perpendicular half-extent vectors.
func NewBox(center, half0, half1, half2 vecmath.Vector3) (Shape, error) {
	const tol = orthoTolerance
	if abs(half0.Dot(half1)) > tol || abs(half0.Dot(half2)) > tol || abs(half1.Dot(half2)) > tol {
		return Shape{}, fmt.Errorf("%w: box half-vectors are not mutually orthogonal", ErrInvalidShape)
	}
	return Shape{Kind: KindBox, P: center, N: half0, Q: half1, BoxHalf2: half2}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Eval evaluates the signed distance from p to the shape's surface:
// negative inside, zero on the surface, positive outside.
func (s Shape) Eval(p vecmath.Vector3) float64 {
	switch s.Kind {
	case KindCylinder:
		return evalCylinder(p, s.P, s.N, s.R, s.H)
	case KindELH:
		return evalELH(p, s.P, s.Q, s.N, s.R, s.H)
	case KindBox:
		return evalBox(p, s.P, s.N, s.Q, s.BoxHalf2)
	default:
		panic(fmt.Sprintf("shape: unknown kind %d", s.Kind))
	}
}

// composeInsideOutside implements the min(max(d1,d2),0) + hypot(max(d1,0),
// max(d2,0)) combination rule used by every shape in this library: d1 and
// d2 are signed "interval" distances along independent axes (axial vs.
// radial, or per-box-axis), and this turns their conjunction into a single
// signed distance.
func composeInsideOutside(d1, d2 float64) float64 {
	inside := vecmath.Min(vecmath.Max(d1, d2), 0)
	outside := vecmath.Hypot2(vecmath.Max(d1, 0), vecmath.Max(d2, 0))
	return inside + outside
}

func evalCylinder(p, p0, n vecmath.Vector3, r, h float64) float64 {
	rel := p.Sub(p0)
	a := rel.Dot(n)
	radial := rel.Sub(n.Scale(a))
	d1 := abs(a-h/2) - h/2
	d2 := radial.Length() - r
	return composeInsideOutside(d1, d2)
}

func evalELH(p, segP, segQ, n vecmath.Vector3, r, h float64) float64 {
	rel := p.Sub(segP)
	a := rel.Dot(n)
	d1 := abs(a-h/2) - h/2

	// Work in the plane perpendicular to n: project p, segP, segQ onto it.
	inPlane := p.Sub(segP).ProjectOntoPlane(n)
	qInPlane := segQ.Sub(segP).ProjectOntoPlane(n)
	d2 := distToSegment3(inPlane, vecmath.Vector3{}, qInPlane) - r

	return composeInsideOutside(d1, d2)
}

func distToSegment3(p, a, b vecmath.Vector3) float64 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < vecmath.Epsilon {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Add(ab.Scale(t))
	return p.Sub(closest).Length()
}

func evalBox(p, center, half0, half1, half2 vecmath.Vector3) float64 {
	rel := p.Sub(center)
	// Project rel onto each (possibly non-unit) half-axis, normalized so
	// the resulting coordinate is in "half-length units" directly.
	lx := axisCoord(rel, half0)
	ly := axisCoord(rel, half1)
	lz := axisCoord(rel, half2)

	dx := abs(lx) - half0.Length()
	dy := abs(ly) - half1.Length()
	dz := abs(lz) - half2.Length()

	// Compose three axes: fold pairwise using the same rule, since the box
	// interior is the conjunction of all three interval tests.
	d12 := composeInsideOutside(dx, dy)
	return composeInsideOutside(d12, dz)
}

// axisCoord returns the signed length of rel's component along axis
// (not necessarily unit), i.e. rel·axis / |axis|.
func axisCoord(rel, axis vecmath.Vector3) float64 {
	l := axis.Length()
	if l < vecmath.Epsilon {
		return 0
	}
	return rel.Dot(axis) / l
}
