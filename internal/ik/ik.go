// Package ik implements the pure inverse-kinematics mapping from a planned
// tip pose (work-coordinates position + tip-normal) and tool length to
// machine axis values (spec §4.7). It has no state and performs no I/O.
package ik

import (
	"math"

	"github.com/sparkwire/edmplan/internal/vecmath"
)

// epsilonRad is "1/1000 degree" in radians, the threshold below which the
// spindle is considered untilted (spec §4.7 step 2).
const epsilonRad = (1.0 / 1000.0) * math.Pi / 180.0

// AxisValues are the commanded machine axis positions.
type AxisValues struct {
	X, Y, Z float64 // mm
	B, C    float64 // radians
}

// Result is everything solve_ik produces for a single path point.
type Result struct {
	Axis          AxisValues
	TipPosMachine vecmath.Vector3
	TipPosWork    vecmath.Vector3
}

// Solve implements spec §4.7. tip is given in either work or machine
// coordinates per posIsWorld; tipNormalWorld must have z >= 0 (a negative z
// is an invalid pose — the caller logs a warning and proceeds, per §7's
// "log and continue").
//
// workOffset is the constant world-to-machine translation applied at the
// table's neutral rotation (spec step 3).
func Solve(tip vecmath.Vector3, tipNormalWorld vecmath.Vector3, toolLength float64, posIsWorld bool, workOffset vecmath.Vector3) Result {
	n := tipNormalWorld.WithZ(0)
	nLen := n.Length()
	b := math.Asin(clamp(nLen, 0, 1))

	var c float64
	if b < epsilonRad {
		c = 0
	} else {
		c = -math.Atan2(tipNormalWorld.Y, tipNormalWorld.X)
	}

	var tipWork, tipMachine vecmath.Vector3
	if posIsWorld {
		tipWork = tip
		tipMachine = rotateZ(tip, c).Add(workOffset)
	} else {
		tipMachine = tip
		tipWork = rotateZ(tip.Sub(workOffset), -c)
	}

	tipBaseOffset := vecmath.V3(-math.Sin(b), 0, -math.Cos(b)).Scale(toolLength)
	base := tipMachine.Sub(tipBaseOffset)

	return Result{
		Axis: AxisValues{
			X: base.X, Y: base.Y, Z: base.Z,
			B: b, C: c,
		},
		TipPosMachine: tipMachine,
		TipPosWork:    tipWork,
	}
}

// IsReachable reports whether a tip normal is a valid pose (z >= 0). An
// unreachable pose is a non-fatal warning (spec §7): the caller should log
// it and still emit the path point.
func IsReachable(tipNormalWorld vecmath.Vector3) bool {
	return tipNormalWorld.Z >= 0
}

func rotateZ(v vecmath.Vector3, theta float64) vecmath.Vector3 {
	ct, st := math.Cos(theta), math.Sin(theta)
	return vecmath.V3(ct*v.X-st*v.Y, st*v.X+ct*v.Y, v.Z)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
