package ik

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkwire/edmplan/internal/vecmath"
)

func TestRoundTripIK(t *testing.T) {
	workOffset := vecmath.V3(100, 50, 200)

	cases := []struct {
		tip        vecmath.Vector3
		normal     vecmath.Vector3
		toolLength float64
	}{
		{vecmath.V3(10, 20, 30), vecmath.V3(0, 0, 1), 40},
		{vecmath.V3(-5, 8, 12), vecmath.V3(0.3, 0.4, vecmath.V3(0.3, 0.4, 0).Length()).Normalize(), 25},
		{vecmath.V3(1, 1, 1), vecmath.V3(0, 1, 0).Add(vecmath.V3(0, 0, 0.0001)).Normalize(), 10},
	}

	for _, c := range cases {
		require.GreaterOrEqual(t, c.normal.Z, 0.0)

		fwd := Solve(c.tip, c.normal, c.toolLength, true, workOffset)
		back := Solve(fwd.TipPosMachine, c.normal, c.toolLength, false, workOffset)

		assert.InDelta(t, c.tip.X, back.TipPosWork.X, 1e-9)
		assert.InDelta(t, c.tip.Y, back.TipPosWork.Y, 1e-9)
		assert.InDelta(t, c.tip.Z, back.TipPosWork.Z, 1e-9)

		// The derived base + (-sin b, 0, -cos b)*toolLength must equal
		// tip_pos_machine.
		tipOffset := vecmath.V3(-math.Sin(fwd.Axis.B), 0, -math.Cos(fwd.Axis.B)).Scale(c.toolLength)
		reconstructed := vecmath.V3(fwd.Axis.X, fwd.Axis.Y, fwd.Axis.Z).Add(tipOffset)
		assert.InDelta(t, fwd.TipPosMachine.X, reconstructed.X, 1e-9)
		assert.InDelta(t, fwd.TipPosMachine.Y, reconstructed.Y, 1e-9)
		assert.InDelta(t, fwd.TipPosMachine.Z, reconstructed.Z, 1e-9)
	}
}

func TestNeutralCForSmallTilt(t *testing.T) {
	r := Solve(vecmath.V3(0, 0, 0), vecmath.V3(0, 0, 1), 10, true, vecmath.Vector3{})
	assert.Equal(t, 0.0, r.Axis.B)
	assert.Equal(t, 0.0, r.Axis.C)
}

func TestIsReachable(t *testing.T) {
	assert.True(t, IsReachable(vecmath.V3(0, 0, 1)))
	assert.True(t, IsReachable(vecmath.V3(1, 0, 0)))
	assert.False(t, IsReachable(vecmath.V3(0, 0, -0.1)))
}
