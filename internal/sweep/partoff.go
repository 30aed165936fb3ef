package sweep

import (
	"math"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

// PartOffSweep implements the part-off generator (spec §4.4.3): a single
// thin horizontal kerf cut separating the finished piece from the
// remaining stock. Fixed normal +x, cut direction +y. Returns ok == false
// if there is no remaining work to separate.
func PartOffSweep(grid *tracking.Grid, cfg model.Config, tool model.ToolState, sweepIndex uint32, workOffset vecmath.Vector3) (Result, bool, error) {
	normal := vecmath.V3(1, 0, 0)

	ctMin := grid.QueryWorkOffset(vecmath.V3(0, -1, 0))
	ctMax := grid.QueryWorkOffset(vecmath.V3(0, 1, 0))
	nrMin := grid.QueryWorkOffset(vecmath.V3(-1, 0, 0))
	nrMax := grid.QueryWorkOffset(vecmath.V3(1, 0, 0))

	if math.IsInf(nrMin, -1) && math.IsInf(nrMax, -1) {
		// No remaining work along x at all: nothing left to separate.
		return Result{}, false, nil
	}
	if math.IsInf(ctMin, -1) || math.IsInf(ctMax, -1) {
		return Result{}, false, nil
	}

	z := -cfg.StockCutWidth / 2
	start := vecmath.V3(0, -ctMin, z)
	end := vecmath.V3(0, ctMax, z)

	pp, err := New(sweepIndex, "partoff", normal, 0, tool, workOffset)
	if err != nil {
		return Result{}, false, err
	}

	above := normal.Scale(0) // part-off approaches directly; no vertical retract along x needed
	pp.NonRemove(model.MoveIn, start.Add(above))
	// tool_rot_delta is a placeholder value in the source for the part-off
	// strategy (spec §9 open question (b)); kept literally rather than
	// fixed up, since the emitter treats it as advisory.
	partOffToolRotDelta := 123.0
	if err := pp.RemoveHorizontal(end, &partOffToolRotDelta, cfg.StockCutWidth, cfg.StockCutWidth); err != nil {
		return Result{}, false, err
	}
	pp.NonRemove(model.MoveOut, end.Add(above))

	return pp.Finalize(true), true, nil
}
