package sweep

import (
	"math"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

// scanRes is the drill-sweep candidate stride (spec §4.4.2).
const scanRes = 0.5

// DrillSweep implements the drill-sweep generator (spec §4.4.2): a straight
// vertical plunge (one RemoveVertical move per hole, no helical motion) at
// admissible columns perpendicular to normal. Returns
// ok == false if no hole is accepted.
func DrillSweep(grid *tracking.Grid, cfg model.Config, tool model.ToolState, normal vecmath.Vector3, toolDiameter float64, sweepIndex uint32, workOffset vecmath.Vector3) (Result, bool, error) {
	normal = normal.Normalize()
	dirA, dirB := orthonormalBasis(normal)

	center := grid.GridCenter()
	radius := grid.BoundingRadius()
	holeDiameter := 1.1 * toolDiameter

	pp, err := New(sweepIndex, "drill", normal, 0, tool, workOffset)
	if err != nil {
		return Result{}, false, err
	}

	n := int(math.Ceil(radius / scanRes))
	anyHole := false

	for i := -n; i <= n; i++ {
		a := float64(i) * scanRes
		if math.Abs(a) > radius {
			continue
		}
		halfSpan := math.Sqrt(math.Max(radius*radius-a*a, 0))
		m := int(math.Ceil(halfSpan / scanRes))
		for j := -m; j <= m; j++ {
			b := float64(j) * scanRes
			if a*a+b*b > radius*radius {
				continue
			}
			axisPoint := center.Add(dirA.Scale(a)).Add(dirB.Scale(b))

			top := axisPoint.Add(normal.Scale(radius))
			bottom := axisPoint.Sub(normal.Scale(radius))
			span := 2 * radius

			hole, err := shape.NewCylinder(bottom, normal, holeDiameter/2, span)
			if err != nil {
				continue
			}
			if !grid.QueryHasWork(hole) || grid.QueryBlocked(hole) {
				continue
			}

			pp.NonRemove(model.MoveIn, top.Add(normal.Scale(2*toolDiameter)))
			pp.NonRemove(model.MoveIn, top)
			if err := pp.RemoveVertical(bottom, nil, holeDiameter, toolDiameter); err != nil {
				return Result{}, false, err
			}
			pp.NonRemove(model.MoveOut, top.Add(normal.Scale(2*toolDiameter)))
			anyHole = true
		}
	}

	if !anyHole {
		return Result{}, false, nil
	}
	return pp.Finalize(false), true, nil
}
