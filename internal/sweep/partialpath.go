// Package sweep implements the PartialPath builder and the three sweep
// generator strategies (spec §4.4, §4.6): planar, drill, and part-off.
package sweep

import (
	"errors"
	"fmt"
	"log"

	"github.com/sparkwire/edmplan/internal/ik"
	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

// ErrImpossibleMinToolLength is returned when a sweep requires more tool
// length than the electrode's natural length can ever provide (spec §4.6,
// §7). The caller should skip the sweep.
var ErrImpossibleMinToolLength = errors.New("sweep: impossible min tool length")

// largeExtent is the "large h" used by remove_horizontal's ELH envelope
// (spec §4.6): big enough to span the whole tracking grid along the
// sweep normal regardless of job geometry, since min/max envelopes are
// truncated to the grid at commit time anyway.
const largeExtent = 1e5

// Result is what a sweep generator returns on success (spec §4.4): the
// built path plus the min/max commit envelopes.
type Result struct {
	Path         model.Plan
	MinShapes    []shape.Shape
	MaxShapes    []shape.Shape
	AllowOvercut bool
	// FinalTool is this sweep's tool state after any tool-change/grind
	// events; the driver adopts it on a successful commit (spec §4.5).
	FinalTool model.ToolState
}

// PartialPath accumulates a single sweep's path points and commit envelopes
// (spec §4.6).
type PartialPath struct {
	SweepIndex uint32
	Group      string
	Normal     vecmath.Vector3

	minToolLength float64
	tool          model.ToolState
	workOffset    vecmath.Vector3

	prevTipPos *vecmath.Vector3
	points     []model.PathPoint
	minShapes  []shape.Shape
	maxShapes  []shape.Shape

	// toolChanged records whether this PartialPath emitted at least one
	// RemoveTool (tool-change) point.
	toolChanged bool
}

// New constructs a PartialPath for one sweep. group labels the
// strategy/normal combination for diagnostics (e.g. "planar+x"). If the
// incoming tool's length is already below minToolLength, a tool-change
// event is emitted immediately (spec §4.6).
func New(sweepIndex uint32, group string, normal vecmath.Vector3, minToolLength float64, tool model.ToolState, workOffset vecmath.Vector3) (*PartialPath, error) {
	if tool.ToolNaturalLength < minToolLength {
		return nil, fmt.Errorf("%w: natural length %.4f < required %.4f", ErrImpossibleMinToolLength, tool.ToolNaturalLength, minToolLength)
	}

	pp := &PartialPath{
		SweepIndex:    sweepIndex,
		Group:         group,
		Normal:        normal.Normalize(),
		minToolLength: minToolLength,
		tool:          tool,
		workOffset:    workOffset,
	}
	if tool.ToolLength < minToolLength {
		pp.emitToolChange()
	}
	return pp, nil
}

// Tool returns the PartialPath's current tool state, reflecting any
// tool-change events emitted so far.
func (pp *PartialPath) Tool() model.ToolState { return pp.tool }

// emitToolChange appends a RemoveTool marker point and resets the tool to
// pristine length under a fresh index (spec §4.6). The point carries no
// meaningful tip pose (a tool change is a machine-side station swap, not a
// cutting motion); it reuses the last known tip position if any.
func (pp *PartialPath) emitToolChange() {
	pp.tool.ToolIndex++
	pp.tool.ToolLength = pp.tool.ToolNaturalLength
	pp.toolChanged = true

	pos := vecmath.Vector3{}
	if pp.prevTipPos != nil {
		pos = *pp.prevTipPos
	}
	pp.points = append(pp.points, pp.resolvePoint(pos, pp.Normal, model.RemoveTool, nil, nil))
}

func (pp *PartialPath) resolvePoint(tipPosWork, tipNormal vecmath.Vector3, kind model.PointKind, toolRotDelta, grindDelta *float64) model.PathPoint {
	if !ik.IsReachable(tipNormal) {
		log.Printf("sweep: tip normal %v faces down (z < 0); emitting the point anyway", tipNormal)
	}
	res := ik.Solve(tipPosWork, tipNormal, pp.tool.ToolLength, true, pp.workOffset)
	return model.PathPoint{
		TipPosWork:    res.TipPosWork,
		TipPosMachine: res.TipPosMachine,
		TipNormalWork: tipNormal,
		Axis:          model.AxisValues{X: res.Axis.X, Y: res.Axis.Y, Z: res.Axis.Z, B: res.Axis.B, C: res.Axis.C},
		Kind:          kind,
		SweepIndex:    pp.SweepIndex,
		ToolRotDelta:  toolRotDelta,
		GrindDelta:    grindDelta,
	}
}

// NonRemove appends a MoveIn or MoveOut point with no geometry
// contribution (spec §4.6).
func (pp *PartialPath) NonRemove(kind model.PointKind, tipPosWork vecmath.Vector3) {
	pp.points = append(pp.points, pp.resolvePoint(tipPosWork, pp.Normal, kind, nil, nil))
	p := tipPosWork
	pp.prevTipPos = &p
}

// RemoveHorizontal appends a horizontal RemoveWork move from the previous
// tip position to tipPosWork, requiring (tipPosWork-prev)*normal == 0
// (spec §4.6). Appends ELH min/max commit shapes extruded along normal.
func (pp *PartialPath) RemoveHorizontal(tipPosWork vecmath.Vector3, toolRotDelta *float64, maxDiameter, minDiameter float64) error {
	if pp.prevTipPos == nil {
		return fmt.Errorf("sweep: remove_horizontal requires a prior tip position")
	}
	prev := *pp.prevTipPos
	delta := tipPosWork.Sub(prev)
	if d := delta.Dot(pp.Normal); d > 1e-6 || d < -1e-6 {
		return fmt.Errorf("sweep: remove_horizontal move is not horizontal (normal-component=%.6f)", d)
	}

	// Shift both endpoints by the same amount along normal so the ELH
	// (which spans [p, p+h*normal)) is centered on the cut's actual depth
	// rather than starting there; the shift preserves (q-p)*normal == 0.
	half := pp.Normal.Scale(largeExtent / 2)
	p, q := prev.Sub(half), tipPosWork.Sub(half)

	if minDiameter > 0 {
		minShape, err := shape.NewELH(p, q, pp.Normal, minDiameter/2, largeExtent)
		if err != nil {
			return fmt.Errorf("sweep: building min ELH: %w", err)
		}
		pp.minShapes = append(pp.minShapes, minShape)
	}
	maxShape, err := shape.NewELH(p, q, pp.Normal, maxDiameter/2, largeExtent)
	if err != nil {
		return fmt.Errorf("sweep: building max ELH: %w", err)
	}
	pp.maxShapes = append(pp.maxShapes, maxShape)

	pp.points = append(pp.points, pp.resolvePoint(tipPosWork, pp.Normal, model.RemoveWork, toolRotDelta, nil))
	tip := tipPosWork
	pp.prevTipPos = &tip
	return nil
}

// RemoveVertical appends a vertical RemoveWork move, requiring the move be
// parallel to normal (spec §4.6). Appends Cylinder min/max commit shapes.
func (pp *PartialPath) RemoveVertical(tipPosWork vecmath.Vector3, toolRotDelta *float64, maxDiameter, minDiameter float64) error {
	if pp.prevTipPos == nil {
		return fmt.Errorf("sweep: remove_vertical requires a prior tip position")
	}
	prev := *pp.prevTipPos
	delta := tipPosWork.Sub(prev)
	if c := delta.Cross(pp.Normal); c.Length() > 1e-6 {
		return fmt.Errorf("sweep: remove_vertical move is not parallel to normal")
	}

	aProj := prev.Dot(pp.Normal)
	bProj := tipPosWork.Dot(pp.Normal)
	var p0 vecmath.Vector3
	if aProj <= bProj {
		p0 = prev
	} else {
		p0 = tipPosWork
	}
	h := delta.Length()

	if h > 1e-9 {
		if minDiameter > 0 {
			minShape, err := shape.NewCylinder(p0, pp.Normal, minDiameter/2, h)
			if err != nil {
				return fmt.Errorf("sweep: building min cylinder: %w", err)
			}
			pp.minShapes = append(pp.minShapes, minShape)
		}
		maxShape, err := shape.NewCylinder(p0, pp.Normal, maxDiameter/2, h)
		if err != nil {
			return fmt.Errorf("sweep: building max cylinder: %w", err)
		}
		pp.maxShapes = append(pp.maxShapes, maxShape)
	}

	pp.points = append(pp.points, pp.resolvePoint(tipPosWork, pp.Normal, model.RemoveWork, toolRotDelta, nil))
	p := tipPosWork
	pp.prevTipPos = &p
	return nil
}

// AddMinRemoveShape attributes a min-cut shape that cannot be assigned to a
// single RemoveHorizontal/RemoveVertical call (spec §4.6), e.g. planar
// sweep's multi-repeat min-cut box.
func (pp *PartialPath) AddMinRemoveShape(s shape.Shape) {
	pp.minShapes = append(pp.minShapes, s)
}

// AddMaxRemoveShape is the MaxShapes analogue of AddMinRemoveShape.
func (pp *PartialPath) AddMaxRemoveShape(s shape.Shape) {
	pp.maxShapes = append(pp.maxShapes, s)
}

// DiscardToolTip shortens the tool by length, or emits a tool-change if
// that would go below minToolLength (spec §4.6).
func (pp *PartialPath) DiscardToolTip(length float64) {
	if pp.tool.ToolLength-length < pp.minToolLength {
		pp.emitToolChange()
		return
	}
	pp.tool.ToolLength -= length
}

// Finalize returns the accumulated Result. allowOvercut is forwarded to the
// tracking grid's commit_removal call (spec §4.4's part-off sweep sets
// this true; the others leave it false).
func (pp *PartialPath) Finalize(allowOvercut bool) Result {
	return Result{
		Path:         append(model.Plan(nil), pp.points...),
		MinShapes:    pp.minShapes,
		MaxShapes:    pp.maxShapes,
		AllowOvercut: allowOvercut,
		FinalTool:    pp.tool,
	}
}
