package sweep

import (
	"errors"
	"testing"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

func shapeBoxHelper() (shape.Shape, error) {
	return shape.NewBox(vecmath.Vector3{}, vecmath.V3(1, 0, 0), vecmath.V3(0, 1, 0), vecmath.V3(0, 0, 1))
}

func freshTool() model.ToolState {
	return model.NewToolState(40.0, 0.25, 0.3)
}

func TestNewImpossibleMinToolLength(t *testing.T) {
	_, err := New(0, "test", vecmath.V3(1, 0, 0), 50.0, freshTool(), vecmath.Vector3{})
	if !errors.Is(err, ErrImpossibleMinToolLength) {
		t.Fatalf("expected ErrImpossibleMinToolLength, got %v", err)
	}
}

func TestNewEmitsToolChangeWhenTooShort(t *testing.T) {
	tool := freshTool()
	tool.ToolLength = 5.0 // below minToolLength

	pp, err := New(0, "test", vecmath.V3(0, 0, 1), 10.0, tool, vecmath.Vector3{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := pp.Finalize(false)
	if len(res.Path) != 1 || res.Path[0].Kind != model.RemoveTool {
		t.Fatalf("expected one RemoveTool point from construction, got %+v", res.Path)
	}
	if pp.Tool().ToolIndex != 1 {
		t.Errorf("expected tool index incremented to 1, got %d", pp.Tool().ToolIndex)
	}
	if pp.Tool().ToolLength != tool.ToolNaturalLength {
		t.Errorf("expected tool length reset to natural, got %v", pp.Tool().ToolLength)
	}
}

func TestNewNoToolChangeWhenLongEnough(t *testing.T) {
	pp, err := New(0, "test", vecmath.V3(0, 0, 1), 10.0, freshTool(), vecmath.Vector3{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := pp.Finalize(false)
	if len(res.Path) != 0 {
		t.Fatalf("expected no path points yet, got %+v", res.Path)
	}
}

func TestRemoveHorizontalHappyPath(t *testing.T) {
	normal := vecmath.V3(1, 0, 0)
	pp, err := New(0, "planar", normal, 10.0, freshTool(), vecmath.Vector3{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := vecmath.V3(5, 0, 2)
	pp.NonRemove(model.MoveIn, start)

	end := vecmath.V3(5, 3, 2) // perpendicular to normal: fine
	d := 0.1
	if err := pp.RemoveHorizontal(end, &d, 0.25, 0.2); err != nil {
		t.Fatalf("RemoveHorizontal: %v", err)
	}

	res := pp.Finalize(false)
	if len(res.Path) != 2 {
		t.Fatalf("expected 2 points, got %d", len(res.Path))
	}
	if res.Path[1].Kind != model.RemoveWork {
		t.Errorf("expected RemoveWork, got %v", res.Path[1].Kind)
	}
	if len(res.MinShapes) != 1 || len(res.MaxShapes) != 1 {
		t.Errorf("expected 1 min + 1 max shape, got %d/%d", len(res.MinShapes), len(res.MaxShapes))
	}
}

func TestRemoveHorizontalRejectsNonHorizontalMove(t *testing.T) {
	normal := vecmath.V3(1, 0, 0)
	pp, _ := New(0, "planar", normal, 10.0, freshTool(), vecmath.Vector3{})
	pp.NonRemove(model.MoveIn, vecmath.V3(5, 0, 2))

	// Moves along normal: not horizontal.
	if err := pp.RemoveHorizontal(vecmath.V3(8, 0, 2), nil, 0.25, 0.2); err == nil {
		t.Fatalf("expected error for non-horizontal move")
	}
}

func TestRemoveHorizontalRequiresPriorPoint(t *testing.T) {
	pp, _ := New(0, "planar", vecmath.V3(1, 0, 0), 10.0, freshTool(), vecmath.Vector3{})
	if err := pp.RemoveHorizontal(vecmath.V3(1, 2, 3), nil, 0.25, 0.2); err == nil {
		t.Fatalf("expected error when no prior tip position set")
	}
}

func TestRemoveVerticalHappyPath(t *testing.T) {
	normal := vecmath.V3(0, 0, 1)
	pp, err := New(0, "drill", normal, 10.0, freshTool(), vecmath.Vector3{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	top := vecmath.V3(2, 2, 10)
	pp.NonRemove(model.MoveIn, top)

	bottom := vecmath.V3(2, 2, 0)
	if err := pp.RemoveVertical(bottom, nil, 0.25, 0.2); err != nil {
		t.Fatalf("RemoveVertical: %v", err)
	}

	res := pp.Finalize(false)
	if len(res.MaxShapes) != 1 {
		t.Fatalf("expected 1 max shape, got %d", len(res.MaxShapes))
	}
}

func TestRemoveVerticalRejectsNonParallelMove(t *testing.T) {
	normal := vecmath.V3(0, 0, 1)
	pp, _ := New(0, "drill", normal, 10.0, freshTool(), vecmath.Vector3{})
	pp.NonRemove(model.MoveIn, vecmath.V3(2, 2, 10))

	if err := pp.RemoveVertical(vecmath.V3(5, 2, 0), nil, 0.25, 0.2); err == nil {
		t.Fatalf("expected error for non-parallel move")
	}
}

func TestDiscardToolTipEmitsToolChangeBelowMin(t *testing.T) {
	tool := freshTool()
	tool.ToolLength = 11.0
	pp, err := New(0, "planar", vecmath.V3(1, 0, 0), 10.0, tool, vecmath.Vector3{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pp.DiscardToolTip(5.0) // 11 - 5 = 6 < 10 -> tool change

	if pp.Tool().ToolIndex != 1 {
		t.Errorf("expected tool-change, index=%d", pp.Tool().ToolIndex)
	}
	res := pp.Finalize(false)
	if len(res.Path) != 1 || res.Path[0].Kind != model.RemoveTool {
		t.Fatalf("expected a RemoveTool point, got %+v", res.Path)
	}
}

func TestDiscardToolTipShortensWithoutChange(t *testing.T) {
	tool := freshTool()
	tool.ToolLength = 20.0
	pp, _ := New(0, "planar", vecmath.V3(1, 0, 0), 10.0, tool, vecmath.Vector3{})
	pp.DiscardToolTip(5.0)

	if pp.Tool().ToolIndex != 0 {
		t.Errorf("expected no tool-change, index=%d", pp.Tool().ToolIndex)
	}
	if pp.Tool().ToolLength != 15.0 {
		t.Errorf("expected tool length 15.0, got %v", pp.Tool().ToolLength)
	}
}

func TestAddMinRemoveShape(t *testing.T) {
	pp, _ := New(0, "planar", vecmath.V3(1, 0, 0), 10.0, freshTool(), vecmath.Vector3{})
	box, err := shapeBoxHelper()
	if err != nil {
		t.Fatalf("shapeBoxHelper: %v", err)
	}
	pp.AddMinRemoveShape(box)
	res := pp.Finalize(false)
	if len(res.MinShapes) != 1 {
		t.Fatalf("expected 1 min shape, got %d", len(res.MinShapes))
	}
}
