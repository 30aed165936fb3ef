package gcode

import (
	"fmt"
	"strings"

	"github.com/sparkwire/edmplan/internal/model"
)

// Generator produces G-code from a planner's model.Plan, a flat ordered
// list of path points (spec §6). Adapted from the teacher's placement
// emitter: the header/footer/number-formatting machinery is kept, while
// the body walks path points instead of rectangular part perimeters.
type Generator struct {
	Config  model.Config
	profile model.GCodeProfile
}

// New builds a Generator for the given job config, resolving its named
// G-code profile against the built-in set (falling back to Generic per
// model.GetProfile).
func New(cfg model.Config) *Generator {
	return &Generator{
		Config:  cfg,
		profile: model.GetProfile(cfg.GCodeProfile),
	}
}

// NewWithProfile builds a Generator using an explicitly resolved profile
// rather than looking cfg.GCodeProfile up in the built-in set — used when
// the caller has already resolved a user's custom profile (store.LoadCustomProfiles)
// in preference to a built-in one of the same name.
func NewWithProfile(cfg model.Config, profile model.GCodeProfile) *Generator {
	return &Generator{
		Config:  cfg,
		profile: profile,
	}
}

// Generate emits one G-code program for the whole plan. A new sweep
// begins wherever sweep_index changes (spec §6); the emitter marks this
// with a comment but does not otherwise interrupt the program.
func (g *Generator) Generate(plan model.Plan) string {
	var b strings.Builder

	g.writeHeader(&b, plan)

	var prev *model.PathPoint
	var curSweep uint32
	first := true

	for i := range plan {
		pt := &plan[i]
		if first || pt.SweepIndex != curSweep {
			b.WriteString(g.comment(fmt.Sprintf("sweep %d (%s)", pt.SweepIndex, pt.Kind)))
			curSweep = pt.SweepIndex
			first = false
		}
		g.writePoint(&b, pt, prev)
		prev = pt
	}

	g.writeFooter(&b)
	return b.String()
}

// writePoint emits one motion line. kind selects the machine-mode prefix
// (rapid for MoveIn/MoveOut/RemoveTool, feed for RemoveWork); axis values
// are emitted as differences from the previous point (spec §6).
func (g *Generator) writePoint(b *strings.Builder, pt, prev *model.PathPoint) {
	if pt.Kind == model.RemoveTool {
		b.WriteString(g.comment("tool change"))
	}

	move := g.profile.RapidMove
	if pt.Kind == model.RemoveWork {
		move = g.profile.FeedMove
	}

	var parts []string
	parts = append(parts, move)
	if prev == nil || pt.Axis.X != prev.Axis.X {
		parts = append(parts, "X"+g.format(pt.Axis.X))
	}
	if prev == nil || pt.Axis.Y != prev.Axis.Y {
		parts = append(parts, "Y"+g.format(pt.Axis.Y))
	}
	if prev == nil || pt.Axis.Z != prev.Axis.Z {
		parts = append(parts, "Z"+g.format(pt.Axis.Z))
	}
	if prev == nil || pt.Axis.B != prev.Axis.B {
		parts = append(parts, "B"+g.format(pt.Axis.B))
	}
	if prev == nil || pt.Axis.C != prev.Axis.C {
		parts = append(parts, "C"+g.format(pt.Axis.C))
	}

	if pt.Kind == model.RemoveWork {
		parts = append(parts, "F"+g.format(g.feedRateFor(pt)))
	}

	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n")

	if pt.ToolRotDelta != nil {
		b.WriteString(g.comment(fmt.Sprintf("tool_rot_delta=%s rad", g.format(*pt.ToolRotDelta))))
	}
	if pt.GrindDelta != nil {
		b.WriteString(g.comment(fmt.Sprintf("grind_delta=%s mm", g.format(*pt.GrindDelta))))
	}
}

// feedRateFor is a placeholder constant feed rate; the spec does not
// model per-point feed rates, only config-level cut parameters, so every
// RemoveWork move uses the same nominal rate.
const nominalFeedRate = 20.0 // mm/min, typical wire-EDM cutting feed

func (g *Generator) feedRateFor(pt *model.PathPoint) float64 {
	return nominalFeedRate
}

func (g *Generator) writeHeader(b *strings.Builder, plan model.Plan) {
	p := g.profile

	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" edmplan GCode — %d path points, %d sweeps\n", len(plan), len(plan.SweepIndices())))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Stock: d=%.2fmm l=%.2fmm, Tool: d=%.3fmm l=%.2fmm\n",
		g.Config.StockDiameter, g.Config.StockLength, g.Config.ToolNaturalDiameter, g.Config.ToolNaturalLength))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Profile: %s\n", p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	if p.SpindleStart != "" {
		b.WriteString(p.SpindleStart + "\n")
	}
	if p.HomeAll != "" {
		b.WriteString(p.HomeAll + "\n")
	}
	if p.AbsoluteMode != "" {
		b.WriteString(p.AbsoluteMode + "\n")
	}
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(p.CommentPrefix + " === plan complete ===\n")

	safeZ := g.Config.StockLength + g.Config.StockTopBuffer
	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(safeZ))
		b.WriteString(code + "\n")
	}
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats an axis value according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	layout := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(layout, v)
}
