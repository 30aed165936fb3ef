// Package plan implements the planner driver (spec §4.5): a resumable
// state machine that walks the sweep generators over a TrackingGrid,
// committing each accepted sweep and yielding control to the host after
// every commit. Modeled per spec §9's design note as an explicit step()
// state machine rather than the source's coroutine-style generator.
package plan

import (
	"fmt"
	"log"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/sweep"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

// subPhase is the driver's internal sub-phase enum (spec §9).
type subPhase int

const (
	planarPhase subPhase = iota
	drillPhase
	partOffPhase
	donePhase
)

// Status is Step's outcome.
type Status int

const (
	// Yielded means a sweep committed; the caller should inspect
	// NumSweeps/RemainingVol/Deviation/Plan and may call Step again.
	Yielded Status = iota
	// Done means every phase has run to completion; further Step calls
	// are no-ops that return Done immediately.
	Done
	// Working means no commit happened on this call but the driver is
	// not finished (an inapplicable normal/sweep was skipped); call
	// Step again to keep driving without host-visible progress.
	Working
)

// sweepNormals is the fixed scan order for the planar and drill phases
// (spec §4.5 step 2-3).
var sweepNormals = []vecmath.Vector3{
	vecmath.V3(1, 0, 0),
	vecmath.V3(0, 1, 0),
	vecmath.V3(-1, 0, 0),
	vecmath.V3(0, -1, 0),
	vecmath.V3(0, 0, 1),
}

// Planner drives the sweep generators against a TrackingGrid, accumulating
// a model.Plan. All exported accessors are read-only observables the host
// polls at yield points (spec §9).
type Planner struct {
	grid       *tracking.Grid
	cfg        model.Config
	tool       model.ToolState
	workOffset vecmath.Vector3

	plan         model.Plan
	numSweeps    int
	removedVol   float64
	remainingVol float64
	deviation    float64

	phase     subPhase
	normalIdx int
	offset    float64

	sweepCounter uint32
}

// New starts a Planner for the given tracking grid. workOffset is the
// constant world-space offset from the work frame's origin to the
// machine frame's origin, forwarded to solve_ik via every sweep's
// PartialPath (spec §4.7).
func New(grid *tracking.Grid, cfg model.Config, workOffset vecmath.Vector3) *Planner {
	p := &Planner{
		grid:         grid,
		cfg:          cfg,
		tool:         model.NewToolState(cfg.ToolNaturalLength, cfg.ToolNaturalDiameter, cfg.EWRMax),
		workOffset:   workOffset,
		remainingVol: grid.RemainingWorkVolume(),
		phase:        planarPhase,
		normalIdx:    0,
	}
	if len(sweepNormals) > 0 {
		p.offset = grid.QueryWorkOffset(sweepNormals[0])
	}
	return p
}

// NumSweeps, RemainingVol, Deviation, and Plan are the host-polled
// observables (spec §4.5, §9).
func (p *Planner) NumSweeps() int          { return p.numSweeps }
func (p *Planner) RemainingVol() float64   { return p.remainingVol }
func (p *Planner) RemovedVol() float64     { return p.removedVol }
func (p *Planner) Deviation() float64      { return p.deviation }
func (p *Planner) Plan() model.Plan        { return p.plan }
func (p *Planner) Tool() model.ToolState   { return p.tool }

// Step advances the driver by at most one sweep commit (spec §5's "bounded
// work between yields"). Returns Yielded after a commit, Working if it
// made internal progress without a host-visible commit, and Done once
// every phase has completed.
func (p *Planner) Step() (Status, error) {
	switch p.phase {
	case planarPhase:
		return p.stepPlanar()
	case drillPhase:
		return p.stepDrill()
	case partOffPhase:
		return p.stepPartOff()
	default:
		return Done, nil
	}
}

// GenAllSweeps drives the planner to completion, returning the final
// accumulated plan. Convenience wrapper for callers (e.g. cmd/edmplan)
// that don't need incremental yields.
func (p *Planner) GenAllSweeps() (model.Plan, error) {
	for {
		status, err := p.Step()
		if err != nil {
			return p.plan, err
		}
		if status == Done {
			return p.plan, nil
		}
	}
}

func (p *Planner) stepPlanar() (Status, error) {
	if p.normalIdx >= len(sweepNormals) {
		p.phase = drillPhase
		p.normalIdx = 0
		return Working, nil
	}
	normal := sweepNormals[p.normalIdx]

	res, ok, err := sweep.PlanarSweep(p.grid, p.cfg, p.tool, normal, p.offset, p.cfg.ToolNaturalDiameter, p.sweepCounter, p.workOffset)
	if err != nil {
		// Spec §7: invariant violations abort only the current sweep; the
		// driver moves on to the next candidate rather than the whole plan.
		log.Printf("plan: planar sweep at normal %v offset %.4f aborted: %v", normal, p.offset, err)
		p.normalIdx++
		if p.normalIdx < len(sweepNormals) {
			p.offset = p.grid.QueryWorkOffset(sweepNormals[p.normalIdx])
		}
		return Working, nil
	}
	if !ok {
		p.normalIdx++
		if p.normalIdx < len(sweepNormals) {
			p.offset = p.grid.QueryWorkOffset(sweepNormals[p.normalIdx])
		}
		return Working, nil
	}

	committed, err := p.tryCommit(res)
	if err != nil {
		log.Printf("plan: planar sweep at normal %v offset %.4f aborted: %v", normal, p.offset, err)
		p.normalIdx++
		if p.normalIdx < len(sweepNormals) {
			p.offset = p.grid.QueryWorkOffset(sweepNormals[p.normalIdx])
		}
		return Working, nil
	}
	p.offset -= p.cfg.FeedDepth
	if !committed {
		return Working, nil
	}
	return Yielded, nil
}

func (p *Planner) stepDrill() (Status, error) {
	if p.normalIdx >= len(sweepNormals) {
		p.phase = partOffPhase
		return Working, nil
	}
	normal := sweepNormals[p.normalIdx]
	toolDiameter := p.cfg.ToolNaturalDiameter / 4

	res, ok, err := sweep.DrillSweep(p.grid, p.cfg, p.tool, normal, toolDiameter, p.sweepCounter, p.workOffset)
	p.normalIdx++ // drill_sweep is attempted at most once per normal (spec §4.5 step 3)
	if err != nil {
		log.Printf("plan: drill sweep at normal %v aborted: %v", normal, err)
		return Working, nil
	}
	if !ok {
		return Working, nil
	}

	if committed, err := p.tryCommit(res); err != nil {
		log.Printf("plan: drill sweep at normal %v aborted: %v", normal, err)
		return Working, nil
	} else if !committed {
		return Working, nil
	}
	return Yielded, nil
}

func (p *Planner) stepPartOff() (Status, error) {
	p.phase = donePhase // at most one part-off attempt regardless of outcome (spec §4.5 step 4)

	res, ok, err := sweep.PartOffSweep(p.grid, p.cfg, p.tool, p.sweepCounter, p.workOffset)
	if err != nil {
		log.Printf("plan: part-off sweep aborted: %v", err)
		return Done, nil
	}
	if !ok {
		return Done, nil
	}
	if committed, err := p.tryCommit(res); err != nil {
		log.Printf("plan: part-off sweep aborted: %v", err)
		return Done, nil
	} else if !committed {
		return Done, nil
	}
	return Yielded, nil
}

// tryCommit implements spec §4.5's commit validation: commit_removal is
// called; a zero-volume result means the sweep was redundant or
// impossible and the sweep counter does not advance.
func (p *Planner) tryCommit(res sweep.Result) (bool, error) {
	vol, err := p.grid.CommitRemoval(res.MinShapes, res.MaxShapes, res.AllowOvercut)
	if err != nil {
		return false, fmt.Errorf("plan: commit_removal: %w", err)
	}
	if vol <= 0 {
		return false, nil
	}

	p.sweepCounter++
	p.numSweeps++
	p.removedVol += vol
	p.plan = append(p.plan, res.Path...)
	p.tool = res.FinalTool

	dev := p.grid.ExtractWorkWithDeviation(true)
	p.deviation = float64(dev.Max())
	p.remainingVol = p.grid.RemainingWorkVolume()
	return true, nil
}
