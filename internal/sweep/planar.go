package sweep

import (
	"math"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
)

// segClass classifies one tessellated segment of a planar-sweep row
// (spec §4.4.1 step 5).
type segClass int

const (
	segEmpty segClass = iota
	segWork
	segBlocked
)

// segmentLength is the canonical tessellation step along feedDir
// (spec §4.4.1 step 4).
const segmentLength = 1.0

// lengthPenalty is the small per-segment-length penalty subtracted from a
// scan candidate's coverage score during the greedy cover (spec §4.4.1
// step 6: "minus a small length penalty").
const lengthPenalty = 0.01

// PlanarSweep implements the planar-sweep generator (spec §4.4.1): a layer
// removal at the plane x*normal == offset. Returns ok == false if the
// strategy is inapplicable (no work above offset, or no scans emitted).
func PlanarSweep(grid *tracking.Grid, cfg model.Config, tool model.ToolState, normal vecmath.Vector3, offset, toolDiameter float64, sweepIndex uint32, workOffset vecmath.Vector3) (Result, bool, error) {
	normal = normal.Normalize()
	if grid.QueryWorkOffset(normal) < offset {
		return Result{}, false, nil
	}

	feedDir, rowDir := orthonormalBasis(normal)
	center := grid.GridCenter()
	radius := grid.BoundingRadius()
	res := grid.Res()
	feedDepth := cfg.FeedDepth
	feedWidth := toolDiameter - res
	if feedWidth <= 0 {
		feedWidth = toolDiameter
	}

	// planeOrigin: a point satisfying p*normal == offset, as close as
	// possible to the grid center, used as the tessellation's local origin.
	planeOrigin := center.Sub(normal.Scale(center.Dot(normal) - offset))

	halfDiag := 0.5 * math.Sqrt(3) * res
	trvgRadius := radius + halfDiag

	toolRadius := toolDiameter / 2
	toolRadiusSegs := int(math.Ceil(toolRadius / segmentLength))

	nRows := int(math.Ceil(radius / feedWidth))
	pp, err := New(sweepIndex, "planar", normal, 0, tool, workOffset)
	if err != nil {
		return Result{}, false, err
	}

	anyScan := false
	consumedFraction := 0.0
	grindChunk := feedDepth + 2*res

	for rowIdx := -nRows; rowIdx <= nRows; rowIdx++ {
		rowCenter := float64(rowIdx) * feedWidth
		if math.Abs(rowCenter) > radius {
			continue
		}
		halfSpan := math.Sqrt(math.Max(radius*radius-rowCenter*rowCenter, 0))
		nSegs := int(math.Ceil(halfSpan / segmentLength))
		if nSegs == 0 {
			continue
		}

		classes := make([]segClass, 2*nSegs+1)
		points := make([]vecmath.Vector3, 2*nSegs+1)
		for i := -nSegs; i <= nSegs; i++ {
			idx := i + nSegs
			segCenter := float64(i) * segmentLength
			p := planeOrigin.Add(rowDir.Scale(rowCenter)).Add(feedDir.Scale(segCenter))
			points[idx] = p
			classes[idx] = classifySegment(grid, p, normal, feedDir, rowDir, trvgRadius, feedDepth, segmentLength, feedWidth)
		}

		type candidate struct {
			startIdx, endIdx int
			dir              int
			covered          map[int]bool
		}
		var candidates []candidate

		accessible := func(i int) bool {
			for d := -toolRadiusSegs; d <= toolRadiusSegs; d++ {
				j := i + d
				if j < 0 || j >= len(classes) {
					continue
				}
				if classes[j] != segEmpty {
					return false
				}
			}
			return true
		}
		blockedNear := func(i int) bool {
			for d := -toolRadiusSegs; d <= toolRadiusSegs; d++ {
				j := i + d
				if j < 0 || j >= len(classes) {
					continue // out of row extent: treat edge as clear
				}
				if classes[j] == segBlocked {
					return true
				}
			}
			return false
		}

		for i := range classes {
			if !accessible(i) {
				continue
			}
			for _, dir := range []int{1, -1} {
				end := i
				covered := map[int]bool{}
				for {
					next := end + dir
					if next < 0 || next >= len(classes) {
						break
					}
					if blockedNear(next) {
						break
					}
					end = next
					for d := -toolRadiusSegs; d <= toolRadiusSegs; d++ {
						j := end + d
						if j >= 0 && j < len(classes) && classes[j] == segWork {
							covered[j] = true
						}
					}
				}
				if len(covered) > 0 {
					candidates = append(candidates, candidate{startIdx: i, endIdx: end, dir: dir, covered: covered})
				}
			}
		}

		// Greedy set cover over this row's Work segments.
		uncovered := map[int]bool{}
		for i, c := range classes {
			if c == segWork {
				uncovered[i] = true
			}
		}
		for len(uncovered) > 0 && len(candidates) > 0 {
			bestIdx := -1
			bestScore := math.Inf(-1)
			for ci, c := range candidates {
				gain := 0
				for j := range c.covered {
					if uncovered[j] {
						gain++
					}
				}
				if gain == 0 {
					continue
				}
				length := float64(abs(c.endIdx-c.startIdx)) * segmentLength
				score := float64(gain) - lengthPenalty*length
				if score > bestScore {
					bestScore = score
					bestIdx = ci
				}
			}
			if bestIdx < 0 {
				break
			}
			chosen := candidates[bestIdx]
			candidates = append(candidates[:bestIdx], candidates[bestIdx+1:]...)
			for j := range chosen.covered {
				delete(uncovered, j)
			}

			startPt := points[chosen.startIdx]
			endPt := points[chosen.endIdx]
			scanLen := endPt.Sub(startPt).Length()
			if scanLen < 1e-9 {
				continue
			}
			workArea := float64(len(chosen.covered)) * segmentLength * feedWidth
			toolArea := math.Pi * toolRadius * toolRadius
			numScans := int(math.Ceil(workArea*cfg.EWRMax/toolArea + 0.6))
			if numScans < 1 {
				numScans = 1
			}

			aboveHeight := normal.Scale(2 * trvgRadius)
			scanDirVec := endPt.Sub(startPt).Normalize()
			forward, backward := startPt, endPt

			for r := 0; r < numScans; r++ {
				from, to := forward, backward
				if r%2 == 1 {
					from, to = backward, forward
				}

				pp.NonRemove(model.MoveIn, from.Add(aboveHeight))
				pp.NonRemove(model.MoveIn, from)
				if err := pp.RemoveHorizontal(to, nil, toolDiameter, toolDiameter-2*res); err != nil {
					return Result{}, false, err
				}
				pp.NonRemove(model.MoveOut, to.Add(aboveHeight))
				anyScan = true

				consumedFraction += cfg.EWRMax * (workArea / float64(numScans)) / toolArea
				if consumedFraction >= 1.0 {
					pp.DiscardToolTip(grindChunk)
					consumedFraction = 0
				}
			}

			mid := startPt.Add(endPt).Scale(0.5)
			boxCenter := mid.Sub(normal.Scale(grindChunk / 2))
			minBox, err := shape.NewBox(boxCenter,
				scanDirVec.Scale(scanLen/2),
				rowDir.Scale(toolDiameter/2),
				normal.Scale(grindChunk/2))
			if err == nil {
				pp.AddMinRemoveShape(minBox)
			}
		}
	}

	if !anyScan {
		return Result{}, false, nil
	}
	if consumedFraction > 0 {
		pp.DiscardToolTip(grindChunk * consumedFraction)
	}

	return pp.Finalize(false), true, nil
}

func classifySegment(grid *tracking.Grid, p, normal, feedDir, rowDir vecmath.Vector3, trvgRadius, feedDepth, segLen, rowWidth float64) segClass {
	aboveCenter := p.Add(normal.Scale(trvgRadius))
	aboveBox, err := shape.NewBox(aboveCenter, feedDir.Scale(segLen/2), rowDir.Scale(rowWidth/2), normal.Scale(trvgRadius))
	if err == nil && grid.QueryBlocked(aboveBox) {
		return segBlocked
	}

	slabCenter := p.Sub(normal.Scale(feedDepth / 2))
	slabBox, err := shape.NewBox(slabCenter, feedDir.Scale(segLen/2), rowDir.Scale(rowWidth/2), normal.Scale(feedDepth/2))
	if err == nil && grid.QueryHasWork(slabBox) {
		return segWork
	}
	return segEmpty
}

// orthonormalBasis builds (feedDir, rowDir) perpendicular to normal.
func orthonormalBasis(normal vecmath.Vector3) (feedDir, rowDir vecmath.Vector3) {
	ref := vecmath.V3(0, 0, 1)
	if math.Abs(normal.Dot(ref)) > 0.9 {
		ref = vecmath.V3(1, 0, 0)
	}
	feedDir = ref.Sub(normal.Scale(ref.Dot(normal))).Normalize()
	rowDir = normal.Cross(feedDir).Normalize()
	return feedDir, rowDir
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
