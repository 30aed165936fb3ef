package model

import "github.com/google/uuid"

// Job ties a planning session's inputs and last-known result together for
// save/load (spec §6's "persisted state: none; planner is pure in-memory" —
// a Job is the host's own record of what it asked the planner to do, not
// planner-internal state).
type Job struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TargetPath string `json:"target_path"` // path to the target mesh/surface description
	Config     Config `json:"config"`

	// Result, if present, is the outcome of the most recent completed or
	// partial plan run against this job.
	Result *JobResult `json:"result,omitempty"`
}

// JobResult summarizes a plan run: the emitted path plus the accounting
// figures the host polls at yield points (spec §4.5, §6).
type JobResult struct {
	Plan         Plan    `json:"plan"`
	RemovedVol   float64 `json:"removed_vol"`   // mm^3
	RemainingVol float64 `json:"remaining_vol"` // mm^3
	Deviation    float64 `json:"deviation"`     // mm, max over extract_work_with_deviation
	NumSweeps    int     `json:"num_sweeps"`
	FinalTool    ToolState `json:"final_tool"`
}

// NewJob creates a Job with a generated ID and a default Config.
func NewJob(name, targetPath string) Job {
	return Job{
		ID:         uuid.New().String()[:8],
		Name:       name,
		TargetPath: targetPath,
		Config:     DefaultConfig(),
	}
}
