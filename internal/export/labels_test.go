package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sparkwire/edmplan/internal/model"
)

func buildTagTestJob() model.Job {
	cfg := model.DefaultConfig()
	return model.Job{
		ID:     "job-0001",
		Name:   "bracket-01",
		Config: cfg,
		Result: &model.JobResult{
			NumSweeps:    12,
			RemovedVol:   1234.5,
			RemainingVol: 6.75,
			Deviation:    0.0123,
			FinalTool:    model.NewToolState(cfg.ToolNaturalLength, cfg.ToolNaturalDiameter, cfg.EWRMax),
		},
	}
}

func TestExportJobTag_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tag.pdf")

	if err := ExportJobTag(path, buildTagTestJob()); err != nil {
		t.Fatalf("ExportJobTag returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
}

func TestExportJobTag_NoResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no_result.pdf")

	job := buildTagTestJob()
	job.Result = nil

	if err := ExportJobTag(path, job); err == nil {
		t.Fatal("expected error for job with no result, got nil")
	}
}

func TestTagInfo_JSONRoundTrip(t *testing.T) {
	info := TagInfo{
		JobID:      "job-0001",
		JobName:    "bracket-01",
		NumSweeps:  12,
		Deviation:  0.0123,
		RemovedVol: 1234.5,
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded TagInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if decoded.JobID != info.JobID {
		t.Errorf("job ID mismatch: got %q, want %q", decoded.JobID, info.JobID)
	}
	if decoded.NumSweeps != info.NumSweeps {
		t.Errorf("num sweeps mismatch: got %d, want %d", decoded.NumSweeps, info.NumSweeps)
	}
	if decoded.Deviation != info.Deviation {
		t.Errorf("deviation mismatch: got %.4f, want %.4f", decoded.Deviation, info.Deviation)
	}
}

func TestExportJobTag_LongNameTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long_name.pdf")

	job := buildTagTestJob()
	job.Name = "a-very-long-job-name-that-does-not-fit-on-a-small-label-at-all"

	if err := ExportJobTag(path, job); err != nil {
		t.Fatalf("ExportJobTag returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
}
