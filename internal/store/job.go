package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sparkwire/edmplan/internal/model"
)

// DefaultJobsDir returns the default directory jobs are persisted under.
func DefaultJobsDir() string {
	return filepath.Join(DefaultConfigDir(), "jobs")
}

// JobPath returns the default path a job with the given ID is saved at.
func JobPath(id string) string {
	return filepath.Join(DefaultJobsDir(), id+".json")
}

// SaveJob persists a Job (its config and last plan result) to the given
// path as JSON, creating any missing parent directories.
func SaveJob(path string, job model.Job) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJob reads a Job from the given path.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, err
	}
	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}
