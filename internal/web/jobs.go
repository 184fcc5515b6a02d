package web

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dataveil/dataveil/internal/anonymize"
)

// JobState is the lifecycle phase of a background anonymization job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// ErrJobNotFound is returned when a job ID is unknown or already pruned.
var ErrJobNotFound = errors.New("job not found")

// JobStatus is the externally visible state of one job.
type JobStatus struct {
	ID         string            `json:"id"`
	State      JobState          `json:"state"`
	InputFile  string            `json:"input_file"`
	ResultFile string            `json:"result_file"`
	Error      string            `json:"error,omitempty"`
	Report     *anonymize.Report `json:"report,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// jobRegistry tracks background jobs in memory. Finished jobs are kept for
// retention so clients can poll their outcome, then pruned.
type jobRegistry struct {
	mu        sync.Mutex
	jobs      map[string]*JobStatus
	retention time.Duration
}

func newJobRegistry(retention time.Duration) *jobRegistry {
	if retention <= 0 {
		retention = time.Hour
	}
	return &jobRegistry{
		jobs:      make(map[string]*JobStatus),
		retention: retention,
	}
}

// create registers a queued job and returns its ID.
func (r *jobRegistry) create(inputFile, resultFile string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()

	id := uuid.NewString()
	r.jobs[id] = &JobStatus{
		ID:         id,
		State:      JobQueued,
		InputFile:  inputFile,
		ResultFile: resultFile,
		CreatedAt:  time.Now().UTC(),
	}
	return id
}

// setRunning marks a job as started.
func (r *jobRegistry) setRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.State = JobRunning
	}
}

// finish records a job's terminal state. The report may be non-nil even on
// failure if the run produced partial outcomes before the error.
func (r *jobRegistry) finish(id string, report *anonymize.Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	j.FinishedAt = &now
	j.Report = report
	if err != nil {
		j.State = JobFailed
		j.Error = err.Error()
		return
	}
	j.State = JobCompleted
}

// get returns a copy of the job's status.
func (r *jobRegistry) get(id string) (JobStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return *j, nil
}

// pruneLocked drops finished jobs older than the retention window.
// Caller must hold the mutex.
func (r *jobRegistry) pruneLocked() {
	cutoff := time.Now().UTC().Add(-r.retention)
	for id, j := range r.jobs {
		if j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
		}
	}
}
