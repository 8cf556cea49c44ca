package domain

import "time"

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transitions may leave this status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// TaskResult is one (source, keyword) outcome. Added counts items that
// actually made it past the insertion gate, not items fetched.
type TaskResult struct {
	Source  string `json:"source"`
	Keyword string `json:"keyword"`
	Added   int    `json:"added_count"`
}

type TaskError struct {
	Source  string `json:"source"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// Job tracks one "run these keywords against all known sources" request.
// Results/Errors append in completion order, not submission order.
type Job struct {
	ID              string       `json:"id"`
	Status          JobStatus    `json:"status"`
	Keywords        []string     `json:"keywords"`
	Concurrency     int          `json:"concurrency"`
	DelaySeconds    int          `json:"delay_seconds"`
	Progress        Progress     `json:"progress"`
	Results         []TaskResult `json:"results"`
	Errors          []TaskError  `json:"errors"`
	CancelRequested bool         `json:"cancel_requested"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Clone returns a deep copy so callers never see torn reads of a live job.
func (j *Job) Clone() Job {
	out := *j
	out.Keywords = append([]string(nil), j.Keywords...)
	out.Results = append([]TaskResult(nil), j.Results...)
	out.Errors = append([]TaskError(nil), j.Errors...)
	return out
}

// SavedQuery is a persisted default keyword set used by the scheduler trigger.
type SavedQuery struct {
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	UpdatedAt time.Time `json:"updated_at"`
}
