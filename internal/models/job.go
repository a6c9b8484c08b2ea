package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusUploaded JobStatus = "UPLOADED"
	StatusRunning  JobStatus = "RUNNING"
	StatusDone     JobStatus = "DONE"
	StatusError    JobStatus = "ERROR"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusUploaded:
		return next == StatusRunning || next == StatusError
	case StatusRunning:
		return next == StatusDone || next == StatusError
	default:
		return false
	}
}

// JobRecord is the status entry of one analysis. It doubles as the gorm model
// of the postgres-backed store.
type JobRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Status    JobStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Error     *string   `gorm:"type:text" json:"error"`
	JSONPath  string    `gorm:"type:text" json:"json_path,omitempty"`
	HTMLPath  string    `gorm:"type:text" json:"html_path,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (JobRecord) TableName() string {
	return "jobs"
}

// Artifacts are the output locations of a finished job.
type Artifacts struct {
	JSONPath string `json:"json_path"`
	HTMLPath string `json:"html_path"`
}

// Predecessors lists the statuses from which next can be reached.
func Predecessors(next JobStatus) []JobStatus {
	var out []JobStatus
	for _, s := range []JobStatus{StatusUploaded, StatusRunning, StatusDone, StatusError} {
		if s.CanTransition(next) {
			out = append(out, s)
		}
	}
	return out
}
