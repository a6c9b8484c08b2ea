package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/careermatch/internal/models"
)

// memoryJobRepository keeps job status in process memory. It is created once
// at startup and shared by the HTTP handlers and the worker.
type memoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.JobRecord
	now  func() time.Time
}

func NewMemoryJobRepository() JobRepository {
	return &memoryJobRepository{
		jobs: make(map[uuid.UUID]*models.JobRecord),
		now:  time.Now,
	}
}

func (r *memoryJobRepository) Create() (*models.JobRecord, error) {
	now := r.now()
	job := &models.JobRecord{
		ID:        uuid.New(),
		Status:    models.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return nil, fmt.Errorf("failed to create job: duplicate id %s", job.ID)
	}
	r.jobs[job.ID] = job

	copied := *job
	return &copied, nil
}

// FindByID returns a copy; callers never share the stored record.
func (r *memoryJobRepository) FindByID(id uuid.UUID) (*models.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	if job.Error != nil {
		msg := *job.Error
		copied.Error = &msg
	}
	return &copied, nil
}

func (r *memoryJobRepository) MarkRunning(id uuid.UUID) error {
	return r.transition(id, models.StatusRunning, nil)
}

func (r *memoryJobRepository) MarkDone(id uuid.UUID, artifacts models.Artifacts) error {
	return r.transition(id, models.StatusDone, func(job *models.JobRecord) {
		job.JSONPath = artifacts.JSONPath
		job.HTMLPath = artifacts.HTMLPath
	})
}

func (r *memoryJobRepository) MarkError(id uuid.UUID, errorMsg string) error {
	return r.transition(id, models.StatusError, func(job *models.JobRecord) {
		job.Error = &errorMsg
	})
}

func (r *memoryJobRepository) transition(id uuid.UUID, next models.JobStatus, apply func(*models.JobRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if !job.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, next)
	}

	job.Status = next
	job.UpdatedAt = r.now()
	if apply != nil {
		apply(job)
	}
	return nil
}

func (r *memoryJobRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *memoryJobRepository) FindTerminalBefore(cutoff time.Time, limit int) ([]models.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var jobs []models.JobRecord
	for _, job := range r.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			jobs = append(jobs, *job)
		}
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].UpdatedAt.Before(jobs[j].UpdatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
