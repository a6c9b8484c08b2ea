package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/careermatch/internal/models"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// JobRepository tracks job status. Every job starts UPLOADED and moves
// forward only: UPLOADED -> RUNNING|ERROR, RUNNING -> DONE|ERROR.
type JobRepository interface {
	Create() (*models.JobRecord, error)
	FindByID(id uuid.UUID) (*models.JobRecord, error)
	MarkRunning(id uuid.UUID) error
	MarkDone(id uuid.UUID, artifacts models.Artifacts) error
	MarkError(id uuid.UUID, errorMsg string) error
	Delete(id uuid.UUID) error
	FindTerminalBefore(cutoff time.Time, limit int) ([]models.JobRecord, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create() (*models.JobRecord, error) {
	now := time.Now()
	job := &models.JobRecord{
		ID:        uuid.New(),
		Status:    models.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobRecord, error) {
	var job models.JobRecord
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) MarkRunning(id uuid.UUID) error {
	return r.transition(id, models.StatusRunning, map[string]interface{}{})
}

func (r *jobRepository) MarkDone(id uuid.UUID, artifacts models.Artifacts) error {
	return r.transition(id, models.StatusDone, map[string]interface{}{
		"json_path": artifacts.JSONPath,
		"html_path": artifacts.HTMLPath,
	})
}

func (r *jobRepository) MarkError(id uuid.UUID, errorMsg string) error {
	return r.transition(id, models.StatusError, map[string]interface{}{
		"error": errorMsg,
	})
}

// transition applies updates only while the row is in a status that may
// move to next, so concurrent writers cannot leave a terminal state.
func (r *jobRepository) transition(id uuid.UUID, next models.JobStatus, updates map[string]interface{}) error {
	updates["status"] = next
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.JobRecord{}).
		Where("id = ? AND status IN ?", id, models.Predecessors(next)).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update job status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		current, err := r.FindByID(id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
	}

	return nil
}

func (r *jobRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.JobRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) FindTerminalBefore(cutoff time.Time, limit int) ([]models.JobRecord, error) {
	var jobs []models.JobRecord
	query := r.db.
		Where("status IN ? AND updated_at < ?", []models.JobStatus{models.StatusDone, models.StatusError}, cutoff).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&jobs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find expired jobs: %w", err)
	}

	return jobs, nil
}
