package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/repositories"
)

const sweepBatchSize = 100

// Janitor deletes finished jobs and their files once they are older than
// the retention TTL. A zero TTL keeps everything.
type Janitor struct {
	jobRepo  repositories.JobRepository
	storage  StorageService
	ttl      time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewJanitor(jobRepo repositories.JobRepository, storage StorageService, ttl, interval time.Duration, log *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		jobRepo:  jobRepo,
		storage:  storage,
		ttl:      ttl,
		interval: interval,
		log:      logger.OrNop(log),
	}
}

func (j *Janitor) Enabled() bool {
	return j.ttl > 0
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	if !j.Enabled() {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Info("retention janitor started", zap.Duration("ttl", j.ttl), zap.Duration("interval", j.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := j.Sweep(now); err != nil {
				j.log.Error("retention sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep removes every terminal job last updated before now minus the TTL
// and returns how many were removed.
func (j *Janitor) Sweep(now time.Time) (int, error) {
	if !j.Enabled() {
		return 0, nil
	}

	cutoff := now.Add(-j.ttl)
	removed := 0
	for {
		jobs, err := j.jobRepo.FindTerminalBefore(cutoff, sweepBatchSize)
		if err != nil {
			return removed, err
		}
		if len(jobs) == 0 {
			break
		}

		progressed := false
		for _, job := range jobs {
			log := logger.ForJob(j.log, job.ID.String())
			if err := j.storage.RemoveJob(job.ID.String()); err != nil {
				log.Warn("failed to remove job files", zap.Error(err))
				continue
			}
			if err := j.jobRepo.Delete(job.ID); err != nil {
				log.Warn("failed to delete job", zap.Error(err))
				continue
			}
			removed++
			progressed = true
		}
		if !progressed || len(jobs) < sweepBatchSize {
			break
		}
	}

	if removed > 0 {
		j.log.Info("expired jobs removed", zap.Int("count", removed))
	}
	return removed, nil
}
