package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/models"
	"alfredoptarigan/careermatch/internal/repositories"
)

var ErrQueueFull = errors.New("job queue is full")

const shutdownErrorMessage = "The server stopped before the analysis could start. Please submit again."

// Task is one analysis waiting for a worker.
type Task struct {
	JobID    uuid.UUID
	CVText   string
	JobText  string
	JobTitle string
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(task Task) error
}

type worker struct {
	jobRepo     repositories.JobRepository
	pipeline    Pipeline
	storage     StorageService
	jobQueue    chan Task
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	mu          sync.RWMutex
	stopped     bool
	log         *zap.Logger
}

func NewWorker(
	jobRepo repositories.JobRepository,
	pipeline Pipeline,
	storage StorageService,
	concurrency int,
	queueSize int,
	log *zap.Logger,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &worker{
		jobRepo:     jobRepo,
		pipeline:    pipeline,
		storage:     storage,
		jobQueue:    make(chan Task, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		log:         logger.OrNop(log),
	}
}

// Start implements Worker. Jobs run on a context detached from ctx: once
// started, a job always reaches a terminal status.
func (w *worker) Start(ctx context.Context) {
	jobCtx := context.WithoutCancel(ctx)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(jobCtx, i+1)
	}
	w.log.Info("worker started", zap.Int("concurrency", w.concurrency), zap.Int("queue_size", cap(w.jobQueue)))
}

// Stop implements Worker. In-flight jobs finish; queued jobs that never
// started are marked as failed.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")

		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()

		close(w.stopChan)
		w.wg.Wait()
		w.drain()

		w.log.Info("worker stopped")
	})
}

// Enqueue implements Worker.
func (w *worker) Enqueue(task Task) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrQueueClosed
	}

	select {
	case w.jobQueue <- task:
		w.log.Debug("job enqueued", zap.String(logger.FieldJobID, task.JobID.String()))
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case task := <-w.jobQueue:
			select {
			case <-w.stopChan:
				w.drop(task)
				return
			default:
			}
			w.runTask(ctx, workerID, task)
		}
	}
}

func (w *worker) runTask(ctx context.Context, workerID int, task Task) {
	jobID := task.JobID.String()
	log := logger.ForJob(w.log, jobID).With(zap.Int("worker", workerID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", zap.Any("panic", r))
			w.fail(log, task.JobID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := w.jobRepo.MarkRunning(task.JobID); err != nil {
		log.Error("failed to mark job running", zap.Error(err))
		return
	}
	log.Info("processing job")

	artifacts, err := w.pipeline.Process(ctx, jobID, task.CVText, task.JobText, task.JobTitle)
	if err != nil {
		log.Error("job failed", zap.Error(err))
		w.fail(log, task.JobID, err.Error())
		return
	}

	if err := w.jobRepo.MarkDone(task.JobID, *artifacts); err != nil {
		log.Error("failed to mark job done", zap.Error(err))
		return
	}
	log.Info("job completed", zap.String("html_path", artifacts.HTMLPath))
}

func (w *worker) fail(log *zap.Logger, id uuid.UUID, msg string) {
	if _, err := w.storage.SaveJobText(id.String(), "error.txt", msg); err != nil {
		log.Warn("failed to save error.txt", zap.Error(err))
	}
	if err := w.jobRepo.MarkError(id, msg); err != nil {
		log.Error("failed to mark job error", zap.Error(err))
	}
}

func (w *worker) drain() {
	for {
		select {
		case task := <-w.jobQueue:
			w.drop(task)
		default:
			return
		}
	}
}

func (w *worker) drop(task Task) {
	log := logger.ForJob(w.log, task.JobID.String())
	log.Warn("dropping queued job on shutdown")
	if err := w.jobRepo.MarkError(task.JobID, shutdownErrorMessage); err != nil {
		log.Error("failed to mark dropped job", zap.Error(err))
	}
}

// Pipeline turns the inputs of one job into rendered artifacts.
type Pipeline interface {
	Process(ctx context.Context, jobID, cvText, jobText, jobTitle string) (*models.Artifacts, error)
}
