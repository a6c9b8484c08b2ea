package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/repositories"
	"alfredoptarigan/careermatch/internal/services"
)

const (
	msgEmptyCV      = "The CV file is empty or unreadable."
	msgCVTooLarge   = "The CV file is too large."
	msgMissingURL   = "The LinkedIn job posting URL is missing."
	msgFetchFailed  = "Could not retrieve the LinkedIn job page (fetch)."
	msgAuthwall     = "LinkedIn returned a login/authwall page."
	msgParseFailed  = "Could not read the LinkedIn job page."
	msgStoreFailed  = "Could not store the submitted inputs."
	msgQueueFull    = "The server is busy. Please try again in a few minutes."
	msgShuttingDown = "The server is shutting down. Please try again shortly."
)

type UploadHandler struct {
	jobRepo     repositories.JobRepository
	storage     services.StorageService
	parser      services.DocumentParser
	fetcher     services.JobPostingFetcher
	worker      services.Worker
	maxFileSize int64
	log         *zap.Logger
}

func NewUploadHandler(
	jobRepo repositories.JobRepository,
	storage services.StorageService,
	parser services.DocumentParser,
	fetcher services.JobPostingFetcher,
	worker services.Worker,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		jobRepo:     jobRepo,
		storage:     storage,
		parser:      parser,
		fetcher:     fetcher,
		worker:      worker,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// HandleUpload creates a job and always redirects to its wait page. Input
// problems move the job straight to ERROR with a message for the user.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	job, err := h.jobRepo.Create()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create job")
	}
	jobID := job.ID.String()
	log := logger.ForJob(h.log, jobID)

	task, msg := h.prepare(c, jobID, log)
	if msg != "" {
		h.fail(log, job.ID, msg)
		return redirectToWait(c, jobID)
	}

	task.JobID = job.ID
	if err := h.worker.Enqueue(task); err != nil {
		log.Warn("failed to enqueue job", zap.Error(err))
		if errors.Is(err, services.ErrQueueClosed) {
			h.fail(log, job.ID, msgShuttingDown)
		} else {
			h.fail(log, job.ID, msgQueueFull)
		}
	}
	return redirectToWait(c, jobID)
}

// prepare turns the form into a task, or returns the message the job fails with.
func (h *UploadHandler) prepare(c *fiber.Ctx, jobID string, log *zap.Logger) (services.Task, string) {
	var task services.Task

	fileHeader, err := c.FormFile("cv")
	if err != nil || fileHeader.Size == 0 {
		return task, msgEmptyCV
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return task, msgCVTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return task, msgEmptyCV
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil || len(data) == 0 {
		return task, msgEmptyCV
	}

	cvText, err := h.parser.DecodeCV(fileHeader.Filename, data)
	if err != nil {
		log.Warn("failed to decode CV", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return task, msgEmptyCV
	}
	if cvText == "" {
		return task, msgEmptyCV
	}
	if _, err := h.storage.SaveJobText(jobID, "cv.txt", cvText); err != nil {
		log.Error("failed to save cv.txt", zap.Error(err))
		return task, msgStoreFailed
	}

	jobURL := strings.TrimSpace(c.FormValue("job_url"))
	if jobURL == "" {
		return task, msgMissingURL
	}

	page, err := h.fetcher.Fetch(c.UserContext(), jobURL)
	if err != nil {
		log.Warn("failed to fetch job posting", zap.String("url", jobURL), zap.Error(err))
		h.saveDebug(log, jobID, "fetch_error.txt", err.Error())
		return task, msgFetchFailed
	}
	h.saveDebug(log, jobID, "linkedin_job_raw.html", page)

	if services.LooksLikeAuthwall(page) {
		return task, msgAuthwall
	}

	title, err := services.ExtractJobTitle(page)
	if err != nil {
		return task, msgParseFailed
	}
	jobText, err := services.ExtractJobText(page)
	if err != nil {
		return task, msgParseFailed
	}
	h.saveDebug(log, jobID, "job.txt", jobText)

	task.CVText = cvText
	task.JobText = jobText
	task.JobTitle = title
	return task, ""
}

func (h *UploadHandler) saveDebug(log *zap.Logger, jobID, filename, content string) {
	if _, err := h.storage.SaveJobText(jobID, filename, content); err != nil {
		log.Warn("failed to save job input", zap.String("file", filename), zap.Error(err))
	}
}

func (h *UploadHandler) fail(log *zap.Logger, id uuid.UUID, msg string) {
	log.Info("upload rejected", zap.String("reason", msg))
	if err := h.jobRepo.MarkError(id, msg); err != nil {
		log.Error("failed to mark job error", zap.Error(err))
	}
}

func redirectToWait(c *fiber.Ctx, jobID string) error {
	return c.Redirect("/wait/"+jobID, fiber.StatusSeeOther)
}
