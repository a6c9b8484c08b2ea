package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/careermatch/internal/models"
	"alfredoptarigan/careermatch/internal/repositories"
)

type ReportHandler struct {
	jobRepo repositories.JobRepository
}

func NewReportHandler(jobRepo repositories.JobRepository) *ReportHandler {
	return &ReportHandler{jobRepo: jobRepo}
}

// HandleReport serves the rendered report. Unknown jobs go back to the
// upload page and unfinished ones to the wait page.
func (h *ReportHandler) HandleReport(c *fiber.Ctx) error {
	id := c.Params("id")
	job, err := findJob(h.jobRepo, id)
	if errors.Is(err, repositories.ErrJobNotFound) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}
	if job.Status != models.StatusDone {
		return redirectToWait(c, id)
	}

	c.Type("html")
	return c.SendFile(job.HTMLPath)
}

func (h *ReportHandler) HandleDownloadJSON(c *fiber.Ctx) error {
	return h.download(c, func(job *models.JobRecord) string { return job.JSONPath }, "fit_report.json")
}

func (h *ReportHandler) HandleDownloadHTML(c *fiber.Ctx) error {
	return h.download(c, func(job *models.JobRecord) string { return job.HTMLPath }, "report.html")
}

func (h *ReportHandler) download(c *fiber.Ctx, path func(*models.JobRecord) string, filename string) error {
	id := c.Params("id")
	job, err := findJob(h.jobRepo, id)
	if err != nil && !errors.Is(err, repositories.ErrJobNotFound) {
		return err
	}
	if err != nil || job.Status != models.StatusDone {
		return redirectToWait(c, id)
	}

	return c.Download(path(job), filename)
}
