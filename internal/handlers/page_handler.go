package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/careermatch/internal/repositories"
	"alfredoptarigan/careermatch/internal/web"
)

const defaultErrorMessage = "An unexpected error occurred during the analysis."

type PageHandler struct {
	jobRepo    repositories.JobRepository
	pages      *web.Pages
	pollMillis int
}

func NewPageHandler(jobRepo repositories.JobRepository, pages *web.Pages) *PageHandler {
	return &PageHandler{jobRepo: jobRepo, pages: pages, pollMillis: 1500}
}

func (h *PageHandler) HandleUploadPage(c *fiber.Ctx) error {
	return h.render(c, web.PageUpload, nil)
}

func (h *PageHandler) HandleWaitPage(c *fiber.Ctx) error {
	return h.render(c, web.PageWait, web.WaitData{JobID: c.Params("id"), PollMillis: h.pollMillis})
}

func (h *PageHandler) HandleErrorPage(c *fiber.Ctx) error {
	id := c.Params("id")
	msg := defaultErrorMessage
	if job, err := findJob(h.jobRepo, id); err == nil && job.Error != nil && *job.Error != "" {
		msg = *job.Error
	}
	return h.render(c, web.PageError, web.ErrorData{JobID: id, Error: msg})
}

func (h *PageHandler) render(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := h.pages.Render(&buf, name, data); err != nil {
		return err
	}
	c.Type("html")
	return c.Send(buf.Bytes())
}
