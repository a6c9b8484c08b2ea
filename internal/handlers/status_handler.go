package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/careermatch/internal/models"
	"alfredoptarigan/careermatch/internal/repositories"
)

type StatusHandler struct {
	jobRepo repositories.JobRepository
}

func NewStatusHandler(jobRepo repositories.JobRepository) *StatusHandler {
	return &StatusHandler{jobRepo: jobRepo}
}

func (h *StatusHandler) HandleGetStatus(c *fiber.Ctx) error {
	job, err := findJob(h.jobRepo, c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.NotFoundResponse())
		}
		return err
	}

	return c.JSON(models.NewStatusResponse(job))
}

// findJob treats malformed ids as unknown jobs.
func findJob(repo repositories.JobRepository, idParam string) (*models.JobRecord, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return nil, repositories.ErrJobNotFound
	}
	return repo.FindByID(id)
}
