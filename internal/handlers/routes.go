package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Upload *UploadHandler
	Status *StatusHandler
	Report *ReportHandler
	Pages  *PageHandler
}

func Register(app *fiber.App, h Handlers) {
	app.Get("/", h.Pages.HandleUploadPage)
	app.Post("/upload", h.Upload.HandleUpload)
	app.Get("/wait/:id", h.Pages.HandleWaitPage)
	app.Get("/error/:id", h.Pages.HandleErrorPage)
	app.Get("/report/:id", h.Report.HandleReport)
	app.Get("/download/:id/json", h.Report.HandleDownloadJSON)
	app.Get("/download/:id/html", h.Report.HandleDownloadHTML)
	app.Get("/api/status/:id", h.Status.HandleGetStatus)

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
}
