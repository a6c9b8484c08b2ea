package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/bootstrap"
	"alfredoptarigan/careermatch/internal/config"
	"alfredoptarigan/careermatch/internal/handlers"
	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/repositories"
	"alfredoptarigan/careermatch/internal/services"
	"alfredoptarigan/careermatch/internal/web"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using environment and default values")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Info("config loaded",
		zap.String("env", cfg.Server.Env),
		zap.String(logger.FieldProvider, cfg.LLM.Provider),
		zap.String(logger.FieldModel, cfg.LLM.Model()),
		zap.String("job_store", cfg.Database.JobStore))

	jobRepo, err := newJobRepository(cfg, log)
	if err != nil {
		return err
	}

	storage := services.NewStorageService(cfg.Storage.JobsDir, cfg.Storage.OutputDir, cfg.Storage.DebugArtifacts, log)
	if err := storage.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create storage directories: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, storage, log)
	if err != nil {
		return err
	}

	worker := services.NewWorker(jobRepo, pipeline, storage, cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)
	worker.Start(ctx)

	janitor := services.NewJanitor(jobRepo, storage, cfg.Retention.TTL, cfg.Retention.SweepInterval, log)
	go janitor.Run(ctx)

	pages, err := web.NewPages()
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      "CareerMatch",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.Register(app, handlers.Handlers{
		Upload: handlers.NewUploadHandler(
			jobRepo,
			storage,
			services.NewDocumentParser(),
			services.NewLinkedInFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, log),
			worker,
			cfg.Storage.MaxFileSize,
			log,
		),
		Status: handlers.NewStatusHandler(jobRepo),
		Report: handlers.NewReportHandler(jobRepo),
		Pages:  handlers.NewPageHandler(jobRepo, pages),
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	listenErr := app.Listen(addr)
	worker.Stop()
	return listenErr
}

func newJobRepository(cfg *config.Config, log *zap.Logger) (repositories.JobRepository, error) {
	if cfg.Database.JobStore != config.StorePostgres {
		return repositories.NewMemoryJobRepository(), nil
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repositories.NewJobRepository(db), nil
}

func customErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}
