// Package main runs one CV vs job posting analysis from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/bootstrap"
	"alfredoptarigan/careermatch/internal/config"
	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/services"
)

var (
	cvFile    string
	jobFile   string
	jobURL    string
	jobTitle  string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "careermatch-analyze",
	Short: "Compare a CV with a job posting",
	Long:  "Runs the two-stage fit analysis synchronously and writes fit_report.json and report.html.",
	RunE:  runAnalyze,
}

func init() {
	rootCmd.Flags().StringVar(&cvFile, "cv", "", "Path to the CV (PDF or text)")
	rootCmd.Flags().StringVar(&jobFile, "job", "", "Path to the job posting text")
	rootCmd.Flags().StringVar(&jobURL, "job-url", "", "Public LinkedIn job URL (instead of --job)")
	rootCmd.Flags().StringVar(&jobTitle, "title", "", "Job title shown in the report")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (overrides OUTPUT_DIR)")
	_ = rootCmd.MarkFlagRequired("cv")
	rootCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	rootCmd.MarkFlagsOneRequired("job", "job-url")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using environment and default values")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cvBytes, err := os.ReadFile(cvFile)
	if err != nil {
		return fmt.Errorf("failed to read CV: %w", err)
	}
	cvText, err := services.NewDocumentParser().DecodeCV(filepath.Base(cvFile), cvBytes)
	if err != nil {
		return fmt.Errorf("failed to decode CV: %w", err)
	}

	jobText, title, err := loadJob(ctx, cfg, log)
	if err != nil {
		return err
	}
	if jobTitle != "" {
		title = jobTitle
	}

	storage := services.NewStorageService(cfg.Storage.JobsDir, cfg.Storage.OutputDir, cfg.Storage.DebugArtifacts, log)
	if err := storage.EnsureDirs(); err != nil {
		return err
	}

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, storage, log)
	if err != nil {
		return err
	}

	jobID := uuid.NewString()
	artifacts, err := pipeline.Process(ctx, jobID, cvText, jobText, title)
	if err != nil {
		_, _ = storage.SaveJobText(jobID, "error.txt", err.Error())
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "job:  %s\njson: %s\nhtml: %s\n", jobID, artifacts.JSONPath, artifacts.HTMLPath)
	return nil
}

func loadJob(ctx context.Context, cfg *config.Config, log *zap.Logger) (string, string, error) {
	if jobFile != "" {
		raw, err := os.ReadFile(jobFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read job posting: %w", err)
		}
		return services.SanitizeWhitespace(string(raw)), "", nil
	}

	page, err := services.NewLinkedInFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, log).Fetch(ctx, jobURL)
	if err != nil {
		return "", "", err
	}
	if services.LooksLikeAuthwall(page) {
		return "", "", errors.New("LinkedIn returned a login/authwall page")
	}

	title, err := services.ExtractJobTitle(page)
	if err != nil {
		return "", "", err
	}
	text, err := services.ExtractJobText(page)
	if err != nil {
		return "", "", err
	}
	return text, title, nil
}
