package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
)

const llmDebugDirName = "llm"

// StorageService owns the per-job directories: inputs and debug files under
// the jobs root, rendered artifacts under the outputs root.
type StorageService interface {
	EnsureDirs() error
	SaveJobText(jobID, filename, content string) (string, error)
	WriteOutput(jobID, filename string, content []byte) (string, error)
	DebugSink(jobID string) DebugSink
	RemoveJob(jobID string) error
}

type storageService struct {
	jobsDir   string
	outputDir string
	debug     bool
	log       *zap.Logger
}

func NewStorageService(jobsDir, outputDir string, debug bool, log *zap.Logger) StorageService {
	return &storageService{
		jobsDir:   jobsDir,
		outputDir: outputDir,
		debug:     debug,
		log:       logger.OrNop(log),
	}
}

func (s *storageService) EnsureDirs() error {
	for _, dir := range []string{s.jobsDir, s.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (s *storageService) SaveJobText(jobID, filename, content string) (string, error) {
	dir, err := s.jobPath(s.jobsDir, jobID)
	if err != nil {
		return "", err
	}
	return writeFile(filepath.Join(dir, filename), []byte(content))
}

func (s *storageService) WriteOutput(jobID, filename string, content []byte) (string, error) {
	dir, err := s.jobPath(s.outputDir, jobID)
	if err != nil {
		return "", err
	}
	return writeFile(filepath.Join(dir, filename), content)
}

func (s *storageService) DebugSink(jobID string) DebugSink {
	if !s.debug {
		return NopDebugSink{}
	}
	dir, err := s.jobPath(s.jobsDir, jobID)
	if err != nil {
		s.log.Warn("debug artifacts disabled for job", zap.String("job_id", jobID), zap.Error(err))
		return NopDebugSink{}
	}
	return NewFileDebugSink(filepath.Join(dir, llmDebugDirName), s.log)
}

// RemoveJob deletes both directories of a job. Missing directories are not an error.
func (s *storageService) RemoveJob(jobID string) error {
	for _, root := range []string{s.jobsDir, s.outputDir} {
		dir, err := s.jobPath(root, jobID)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to delete %s: %w", dir, err)
		}
	}
	return nil
}

func (s *storageService) jobPath(root, jobID string) (string, error) {
	if jobID == "" || jobID == "." || jobID == ".." || strings.ContainsAny(jobID, `/\`) {
		return "", fmt.Errorf("invalid job id %q", jobID)
	}
	return filepath.Join(root, jobID), nil
}

func writeFile(path string, content []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
