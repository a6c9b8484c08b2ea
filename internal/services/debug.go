package services

import (
	"path/filepath"

	"go.uber.org/zap"
)

// DebugSink receives intermediate pipeline artifacts. Writes are best effort
// and never fail the caller.
type DebugSink interface {
	Write(name, content string)
}

type NopDebugSink struct{}

func (NopDebugSink) Write(string, string) {}

type fileDebugSink struct {
	dir string
	log *zap.Logger
}

func NewFileDebugSink(dir string, log *zap.Logger) DebugSink {
	return &fileDebugSink{dir: dir, log: log}
}

func (s *fileDebugSink) Write(name, content string) {
	if _, err := writeFile(filepath.Join(s.dir, name), []byte(content)); err != nil {
		s.log.Warn("failed to write debug artifact", zap.String("file", name), zap.Error(err))
	}
}
