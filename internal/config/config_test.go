package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 3000, cfg.LLM.MaxTokens)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, 100, cfg.Worker.QueueSize)
	assert.Equal(t, StoreMemory, cfg.Database.JobStore)
	assert.Equal(t, time.Duration(0), cfg.Retention.TTL)
	assert.Equal(t, time.Hour, cfg.Retention.SweepInterval)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "Mozilla/5.0", cfg.Fetch.UserAgent)
	assert.True(t, cfg.Storage.DebugArtifacts)
}

func TestFromViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " Anthropic ")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("WORKER_CONCURRENCY", "0")
	t.Setenv("RETENTION_TTL", "72h")
	t.Setenv("JOBS_DIR", "/tmp/jobs")

	cfg := FromViper(newViper())

	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-3-7-sonnet-latest", cfg.LLM.Model())
	assert.Equal(t, 3, cfg.Worker.Concurrency, "non-positive concurrency falls back to default")
	assert.Equal(t, 72*time.Hour, cfg.Retention.TTL)
	assert.Equal(t, "/tmp/jobs", cfg.Storage.JobsDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.False(t, cfg.EnvFileLoaded)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JOBS_DIR=/srv/dotenv-jobs\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("JOBS_DIR", "")
	require.NoError(t, os.Unsetenv("JOBS_DIR"))

	cfg := Load()

	assert.True(t, cfg.EnvFileLoaded)
	assert.Equal(t, "/srv/dotenv-jobs", cfg.Storage.JobsDir)
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{
			name:    "gemini without key",
			mutate:  func(v *viper.Viper) {},
			wantErr: "GEMINI_API_KEY",
		},
		{
			name: "unknown provider",
			mutate: func(v *viper.Viper) {
				v.Set("LLM_PROVIDER", "openai")
			},
			wantErr: "unsupported LLM_PROVIDER",
		},
		{
			name: "unknown store",
			mutate: func(v *viper.Viper) {
				v.Set("GEMINI_API_KEY", "k")
				v.Set("JOB_STORE", "redis")
			},
			wantErr: "unsupported JOB_STORE",
		},
		{
			name: "valid gemini",
			mutate: func(v *viper.Viper) {
				v.Set("GEMINI_API_KEY", "k")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			tt.mutate(v)
			err := FromViper(v).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := FromViper(newViper())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=careermatch sslmode=disable", cfg.GetDatabaseDSN())
}
