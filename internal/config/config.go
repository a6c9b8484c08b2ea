package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Retention RetentionConfig
	Fetch     FetchConfig
	Log       LogConfig

	// EnvFileLoaded reports whether Load read a .env file.
	EnvFileLoaded bool
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	// JobStore selects where job status lives: "memory" or "postgres".
	JobStore string
}

type LLMConfig struct {
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	MaxTokens       int
	MaxRetries      int
	Timeout         time.Duration
	// PromptsDir overrides the embedded prompt templates when set.
	PromptsDir string
}

type StorageConfig struct {
	JobsDir        string
	OutputDir      string
	MaxFileSize    int64
	DebugArtifacts bool
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type RetentionConfig struct {
	// TTL of zero keeps terminal jobs forever.
	TTL           time.Duration
	SweepInterval time.Duration
}

type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

// Load reads .env when present, then builds the Config from the environment.
func Load() *Config {
	loaded := godotenv.Load() == nil

	cfg := FromViper(newViper())
	cfg.EnvFileLoaded = loaded
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "careermatch")
	v.SetDefault("JOB_STORE", StoreMemory)

	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("ANTHROPIC_MODEL", "claude-3-7-sonnet-latest")
	v.SetDefault("LLM_MAX_TOKENS", 3000)
	v.SetDefault("LLM_MAX_RETRIES", 2)
	v.SetDefault("LLM_TIMEOUT", "120s")
	v.SetDefault("PROMPTS_DIR", "")

	v.SetDefault("JOBS_DIR", "./jobs")
	v.SetDefault("OUTPUT_DIR", "./outputs")
	v.SetDefault("MAX_FILE_SIZE", 10485760)
	v.SetDefault("DEBUG_ARTIFACTS", true)

	v.SetDefault("WORKER_CONCURRENCY", 3)
	v.SetDefault("WORKER_QUEUE_SIZE", 100)

	v.SetDefault("RETENTION_TTL", "0s")
	v.SetDefault("RETENTION_SWEEP_INTERVAL", "1h")

	v.SetDefault("FETCH_TIMEOUT", "20s")
	v.SetDefault("FETCH_USER_AGENT", "Mozilla/5.0")

	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)

	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			JobStore: strings.ToLower(strings.TrimSpace(v.GetString("JOB_STORE"))),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
			GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
			GeminiModel:     v.GetString("GEMINI_MODEL"),
			AnthropicAPIKey: v.GetString("ANTHROPIC_API_KEY"),
			AnthropicModel:  v.GetString("ANTHROPIC_MODEL"),
			MaxTokens:       positiveOr(v.GetInt("LLM_MAX_TOKENS"), 3000),
			MaxRetries:      nonNegativeOr(v.GetInt("LLM_MAX_RETRIES"), 2),
			Timeout:         v.GetDuration("LLM_TIMEOUT"),
			PromptsDir:      v.GetString("PROMPTS_DIR"),
		},
		Storage: StorageConfig{
			JobsDir:        v.GetString("JOBS_DIR"),
			OutputDir:      v.GetString("OUTPUT_DIR"),
			MaxFileSize:    v.GetInt64("MAX_FILE_SIZE"),
			DebugArtifacts: v.GetBool("DEBUG_ARTIFACTS"),
		},
		Worker: WorkerConfig{
			Concurrency: positiveOr(v.GetInt("WORKER_CONCURRENCY"), 3),
			QueueSize:   positiveOr(v.GetInt("WORKER_QUEUE_SIZE"), 100),
		},
		Retention: RetentionConfig{
			TTL:           v.GetDuration("RETENTION_TTL"),
			SweepInterval: v.GetDuration("RETENTION_SWEEP_INTERVAL"),
		},
		Fetch: FetchConfig{
			Timeout:   v.GetDuration("FETCH_TIMEOUT"),
			UserAgent: v.GetString("FETCH_USER_AGENT"),
		},
		Log: LogConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
		},
	}
}

// Validate reports settings that would make the server unusable.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=%s", ProviderGemini)
		}
	case ProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=%s", ProviderAnthropic)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	switch c.Database.JobStore {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unsupported JOB_STORE %q", c.Database.JobStore)
	}

	return nil
}

// Model returns the model name of the configured provider.
func (c *LLMConfig) Model() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicModel
	}
	return c.GeminiModel
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func positiveOr(value, defaultValue int) int {
	if value > 0 {
		return value
	}
	return defaultValue
}

func nonNegativeOr(value, defaultValue int) int {
	if value >= 0 {
		return value
	}
	return defaultValue
}
