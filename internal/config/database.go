package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/careermatch/internal/models"
)

// InitDatabase opens the postgres connection used by the persistent job store
// and migrates the job table.
func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if err := db.AutoMigrate(&models.JobRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database migration completed")

	return db, nil
}
