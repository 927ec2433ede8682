package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rodrigopasa/launchajato/internal/config"
)

// Connect opens the postgres database described by cfg
func Connect(cfg *config.Config, logger zerolog.Logger) (*gorm.DB, error) {
	if cfg.InstanceConnName != "" {
		logger.Info().Str("instance", cfg.InstanceConnName).Msg("connecting to Cloud SQL via socket")
	} else {
		logger.Info().Str("host", cfg.DBHost).Int("port", cfg.DBPort).Msg("connecting to PostgreSQL")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info().Msg("✅ database connected")
	return db, nil
}
