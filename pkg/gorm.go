package pkg

import (
	"fmt"

	"github.com/dejoyjm/shreds-platform/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Error
	if cfg.Environment != "production" {
		logLevel = logger.Info
	}

	// TranslateError turns driver unique-violations into gorm.ErrDuplicatedKey,
	// which the repositories rely on for conflict detection.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
