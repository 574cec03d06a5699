package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/magpress/magpress/internal/config"
	"github.com/magpress/magpress/internal/models"
)

// NewPostgres opens the GORM connection and migrates the schema.
func NewPostgres(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	if err := gormDB.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return gormDB, nil
}

// Close releases the underlying connection pool.
func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from GORM: %w", err)
	}
	return sqlDB.Close()
}
