package db

import (
	"context"
	"fmt"
	"time"
	"upscoverflow/internal/config"
	"upscoverflow/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the Postgres connection, applies pool settings and migrates the schema.
func Init(cfg config.DatabaseConfig, log *zap.Logger) error {
	conn, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Database connection established")

	if err := Migrate(conn); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database migration completed")

	DB = conn
	return nil
}

// Migrate creates or updates every table the service owns.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Question{},
		&models.QuestionTag{},
		&models.Answer{},
		&models.Comment{},
		&models.Like{},
		&models.Save{},
	)
}

// Close releases the underlying connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
