package db

import (
	"context"
	"fmt"
	"log/slog"

	"revix/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store wraps the optional postgres connection. A nil DB means no-db mode:
// repositories return errDBUnavailable.
type Store struct {
	DB *gorm.DB
}

func NewStore(cfg config.Config, logger *slog.Logger) (*Store, error) {
	if cfg.PostgresDSN == "" {
		if logger != nil {
			logger.Info("POSTGRES_DSN not set; starting in no-db mode")
		}
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: gdb}, nil
}

// Migrate creates the reference tables the service reads.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	return s.DB.WithContext(ctx).AutoMigrate(&IdentityBindingModel{})
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
