package services

import (
	"context"
	"fmt"
	"time"

	"event-ticketing-console/internal/config"

	"github.com/sirupsen/logrus"
)

// StorageFactory creates storage services with proper fallback configuration
type StorageFactory struct {
	config *config.Config
	logger *logrus.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *logrus.Logger) *StorageFactory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StorageFactory{config: cfg, logger: logger}
}

// CreateStorageService creates a storage service with R2 primary and local fallback
func (f *StorageFactory) CreateStorageService(ctx context.Context) StorageService {
	fallback := NewFallbackStorageService(f.config.Storage.FallbackDir, f.config.Storage.FallbackURL, f.logger)

	r2Service, err := NewR2Service(ctx, f.config.R2, f.logger)
	if err != nil {
		f.logger.WithError(err).Warn("R2 unavailable, archiving imports to local storage only")
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r2Service.HealthCheck(ctx); err != nil {
		f.logger.WithError(err).Warn("R2 health check failed, archiving imports to local storage only")
		return fallback
	}

	f.logger.WithField("bucket", f.config.R2.BucketName).Info("R2 storage initialized")
	return NewStorageServiceWithFallback(r2Service, fallback, f.logger)
}

// SetupR2Bucket creates the import archive bucket
func (f *StorageFactory) SetupR2Bucket(ctx context.Context) error {
	if err := f.ValidateR2Configuration(); err != nil {
		return err
	}

	r2Service, err := NewR2Service(ctx, f.config.R2, f.logger)
	if err != nil {
		return fmt.Errorf("failed to create R2 service: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := r2Service.CreateBucket(ctx); err != nil {
		return fmt.Errorf("failed to create R2 bucket: %w", err)
	}

	return r2Service.HealthCheck(ctx)
}

// ValidateR2Configuration validates the R2 configuration
func (f *StorageFactory) ValidateR2Configuration() error {
	cfg := f.config.R2

	if cfg.AccountID == "" && cfg.Endpoint == "" {
		return fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT is required")
	}

	if cfg.AccessKeyID == "" {
		return fmt.Errorf("R2_ACCESS_KEY_ID is required")
	}

	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("R2_SECRET_ACCESS_KEY is required")
	}

	if cfg.BucketName == "" {
		return fmt.Errorf("R2_BUCKET_NAME is required")
	}

	return nil
}
