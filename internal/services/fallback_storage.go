package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FallbackStorageService stores files on local disk when R2 is unavailable
type FallbackStorageService struct {
	basePath string
	baseURL  string
	logger   *logrus.Logger
}

// NewFallbackStorageService creates a new fallback storage service
func NewFallbackStorageService(basePath, baseURL string, logger *logrus.Logger) *FallbackStorageService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.WithError(err).WithField("path", basePath).Warn("failed to create storage directory")
	}

	return &FallbackStorageService{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

func (f *FallbackStorageService) path(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	fullPath := filepath.Join(f.basePath, filepath.FromSlash(key))

	rel, err := filepath.Rel(f.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes storage directory", key)
	}

	return fullPath, nil
}

// Upload saves a file to local storage
func (f *FallbackStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	fullPath, err := f.path(key)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	if written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written)
	}

	f.logger.WithFields(logrus.Fields{"key": key, "path": fullPath}).Debug("fallback storage saved file")

	return f.GetURL(key), nil
}

// Delete removes a file from local storage
func (f *FallbackStorageService) Delete(ctx context.Context, key string) error {
	fullPath, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	f.cleanupEmptyDirs(filepath.Dir(fullPath))

	return nil
}

// GetURL returns the URL for a file
func (f *FallbackStorageService) GetURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("%s/%s", f.baseURL, key)
}

// Exists checks if a file exists in local storage
func (f *FallbackStorageService) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := f.path(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}

	return true, nil
}

// cleanupEmptyDirs removes empty directories up to the base path
func (f *FallbackStorageService) cleanupEmptyDirs(dir string) {
	if dir == filepath.Clean(f.basePath) || dir == "." || dir == "/" {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}

	if err := os.Remove(dir); err == nil {
		f.cleanupEmptyDirs(filepath.Dir(dir))
	}
}

// StorageServiceWithFallback wraps a primary storage service with a fallback
type StorageServiceWithFallback struct {
	primary  StorageService
	fallback StorageService
	logger   *logrus.Logger
}

// NewStorageServiceWithFallback creates a storage service with fallback capability
func NewStorageServiceWithFallback(primary, fallback StorageService, logger *logrus.Logger) *StorageServiceWithFallback {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StorageServiceWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Upload tries primary storage first, falls back to fallback storage on error
func (s *StorageServiceWithFallback) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	url, err := s.primary.Upload(ctx, key, reader, contentType, size)
	if err == nil {
		return url, nil
	}

	s.logger.WithError(err).WithField("key", key).Warn("primary storage failed, using fallback")

	seeker, ok := reader.(io.Seeker)
	if !ok {
		return "", fmt.Errorf("primary storage failed and cannot reset reader for fallback: %w", err)
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset reader for fallback: %w", err)
	}

	return s.fallback.Upload(ctx, key, reader, contentType, size)
}

// Delete tries to delete from both storages
func (s *StorageServiceWithFallback) Delete(ctx context.Context, key string) error {
	primaryErr := s.primary.Delete(ctx, key)
	fallbackErr := s.fallback.Delete(ctx, key)

	if primaryErr != nil && fallbackErr != nil {
		return fmt.Errorf("both storages failed - primary: %v, fallback: %v", primaryErr, fallbackErr)
	}

	return nil
}

// GetURL returns URL from primary storage
func (s *StorageServiceWithFallback) GetURL(key string) string {
	return s.primary.GetURL(key)
}

// Exists checks both storages
func (s *StorageServiceWithFallback) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := s.primary.Exists(ctx, key)
	if err == nil && exists {
		return true, nil
	}

	return s.fallback.Exists(ctx, key)
}
