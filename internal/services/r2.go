package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	appconfig "event-ticketing-console/internal/config"
)

// R2Service implements StorageService for Cloudflare R2
type R2Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	config   appconfig.R2Config
	logger   *logrus.Logger
}

// NewR2Service creates a new R2 storage service
func NewR2Service(ctx context.Context, cfg appconfig.R2Config, logger *logrus.Logger) (*R2Service, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("R2 credentials not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(r2Endpoint(cfg))
		o.UsePathStyle = true
	})

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// Recipient files are small, one part sent sequentially is enough
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = manager.MinUploadPartSize
		u.Concurrency = 1
	})

	return &R2Service{
		client:   client,
		uploader: uploader,
		config:   cfg,
		logger:   logger,
	}, nil
}

func objectKey(key string) string {
	return strings.TrimPrefix(key, "/")
}

func r2Endpoint(cfg appconfig.R2Config) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
}

// Upload stores an archived file in the bucket and returns its URL. Objects
// are served as downloads and never cached.
func (r *R2Service) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	key = objectKey(key)

	result, err := r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(r.config.BucketName),
		Key:                aws.String(key),
		Body:               reader,
		ContentType:        aws.String(contentType),
		ContentLength:      aws.Int64(size),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
		CacheControl:       aws.String("private, no-store"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s in R2: %w", key, err)
	}

	r.logger.WithFields(logrus.Fields{"key": key, "location": result.Location, "size": size}).Debug("archived to R2")

	return r.GetURL(key), nil
}

// Delete removes an archived file
func (r *R2Service) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from R2: %w", key, err)
	}

	return nil
}

// GetURL returns the public URL of key, or an r2:// reference when the
// bucket has no public domain
func (r *R2Service) GetURL(key string) string {
	key = objectKey(key)

	if r.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.config.PublicURL, "/"), key)
	}

	return fmt.Sprintf("r2://%s/%s", r.config.BucketName, key)
}

func (r *R2Service) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s in R2: %w", key, err)
	}

	return true, nil
}

// CreateBucket creates the archive bucket. An existing bucket is not an error.
func (r *R2Service) CreateBucket(ctx context.Context) error {
	_, err := r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.config.BucketName),
	})
	if err != nil {
		var bucketExists *types.BucketAlreadyExists
		var bucketOwnedByYou *types.BucketAlreadyOwnedByYou
		if errors.As(err, &bucketExists) || errors.As(err, &bucketOwnedByYou) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", r.config.BucketName, err)
	}

	return nil
}

// HealthCheck verifies that the archive bucket is reachable
func (r *R2Service) HealthCheck(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.config.BucketName)})
	if err != nil {
		return fmt.Errorf("R2 bucket %s unreachable: %w", r.config.BucketName, err)
	}

	return nil
}
