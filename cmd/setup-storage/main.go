package main

import (
	"context"
	"fmt"
	"os"

	"event-ticketing-console/internal/config"
	"event-ticketing-console/internal/services"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	factory := services.NewStorageFactory(cfg, logger)

	if err := factory.ValidateR2Configuration(); err != nil {
		logger.WithError(err).Fatal("R2 configuration validation failed")
	}

	fmt.Println("R2 configuration is valid")
	fmt.Printf("  Bucket Name:   %s\n", cfg.R2.BucketName)
	fmt.Printf("  Public URL:    %s\n", cfg.R2.PublicURL)
	fmt.Printf("  Fallback Path: %s\n", cfg.Storage.FallbackDir)

	if len(os.Args) > 1 && os.Args[1] == "setup" {
		fmt.Println("\nSetting up import archive bucket...")
		if err := factory.SetupR2Bucket(context.Background()); err != nil {
			logger.WithError(err).Fatal("failed to set up R2 bucket")
		}
		fmt.Println("Bucket setup completed successfully!")
	} else {
		fmt.Println("\nTo set up the bucket, run: go run ./cmd/setup-storage setup")
	}
}
