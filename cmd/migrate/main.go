package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"event-ticketing-console/internal/config"
	"event-ticketing-console/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		statusFlag = flag.Bool("status", false, "Show migration status")
		upFlag     = flag.Bool("up", false, "Run pending migrations")
	)
	flag.Parse()

	logger := logrus.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}

	ctx := context.Background()

	// Connect to database
	db, err := database.NewConnection(ctx, database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	switch {
	case *statusFlag:
		states, err := db.MigrationStatus(ctx)
		if err != nil {
			logger.WithError(err).Fatal("failed to get migration status")
		}
		for _, s := range states {
			mark := "pending"
			if s.Applied {
				mark = "applied"
			}
			fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, mark)
		}
	case *upFlag:
		if err := db.RunMigrations(ctx); err != nil {
			logger.WithError(err).Fatal("failed to run migrations")
		}
		fmt.Println("All migrations completed successfully!")
	default:
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/migrate -status   # Show migration status")
		fmt.Println("  go run ./cmd/migrate -up       # Run pending migrations")
		os.Exit(1)
	}
}
