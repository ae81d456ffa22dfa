package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"event-ticketing-console/internal/config"
	"event-ticketing-console/internal/database"
	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/repositories"

	"github.com/sirupsen/logrus"
)

func main() {
	eventID := flag.Int("event", 1, "Event to seed ticket categories for")
	flag.Parse()

	logger := logrus.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	ctx := context.Background()

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

	if err := db.RunMigrations(ctx); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	repo := repositories.NewTicketRepository(db.DB)

	salesStart := time.Now().UTC().Truncate(time.Hour)
	salesEnd := salesStart.AddDate(0, 1, 0)
	doorsOpen := salesEnd.Add(24 * time.Hour)
	doorsClose := doorsOpen.Add(6 * time.Hour)
	five := 5

	seeds := []models.TicketPayload{
		{
			Kind: models.KindTicket, Name: "Regular", Description: "General admission",
			Price: 150000, Quantity: 500, MaxOrderQuantity: 4,
			SalesStart: salesStart, SalesEnd: salesEnd, TicketStart: &doorsOpen, TicketEnd: &doorsClose,
		},
		{
			Kind: models.KindTicket, Name: "VIP", Description: "Front row and lounge access",
			Price: 450000, Quantity: 50, MaxOrderQuantity: 2,
			SalesStart: salesStart, SalesEnd: salesEnd,
		},
		{
			Kind: models.KindGroupTicket, Name: "Group of 5", Description: "Five regular tickets",
			Price: 650000, Quantity: 40, MaxOrderQuantity: 1, BundleQuantity: &five,
			SalesStart: salesStart, SalesEnd: salesEnd,
		},
	}

	for _, seed := range seeds {
		seed.EventID = *eventID
		id, err := repo.Create(ctx, seed)
		if err != nil {
			logger.WithError(err).WithField("name", seed.Name).Fatal("failed to seed ticket category")
		}
		fmt.Printf("✅ %s %q created: %s\n", seed.Kind, seed.Name, id)
	}
}
