package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-ticketing-console/internal/config"
	"event-ticketing-console/internal/database"
	"event-ticketing-console/internal/handlers"
	"event-ticketing-console/internal/middleware"
	"event-ticketing-console/internal/repositories"
	"event-ticketing-console/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
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
	logger.Info("database connection established")

	if err := db.RunMigrations(ctx); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	// Session store holding each organizer's working set
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 1 day
		HttpOnly: true,
		Secure:   !cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	}
	workingSet := middleware.NewWorkingSetStore(sessionStore)

	// Initialize repositories
	ticketRepo := repositories.NewTicketRepository(db.DB)
	invitationRepo := repositories.NewInvitationRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	// Initialize storage service (R2 or fallback)
	storageService := services.NewStorageFactory(cfg, logger).CreateStorageService(ctx)

	// Initialize services
	auditService := services.NewAuditService(auditRepo)
	ticketConfigService := services.NewTicketConfigService(ticketRepo, logger)
	invitationService := services.NewInvitationService(invitationRepo, ticketRepo, storageService, cfg.Console.DefaultCountryCode, logger)

	// Initialize handlers
	validate := validator.New()
	ticketConfigHandler := handlers.NewTicketConfigHandler(ticketConfigService, workingSet, auditService, validate, logger)
	invitationHandler := handlers.NewInvitationHandler(invitationService, auditService, validate, logger)
	auditHandler := handlers.NewAuditHandler(auditService, logger)
	dateTimeHandler := handlers.NewDateTimeHandler(validate, cfg.Console.DisplayUTCOffset)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize router
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.ErrorHandlingMiddleware(logger))
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/events/{eventId}", func(r chi.Router) {
			// Ticket categories
			r.Get("/tickets", ticketConfigHandler.ListTickets)
			r.Put("/tickets", ticketConfigHandler.SyncTickets)

			// Group ticket bundles
			r.Get("/group-tickets", ticketConfigHandler.ListGroupTickets)
			r.Put("/group-tickets", ticketConfigHandler.SyncGroupTickets)
			r.Post("/group-tickets/{ticketId}/edits", ticketConfigHandler.CommitGroupTicketEdit)

			// Invitations
			r.Get("/invitations", invitationHandler.ListInvitations)
			r.Post("/invitations", invitationHandler.SendInvitations)
			r.Post("/invitations/import", invitationHandler.ImportRecipients)

			// Audit trail
			r.Get("/audit", auditHandler.ListAuditLog)
		})

		r.Get("/datetime/decompose", dateTimeHandler.Decompose)
		r.Post("/datetime/compose", dateTimeHandler.Compose)
	})

	srv := newServer(net.JoinHostPort(cfg.Server.Host, cfg.Server.Port), r)

	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "env": cfg.Server.Env}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

// newServer builds the HTTP server. Request contexts are not derived from
// the shutdown signal so in-flight syncs finish while Shutdown drains them.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.Background() },
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
