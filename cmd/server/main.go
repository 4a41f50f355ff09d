package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "gearshare-backend/internal/api/http"
	"gearshare-backend/internal/availability"
	"gearshare-backend/internal/claims"
	"gearshare-backend/internal/config"
	"gearshare-backend/internal/events"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/pricing"
	"gearshare-backend/internal/repository/postgres"
	"gearshare-backend/internal/security"
	"gearshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load .env if present; deployed environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting GearShare Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize domain components from policy configuration
	calculator := pricing.NewCalculator(
		int64(cfg.Policy.ServiceFeeBps),
		int64(cfg.Policy.Insurance.BasicBps),
		int64(cfg.Policy.Insurance.PremiumBps),
	)
	resolver := availability.NewResolver(cfg.Policy.MinRentalDays, cfg.Policy.MaxRentalDays)
	claimGuard := claims.NewGuard(cfg.Policy.ClaimWindowHours)

	// Initialize settlement event publisher
	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		logger.Info("Publishing settlement events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Info("No Kafka brokers configured, settlement events are dropped")
		publisher = events.NewNoopPublisher()
	}

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)

	// Initialize Services
	processor := service.NewSandboxProcessor()
	quoteSvc := service.NewQuoteService(store.ResourceRepository, store.BookingRepository, calculator, resolver)
	escrowSvc := service.NewEscrowService(
		store.PaymentRepository,
		store.PayoutRepository,
		store.BookingRepository,
		store.ClaimRepository,
		store.ResourceRepository,
		store.UserRepository,
		processor,
		publisher,
		emailSvc,
		cfg.Policy.ReleaseBufferHours,
	)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.ResourceRepository,
		store.UserRepository,
		store.PaymentRepository,
		store.InspectionRepository,
		resolver,
		claimGuard,
		quoteSvc,
		escrowSvc,
		emailSvc,
	)
	inspectionSvc := service.NewInspectionService(
		store.InspectionRepository,
		store.BookingRepository,
		store.ResourceRepository,
		store.UserRepository,
		claimGuard,
		emailSvc,
	)
	claimSvc := service.NewClaimService(
		store.ClaimRepository,
		store.BookingRepository,
		store.ResourceRepository,
		store.InspectionRepository,
		store.PaymentRepository,
		store.UserRepository,
		claimGuard,
		escrowSvc,
		emailSvc,
	)

	// Set up HTTP server
	router := httpapi.NewRouter(tokenManager, bookingSvc, quoteSvc, escrowSvc, inspectionSvc, claimSvc)
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
