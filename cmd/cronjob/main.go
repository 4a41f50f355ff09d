package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"gearshare-backend/internal/config"
	"gearshare-backend/internal/events"
	"gearshare-backend/internal/jobs"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository/postgres"
	"gearshare-backend/internal/scheduler"
	"gearshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'release-eligible-escrows', 'all')")
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
	logger.Info("Starting GearShare Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize the job lease client. Sweeps run unguarded without Redis.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		logger.Info("Job leases enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("No Redis configured, sweeps run without a lease")
	}

	// Initialize settlement event publisher
	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		publisher = events.NewNoopPublisher()
	}

	// Initialize Services
	emailSvc := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)
	escrowSvc := service.NewEscrowService(
		store.PaymentRepository,
		store.PayoutRepository,
		store.BookingRepository,
		store.ClaimRepository,
		store.ResourceRepository,
		store.UserRepository,
		service.NewSandboxProcessor(),
		publisher,
		emailSvc,
		cfg.Policy.ReleaseBufferHours,
	)

	jobServices := &jobs.Services{
		Email:  emailSvc,
		Escrow: escrowSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg, redisClient)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "release-eligible-escrows":
		jobRunner.ReleaseEligibleEscrows()
	case "auto-accept-lapsed-returns":
		jobRunner.AutoAcceptLapsedReturns()
	case "mark-overdue-bookings":
		jobRunner.MarkOverdueBookings()
	case "all":
		jobRunner.RunAllSweeps()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - release-eligible-escrows\n")
		fmt.Printf("  - auto-accept-lapsed-returns\n")
		fmt.Printf("  - mark-overdue-bookings\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
