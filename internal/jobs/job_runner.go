package jobs

import (
	"context"
	"database/sql"
	"time"

	"gearshare-backend/internal/config"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository/postgres"
	"gearshare-backend/internal/service"

	"github.com/redis/go-redis/v9"
)

// JobRunner coordinates all scheduled sweeps
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	services *Services
	config   *config.Config
	redis    *redis.Client
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email  service.EmailService
	Escrow service.EscrowService
}

// NewJobRunner creates a new job runner with all dependencies. redisClient
// may be nil; sweeps then run without a lease.
func NewJobRunner(db *sql.DB, store *postgres.Store, services *Services, cfg *config.Config, redisClient *redis.Client) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		services: services,
		config:   cfg,
		redis:    redisClient,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	log := logger.WithJob(jobName)
	log.Info("Starting job")
	jobFunc()
	log.Info("Job completed")
}

// withLease takes a short Redis SET NX lease so that only one cronjob
// instance runs the sweep. Without Redis, or when Redis is unreachable, the
// sweep runs unguarded.
func (jr *JobRunner) withLease(jobName string, ttl time.Duration, jobFunc func()) {
	if jr.redis == nil {
		jobFunc()
		return
	}

	ctx := context.Background()
	key := "gearshare:jobs:lease:" + jobName
	acquired, err := jr.redis.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		logger.Warn("Lease check failed, running unguarded", "job", jobName, "error", err)
		jobFunc()
		return
	}
	if !acquired {
		logger.Info("Another instance holds the lease, skipping", "job", jobName)
		return
	}

	jobFunc()
}

// RunAllSweeps runs every sweep once (for manual execution)
func (jr *JobRunner) RunAllSweeps() {
	jr.AutoAcceptLapsedReturns()
	jr.ReleaseEligibleEscrows()
	jr.MarkOverdueBookings()
}
