package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Policy    PolicyConfig    `yaml:"policy"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the job-lease Redis settings. An empty address
// disables leasing; sweeps then run unguarded.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig contains settlement-event publishing settings. Empty brokers
// fall back to the no-op publisher.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SendGridConfig contains email service settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PolicyConfig contains the marketplace business rules. Everything here is
// injected into the pricing, availability, escrow and claim components so
// the rules live in configuration rather than code.
type PolicyConfig struct {
	ServiceFeeBps      int             `yaml:"service_fee_bps"`
	Insurance          InsuranceConfig `yaml:"insurance"`
	MinRentalDays      int             `yaml:"min_rental_days"`
	MaxRentalDays      int             `yaml:"max_rental_days"`
	ReleaseBufferHours int             `yaml:"release_buffer_hours"`
	ClaimWindowHours   int             `yaml:"claim_window_hours"`
}

// InsuranceConfig contains the per-tier insurance rates in basis points of
// the rental subtotal.
type InsuranceConfig struct {
	BasicBps   int `yaml:"basic_bps"`
	PremiumBps int `yaml:"premium_bps"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReleaseEligibleEscrows  string `yaml:"release_eligible_escrows"`
	AutoAcceptLapsedReturns string `yaml:"auto_accept_lapsed_returns"`
	MarkOverdueBookings     string `yaml:"mark_overdue_bookings"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = strings.Split(val, ",")
	}
	if val := os.Getenv("KAFKA_TOPIC"); val != "" {
		c.Kafka.Topic = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}
	if val := os.Getenv("SENDGRID_FROM_NAME"); val != "" {
		c.SendGrid.FromName = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Policy defaults
	if c.Policy.ServiceFeeBps == 0 {
		c.Policy.ServiceFeeBps = 1000 // 10% platform fee
	}
	if c.Policy.Insurance.BasicBps == 0 {
		c.Policy.Insurance.BasicBps = 500 // 5%
	}
	if c.Policy.Insurance.PremiumBps == 0 {
		c.Policy.Insurance.PremiumBps = 1000 // 10%
	}
	if c.Policy.MinRentalDays == 0 {
		c.Policy.MinRentalDays = 1
	}
	if c.Policy.MaxRentalDays == 0 {
		c.Policy.MaxRentalDays = 30
	}
	if c.Policy.ReleaseBufferHours == 0 {
		c.Policy.ReleaseBufferHours = 24
	}
	if c.Policy.ClaimWindowHours == 0 {
		c.Policy.ClaimWindowHours = 48
	}
	if c.Policy.ServiceFeeBps < 0 || c.Policy.ServiceFeeBps > 10000 {
		return fmt.Errorf("service fee must be between 0 and 10000 basis points: %d", c.Policy.ServiceFeeBps)
	}
	if c.Policy.MinRentalDays < 1 || c.Policy.MaxRentalDays < c.Policy.MinRentalDays {
		return fmt.Errorf("invalid rental duration bounds: min %d, max %d", c.Policy.MinRentalDays, c.Policy.MaxRentalDays)
	}

	// Kafka defaults
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "gearshare.payouts"
	}

	// Scheduler defaults. Auto-accept runs on the hour and release at half
	// past, so a return that lapses is releasable within the same hour.
	if c.Scheduler.AutoAcceptLapsedReturns == "" {
		c.Scheduler.AutoAcceptLapsedReturns = "0 0 * * * *"
	}
	if c.Scheduler.ReleaseEligibleEscrows == "" {
		c.Scheduler.ReleaseEligibleEscrows = "0 30 * * * *"
	}
	if c.Scheduler.MarkOverdueBookings == "" {
		c.Scheduler.MarkOverdueBookings = "0 0 2 * * *" // 2 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
