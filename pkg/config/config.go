package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	IsProduction    bool
	EnableDBCheck   bool
	LockTimeout     time.Duration // Row lock acquisition budget before a retryable conflict
	AuditPageSize   int           // Default page size for audit trail queries
	ListingPageSize int           // Default page size for entry/account listings
	MigrationsPath  string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOCK_TIMEOUT", "3s")
	viper.SetDefault("AUDIT_PAGE_SIZE", 100)
	viper.SetDefault("LISTING_PAGE_SIZE", 20)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	lockTimeoutStr := viper.GetString("LOCK_TIMEOUT")
	lockTimeout, err := time.ParseDuration(lockTimeoutStr)
	if err != nil {
		log.Printf("Warning: invalid LOCK_TIMEOUT %q, defaulting to 3s\n", lockTimeoutStr)
		lockTimeout = 3 * time.Second
	}
	cfg.LockTimeout = lockTimeout

	cfg.AuditPageSize = viper.GetInt("AUDIT_PAGE_SIZE")
	if cfg.AuditPageSize <= 0 {
		cfg.AuditPageSize = 100
	}
	cfg.ListingPageSize = viper.GetInt("LISTING_PAGE_SIZE")
	if cfg.ListingPageSize <= 0 {
		cfg.ListingPageSize = 20
	}

	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	return cfg, nil
}
