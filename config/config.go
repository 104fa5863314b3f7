package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverMinio = "minio"
	StorageDriverS3    = "s3"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Billing   BillingConfig
	Auth      AuthConfig
	Jobs      JobsConfig
	RateLimit RateLimitConfig
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// StorageConfig selects and configures the object store used for bill PDFs.
type StorageConfig struct {
	Driver       string
	Bucket       string
	SignedURLTTL time.Duration
	Minio        MinioConfig
	S3           S3Config
}

// MinioConfig holds connection settings for a MinIO (or any S3-compatible) endpoint.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Config holds AWS S3 settings. When no static keys are set, credentials
// come from the default AWS chain.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// BillingConfig holds bill rendering settings.
type BillingConfig struct {
	Prefix        string
	VerifyBaseURL string
	FontDir       string
	DueDays       int
}

// AuthConfig holds authorization settings.
type AuthConfig struct {
	SuperAdminEmail string
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	ReconcileSchedule string
	Timezone          string
}

// RateLimitConfig limits bill generation requests per client.
type RateLimitConfig struct {
	Enabled        bool
	BillsPerMinute int
}

// Load reads configuration from a .env file (if any) and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageDriverMinio)
	v.SetDefault("STORAGE_BUCKET", "panchayat-bills")
	v.SetDefault("SIGNED_URL_TTL", "15m")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("S3_REGION", "ap-south-1")
	v.SetDefault("BILL_PREFIX", "LONI")
	v.SetDefault("VERIFY_BASE_URL", "http://localhost:8090/verify")
	v.SetDefault("PDF_FONT_DIR", "./fonts")
	v.SetDefault("BILL_DUE_DAYS", 30)
	v.SetDefault("SUPER_ADMIN_EMAIL", "")
	v.SetDefault("RECONCILE_SCHEDULE", "0 2 * * *")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_BILLS_PER_MINUTE", 10)

	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			Bucket:       v.GetString("STORAGE_BUCKET"),
			SignedURLTTL: v.GetDuration("SIGNED_URL_TTL"),
			Minio: MinioConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
			S3: S3Config{
				Region:          v.GetString("S3_REGION"),
				Endpoint:        v.GetString("S3_ENDPOINT"),
				AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			},
		},
		Billing: BillingConfig{
			Prefix:        v.GetString("BILL_PREFIX"),
			VerifyBaseURL: strings.TrimRight(v.GetString("VERIFY_BASE_URL"), "/"),
			FontDir:       v.GetString("PDF_FONT_DIR"),
			DueDays:       v.GetInt("BILL_DUE_DAYS"),
		},
		Auth: AuthConfig{
			SuperAdminEmail: strings.ToLower(strings.TrimSpace(v.GetString("SUPER_ADMIN_EMAIL"))),
		},
		Jobs: JobsConfig{
			ReconcileSchedule: v.GetString("RECONCILE_SCHEDULE"),
			Timezone:          v.GetString("TIMEZONE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        v.GetBool("RATE_LIMIT_ENABLED"),
			BillsPerMinute: v.GetInt("RATE_LIMIT_BILLS_PER_MINUTE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverMinio:
		if c.Storage.Minio.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio driver")
		}
	case StorageDriverS3:
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3_REGION is required for the s3 driver")
		}
		if (c.Storage.S3.AccessKeyID == "") != (c.Storage.S3.SecretAccessKey == "") {
			return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverMinio, StorageDriverS3, c.Storage.Driver)
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	if c.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be positive")
	}
	if c.Billing.Prefix == "" {
		return fmt.Errorf("BILL_PREFIX is required")
	}
	if c.Billing.DueDays < 0 {
		return fmt.Errorf("BILL_DUE_DAYS must be non-negative")
	}
	if c.Jobs.ReconcileSchedule == "" {
		return fmt.Errorf("RECONCILE_SCHEDULE is required")
	}
	if _, err := time.LoadLocation(c.Jobs.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Jobs.Timezone, err)
	}
	if c.RateLimit.Enabled && c.RateLimit.BillsPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_BILLS_PER_MINUTE must be at least 1")
	}

	return nil
}
