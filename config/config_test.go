package config

import (
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"APP_ENV", "LOG_LEVEL", "STORAGE_DRIVER", "STORAGE_BUCKET", "SIGNED_URL_TTL",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL",
	"S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	"BILL_PREFIX", "VERIFY_BASE_URL", "PDF_FONT_DIR",
	"BILL_DUE_DAYS", "SUPER_ADMIN_EMAIL", "RECONCILE_SCHEDULE", "TIMEZONE",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_BILLS_PER_MINUTE",
}

// clearConfigEnv blanks every config variable; viper treats empty values as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.App.Env)
	}
	if cfg.Storage.Driver != StorageDriverMinio {
		t.Errorf("Expected minio driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.SignedURLTTL != 15*time.Minute {
		t.Errorf("Expected 15m signed URL TTL, got %s", cfg.Storage.SignedURLTTL)
	}
	if cfg.Billing.Prefix != "LONI" {
		t.Errorf("Expected bill prefix LONI, got %s", cfg.Billing.Prefix)
	}
	if cfg.Billing.DueDays != 30 {
		t.Errorf("Expected 30 due days, got %d", cfg.Billing.DueDays)
	}
	if cfg.Jobs.Timezone != "Asia/Kolkata" {
		t.Errorf("Expected Asia/Kolkata, got %s", cfg.Jobs.Timezone)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.BillsPerMinute != 10 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("S3_REGION", "ap-south-2")
	t.Setenv("SIGNED_URL_TTL", "5m")
	t.Setenv("VERIFY_BASE_URL", "https://tax.example.in/verify/")
	t.Setenv("SUPER_ADMIN_EMAIL", "  Sarpanch@Example.IN ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Errorf("Expected env production, got %s", cfg.App.Env)
	}
	if cfg.Storage.Driver != StorageDriverS3 {
		t.Errorf("Expected s3 driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.S3.Region != "ap-south-2" {
		t.Errorf("Expected region ap-south-2, got %s", cfg.Storage.S3.Region)
	}
	if cfg.Storage.SignedURLTTL != 5*time.Minute {
		t.Errorf("Expected 5m TTL, got %s", cfg.Storage.SignedURLTTL)
	}
	if cfg.Billing.VerifyBaseURL != "https://tax.example.in/verify" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.Billing.VerifyBaseURL)
	}
	if cfg.Auth.SuperAdminEmail != "sarpanch@example.in" {
		t.Errorf("Expected normalized email, got %q", cfg.Auth.SuperAdminEmail)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{
				Driver:       StorageDriverMinio,
				Bucket:       "bills",
				SignedURLTTL: 15 * time.Minute,
				Minio:        MinioConfig{Endpoint: "localhost:9000"},
			},
			Billing:   BillingConfig{Prefix: "LONI", DueDays: 30},
			Jobs:      JobsConfig{ReconcileSchedule: "0 2 * * *", Timezone: "Asia/Kolkata"},
			RateLimit: RateLimitConfig{Enabled: true, BillsPerMinute: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "gcs" }, "STORAGE_DRIVER"},
		{"minio without endpoint", func(c *Config) { c.Storage.Minio.Endpoint = "" }, "MINIO_ENDPOINT"},
		{"s3 without region", func(c *Config) { c.Storage.Driver = StorageDriverS3 }, "S3_REGION"},
		{"s3 half credentials", func(c *Config) {
			c.Storage.Driver = StorageDriverS3
			c.Storage.S3 = S3Config{Region: "ap-south-1", AccessKeyID: "AKIA"}
		}, "S3_SECRET_ACCESS_KEY"},
		{"s3 default chain", func(c *Config) {
			c.Storage.Driver = StorageDriverS3
			c.Storage.S3 = S3Config{Region: "ap-south-1"}
		}, ""},
		{"empty bucket", func(c *Config) { c.Storage.Bucket = "" }, "STORAGE_BUCKET"},
		{"zero ttl", func(c *Config) { c.Storage.SignedURLTTL = 0 }, "SIGNED_URL_TTL"},
		{"empty prefix", func(c *Config) { c.Billing.Prefix = "" }, "BILL_PREFIX"},
		{"bad timezone", func(c *Config) { c.Jobs.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"rate limit zero", func(c *Config) { c.RateLimit.BillsPerMinute = 0 }, "RATE_LIMIT"},
		{"rate limit disabled", func(c *Config) { c.RateLimit = RateLimitConfig{} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
