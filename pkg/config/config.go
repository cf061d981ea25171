package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Storage areas (inputs / outputs / output_share / archive)
	Storage StorageConfig

	// Pipeline defaults
	Pipeline PipelineConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// StorageConfig holds storage backend configuration
// Type이 "minio"면 MinIO 설정 필수, "local"이면 디렉터리만 사용
type StorageConfig struct {
	Type string // local | minio

	// Local directories per area
	InputDir       string
	OutputDir      string
	OutputShareDir string
	ArchiveDir     string

	// MinIO (object storage)
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	UseSSL     bool
	Bucket     string
	BasePrefix string
}

// PipelineConfig holds purchase run defaults
type PipelineConfig struct {
	TargetYield float64 // default IRR support target (% annual)
	InputPrefix string  // prefix inside the inputs area (e.g. tenant folder)
}

// SchedulerConfig holds the cron trigger configuration
type SchedulerConfig struct {
	Enabled  bool
	RunSpec  string // cron spec for the weekly purchase run
	TenantID int64  // 0 = no tenant scope
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Storage: StorageConfig{
			Type:           getEnv("STORAGE_TYPE", "local"),
			InputDir:       getEnv("INPUT_DIR", "./data/inputs"),
			OutputDir:      getEnv("OUTPUT_DIR", "./data/outputs"),
			OutputShareDir: getEnv("OUTPUT_SHARE_DIR", "./data/output_share"),
			ArchiveDir:     getEnv("ARCHIVE_DIR", "./data/archive"),
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			Region:         getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:         getEnvAsBool("MINIO_USE_SSL", false),
			Bucket:         getEnv("MINIO_BUCKET", "loancore"),
			BasePrefix:     getEnv("MINIO_BASE_PREFIX", ""),
		},

		Pipeline: PipelineConfig{
			TargetYield: getEnvAsFloat("TARGET_YIELD", 8.05),
			InputPrefix: getEnv("INPUT_PREFIX", ""),
		},

		Scheduler: SchedulerConfig{
			Enabled:  getEnvAsBool("ENABLE_SCHEDULER", false),
			RunSpec:  getEnv("SCHEDULER_RUN_SPEC", "0 0 6 * * 1"), // Monday 06:00 (with seconds)
			TenantID: int64(getEnvAsInt("SCHEDULER_TENANT_ID", 0)),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.Storage.Type {
	case "local":
		// directories are created lazily by the local backend
	case "minio":
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when STORAGE_TYPE=minio")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET is required when STORAGE_TYPE=minio")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE: %s", c.Storage.Type)
	}
	return nil
}

// loadEnvFile tries to load .env from several locations
func loadEnvFile() {
	candidates := []string{
		".env",
		"../.env",
		"../../.env",
	}

	for _, path := range candidates {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err == nil {
			_ = godotenv.Load(absPath)
			return
		}
	}
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat reads an environment variable as float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as bool
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as time.Duration
func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}
	return value
}
