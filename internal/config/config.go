package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by the image store factory.
const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

// Config holds the application configuration
type Config struct {
	Port     int
	LogLevel string

	Database            DatabaseConfig
	Auth                AuthConfig
	Storage             StorageConfig
	Catalog             CatalogConfig
	NotificationService NotificationConfig
	Security            SecurityConfig
	Server              ServerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// AuthConfig controls credential signing and password hashing.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	Issuer            string
	BcryptCost        int
	MinPasswordLength int
}

// StorageConfig selects and configures the image store.
type StorageConfig struct {
	Type           string
	Root           string
	MaxUploadBytes int64
	PublicBaseURL  string

	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// CatalogConfig points at an optional hardware score file. An empty path
// uses the built-in tables.
type CatalogConfig struct {
	Path string
}

// NotificationConfig holds webhook notifier configuration. An empty URL
// disables notifications.
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// Enabled reports whether a webhook URL is configured.
func (n NotificationConfig) Enabled() bool {
	return n.URL != ""
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimitRPS    int
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
	AllowedOrigins  []string
	TrustedProxies  []string
}

// ServerConfig holds server performance configuration
type ServerConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// LoadConfig reads an optional .env file (CTS_ENV_FILE, default ".env"),
// then builds and validates the configuration from the environment.
func LoadConfig() (*Config, error) {
	envFile := getEnv("CTS_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	config := FromEnv()
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},

		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TokenTTL:          getEnvAsDuration("JWT_TTL", 24*time.Hour),
			Issuer:            getEnv("JWT_ISSUER", "cts"),
			BcryptCost:        getEnvAsInt("BCRYPT_COST", 10),
			MinPasswordLength: getEnvAsInt("MIN_PASSWORD_LENGTH", 8),
		},

		Storage: StorageConfig{
			Type:           getEnv("STORAGE_TYPE", StorageFilesystem),
			Root:           getEnv("STORAGE_ROOT", "public"),
			MaxUploadBytes: getEnvAsInt64("STORAGE_MAX_UPLOAD_BYTES", 5<<20),
			PublicBaseURL:  getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Prefix:       getEnv("S3_PREFIX", ""),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
			S3UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
		},

		Catalog: CatalogConfig{
			Path: getEnv("HARDWARE_CATALOG_PATH", ""),
		},

		NotificationService: NotificationConfig{
			URL:            getEnv("NOTIFIER_URL", ""),
			Timeout:        getEnvAsDuration("NOTIFIER_TIMEOUT", 10*time.Second),
			RetryAttempts:  getEnvAsInt("NOTIFIER_RETRY_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("NOTIFIER_RETRY_DELAY", time.Second),
			MaxPayloadSize: getEnvAsInt64("NOTIFIER_MAX_PAYLOAD_SIZE", 1024*1024),
		},

		Security: SecurityConfig{
			RateLimitRPS:    getEnvAsInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 200),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:      getEnvAsBool("ENABLE_CORS", true),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:  getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1MB
		},
	}
}

// validateConfig collects every problem so operators see them all at once.
func validateConfig(config *Config) error {
	var errs []string

	if config.Database.User == "" {
		errs = append(errs, "database user is required")
	}
	if config.Database.Password == "" {
		errs = append(errs, "database password is required")
	}
	if config.Database.Name == "" {
		errs = append(errs, "database name is required")
	}

	if len(config.Auth.JWTSecret) < 32 {
		errs = append(errs, "JWT secret must be at least 32 characters")
	}
	if config.Auth.TokenTTL <= 0 {
		errs = append(errs, "JWT TTL must be positive")
	}
	if config.Auth.BcryptCost < 4 || config.Auth.BcryptCost > 31 {
		errs = append(errs, "bcrypt cost must be between 4 and 31")
	}
	if config.Auth.MinPasswordLength < 8 {
		errs = append(errs, "minimum password length must be at least 8")
	}

	switch config.Storage.Type {
	case StorageFilesystem:
		if config.Storage.Root == "" {
			errs = append(errs, "filesystem storage requires STORAGE_ROOT")
		}
	case StorageS3:
		if config.Storage.S3Bucket == "" {
			errs = append(errs, "s3 storage requires S3_BUCKET")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown storage type: %s", config.Storage.Type))
	}
	if config.Storage.MaxUploadBytes <= 0 {
		errs = append(errs, "max upload size must be positive")
	}

	if config.Port < 1 || config.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if config.Database.Port < 1 || config.Database.Port > 65535 {
		errs = append(errs, "database port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
