package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CyberSource CyberSourceConfig
	Auth        AuthConfig
	Secrets     SecretsConfig
	RateLimit   RateLimitConfig
	Logger      LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// CyberSourceConfig holds the Secure Acceptance profile and SOAP settings.
// SecretKey and TransactionKey name secrets in the configured secret backend;
// the values themselves are resolved at startup.
type CyberSourceConfig struct {
	Environment        string // "production" or "sandbox"
	MerchantID         string
	TransactionKeyPath string
	ProfileID          string
	AccessKey          string
	SecretKeyPath      string
	PaymentPageURL     string
	ReceiptPageURL     string
	CancelPageURL      string
	LanguageCode       string
}

// AuthConfig holds bearer token authentication configuration
type AuthConfig struct {
	JWTSecretPath string
}

// SecretsConfig selects and configures the secret backend
type SecretsConfig struct {
	// Backend: "local", "vault" or "aws"
	Backend string

	VaultAddress   string
	VaultToken     string
	VaultMountPath string

	AWSRegion   string
	AWSEndpoint string
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "coursepay"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		CyberSource: CyberSourceConfig{
			Environment:        getEnv("CYBERSOURCE_ENVIRONMENT", "sandbox"),
			MerchantID:         getEnv("CYBERSOURCE_MERCHANT_ID", ""),
			TransactionKeyPath: getEnv("CYBERSOURCE_TRANSACTION_KEY_PATH", "CYBERSOURCE_TRANSACTION_KEY"),
			ProfileID:          getEnv("CYBERSOURCE_PROFILE_ID", ""),
			AccessKey:          getEnv("CYBERSOURCE_ACCESS_KEY", ""),
			SecretKeyPath:      getEnv("CYBERSOURCE_SECRET_KEY_PATH", "CYBERSOURCE_SECRET_KEY"),
			PaymentPageURL:     getEnv("CYBERSOURCE_PAYMENT_PAGE_URL", "https://testsecureacceptance.cybersource.com/pay"),
			ReceiptPageURL:     getEnv("CYBERSOURCE_RECEIPT_PAGE_URL", ""),
			CancelPageURL:      getEnv("CYBERSOURCE_CANCEL_PAGE_URL", ""),
			LanguageCode:       getEnv("CYBERSOURCE_LANGUAGE_CODE", "en"),
		},
		Auth: AuthConfig{
			JWTSecretPath: getEnv("AUTH_JWT_SECRET_PATH", "AUTH_JWT_SECRET"),
		},
		Secrets: SecretsConfig{
			Backend:        getEnv("SECRETS_BACKEND", "local"),
			VaultAddress:   getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
			AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
			AWSEndpoint:    getEnv("AWS_SECRETS_ENDPOINT", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.CyberSource.MerchantID == "" {
		return nil, fmt.Errorf("CYBERSOURCE_MERCHANT_ID is required")
	}
	if cfg.CyberSource.ProfileID == "" {
		return nil, fmt.Errorf("CYBERSOURCE_PROFILE_ID is required")
	}
	if cfg.CyberSource.AccessKey == "" {
		return nil, fmt.Errorf("CYBERSOURCE_ACCESS_KEY is required")
	}
	switch cfg.Secrets.Backend {
	case "local", "aws":
	case "vault":
		if cfg.Secrets.VaultAddress == "" {
			return nil, fmt.Errorf("VAULT_ADDR is required for the vault secrets backend")
		}
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
