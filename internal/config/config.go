package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Pricing    PricingConfig
	Model      ModelConfig
	Audit      AuditConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// SearchConfig holds listing-query configuration
type SearchConfig struct {
	DefaultLimit  int
	MaxLimit      int
	HistoryLimit  int
	DefaultOffset int
}

// PricingConfig holds anomaly-scoring configuration. The defaults match the
// values the bundled model was calibrated with; change them only together
// with a retrained model.
type PricingConfig struct {
	RelativeSigma float64
	ZThreshold    float64
}

// ModelConfig holds regression model configuration. When ServeURL is set the
// service predicts through the remote serving endpoint instead of the local
// artifact file.
type ModelConfig struct {
	ArtifactPath string
	ServeURL     string
	Timeout      int  // seconds, remote serving only
	InverseLog   bool // remote serving only; the local artifact carries its own transform
}

// AuditConfig holds CSV audit trail configuration
type AuditConfig struct {
	Dir string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "motoprice"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Search: SearchConfig{
			DefaultLimit:  getEnvAsInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:      getEnvAsInt("SEARCH_MAX_LIMIT", 100),
			HistoryLimit:  getEnvAsInt("HISTORY_LIMIT", 50),
			DefaultOffset: getEnvAsInt("SEARCH_DEFAULT_OFFSET", 0),
		},
		Pricing: PricingConfig{
			RelativeSigma: getEnvAsFloat("ANOMALY_RELATIVE_SIGMA", 0.15),
			ZThreshold:    getEnvAsFloat("ANOMALY_Z_THRESHOLD", 2.5),
		},
		Model: ModelConfig{
			ArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "model/price_model.json"),
			ServeURL:     getEnv("MODEL_SERVE_URL", ""),
			Timeout:      getEnvAsInt("MODEL_TIMEOUT", 10),
			InverseLog:   getEnvAsBool("MODEL_INVERSE_LOG", true),
		},
		Audit: AuditConfig{
			Dir: getEnv("AUDIT_DIR", "data/audit"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean value for %s, using default %v", key, defaultValue)
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
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
