package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	AI          AIConfig
	ObjectStore ObjectStoreConfig
	CORS        CORSConfig
}

// DBConfig holds PostgreSQL connection settings
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret     string
	Issuer     string
	TTLMinutes int
}

// AIConfig holds settings for the LLM provider
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ObjectStoreConfig holds MinIO connection settings
type ObjectStoreConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	MaxFileSize int64
}

// CORSConfig holds cross-origin settings for the HTTP layer
type CORSConfig struct {
	AllowOrigins string
	AllowMethods string
	AllowHeaders string
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "civicpulse")
	config.DB.Password = getEnv("DB_PASSWORD", "civicpulse_password")
	config.DB.Name = getEnv("DB_NAME", "civicpulse_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")

	config.JWT.Secret = getEnv("JWT_SECRET", "development-secret-change-me")
	config.JWT.Issuer = getEnv("JWT_ISSUER", "civicpulse-api")
	config.JWT.TTLMinutes = int(getEnvAsInt64("JWT_TTL_MINUTES", 1440))

	config.AI.APIKey = getEnv("GROQ_API_KEY", "")
	config.AI.BaseURL = getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	config.AI.Model = getEnv("GROQ_MODEL", "llama-3.1-70b-versatile")

	config.ObjectStore.Endpoint = getEnv("S3_ENDPOINT", "localhost:9000")
	config.ObjectStore.AccessKey = getEnv("S3_ACCESS_KEY", "minioadmin")
	config.ObjectStore.SecretKey = getEnv("S3_SECRET_KEY", "minioadmin")
	config.ObjectStore.Bucket = getEnv("S3_BUCKET", "civicpulse-uploads")
	config.ObjectStore.UseSSL = getEnvAsBool("S3_USE_SSL", false)
	config.ObjectStore.MaxFileSize = getEnvAsInt64("MAX_FILE_SIZE", 10485760)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
