package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Audio    AudioConfig
	Assembly AssemblyAIConfig
	Groq     GroqConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Cleanup  CleanupConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AudioConfig holds configuration for the standup audio store
type AudioConfig struct {
	ContentDir   string
	PublicPath   string
	MaxSizeBytes int64
}

// AssemblyAIConfig holds AssemblyAI transcription configuration
type AssemblyAIConfig struct {
	APIKey string
}

// GroqConfig holds Groq LLM configuration
type GroqConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries uint64
}

// StorageConfig holds object storage configuration (transcript exports)
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
}

// CleanupConfig holds scheduled maintenance configuration
type CleanupConfig struct {
	Enabled         bool
	Interval        time.Duration
	RetentionDays   int
	ExpiryThreshold int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "standup_assistant"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Audio: AudioConfig{
			ContentDir:   getEnv("AUDIO_CONTENT_DIR", "standups/audio"),
			PublicPath:   getEnv("AUDIO_PUBLIC_PATH", "/standups/audio"),
			MaxSizeBytes: getEnvAsInt64("AUDIO_MAX_SIZE_BYTES", 50*1024*1024),
		},
		Assembly: AssemblyAIConfig{
			APIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		},
		Groq: GroqConfig{
			APIKey:     getEnv("GROQ_API_KEY", ""),
			BaseURL:    getEnv("GROQ_API_URL", "https://api.groq.com"),
			Model:      getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
			MaxRetries: uint64(getEnvAsInt("GROQ_MAX_RETRIES", 2)),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "standup-assistant"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
		},
		Cleanup: CleanupConfig{
			Enabled:         getEnvAsBool("CLEANUP_ENABLED", true),
			Interval:        getEnvAsDuration("CLEANUP_INTERVAL", "1h"),
			RetentionDays:   getEnvAsInt("TRANSCRIPT_RETENTION_DAYS", 30),
			ExpiryThreshold: getEnvAsInt("TRANSCRIPT_EXPIRY_WARNING_DAYS", 7),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Audio.MaxSizeBytes <= 0 {
		return fmt.Errorf("AUDIO_MAX_SIZE_BYTES must be positive")
	}
	if c.Cleanup.RetentionDays <= 0 {
		return fmt.Errorf("TRANSCRIPT_RETENTION_DAYS must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
