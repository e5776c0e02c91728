package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverRedis  = "redis"
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	ServerPort  string
	GinMode     string
	LogLevel    string
	LogFormat   string
	StoreDriver string
	StoreDir    string
	RedisURL    string

	// GeneratorURL is the base URL of the remote paper generation service.
	GeneratorURL     string
	GeneratorTimeout time.Duration

	JWTSecret string
	JWTExpiry time.Duration
	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	DefaultExamType     string
	DefaultAcademicYear string
	DefaultDuration     string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "auto"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFile)),
		StoreDir:            getEnv("STORE_DIR", "./data"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		GeneratorURL:        strings.TrimRight(getEnv("GENERATOR_URL", "http://localhost:8000/api/v1"), "/"),
		GeneratorTimeout:    time.Duration(getEnvInt("GENERATOR_TIMEOUT_SECONDS", 120)) * time.Second,
		JWTSecret:           getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:           time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		DefaultExamType:     getEnv("DEFAULT_EXAM_TYPE", "Mid-Term Examination"),
		DefaultAcademicYear: getEnv("DEFAULT_ACADEMIC_YEAR", "2024-25"),
		DefaultDuration:     getEnv("DEFAULT_DURATION", "2 Hours"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
