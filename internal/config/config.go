package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	V0        V0Config
	RateLimit RateLimitConfig
	Isolation IsolationConfig
	Polling   PollingConfig
	Debug     DebugConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	SessionLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

// DatabaseConfig holds the Postgres DSN for generation history.
// An empty connection string keeps history in memory.
type DatabaseConfig struct {
	Connection string
}

type V0Config struct {
	APIKey             string
	BaseURL            string
	TimeoutMs          int
	RetryAttempts      int
	RetryDelayMs       int
	DefaultProjectName string
	NewChatName        string
}

type RateLimitConfig struct {
	Max           int
	WindowSeconds int
	Prefix        string
}

type IsolationConfig struct {
	// Only effective when a Redis client is available.
	Enabled bool
}

type PollingConfig struct {
	FrequencyMs int
}

type DebugConfig struct {
	Enabled bool
}

// TracingConfig drives the OTLP exporter. Tracing is off unless Enabled.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			SessionLogFilePath: getEnv("SESSION_LOG_FILE_PATH", "status_stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		V0: V0Config{
			APIKey:             strings.TrimSpace(getEnv("V0_API_KEY", "")),
			BaseURL:            getEnv("V0_BASE_URL", "https://api.v0.dev/v1"),
			TimeoutMs:          getEnvAsInt("V0_TIMEOUT_MS", 30000),
			RetryAttempts:      getEnvAsInt("V0_RETRY_ATTEMPTS", 3),
			RetryDelayMs:       getEnvAsInt("V0_RETRY_DELAY_MS", 1000),
			DefaultProjectName: getEnv("DEFAULT_PROJECT_NAME", "Default Project"),
			NewChatName:        getEnv("V0_NEW_CHAT_NAME", "Main"),
		},
		RateLimit: RateLimitConfig{
			Max:           getEnvAsInt("RATE_LIMIT_MAX", 3),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 43200),
			Prefix:        getEnv("RATE_LIMIT_PREFIX", "v0_generation_limit"),
		},
		Isolation: IsolationConfig{
			Enabled: getEnvAsBool("MULTI_TENANT_ISOLATION", true),
		},
		Polling: PollingConfig{
			FrequencyMs: getEnvAsInt("POLLING_FREQUENCY_MS", 3000),
		},
		Debug: DebugConfig{
			Enabled: getEnvAsBool("DEBUG_ENABLED", false),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}
