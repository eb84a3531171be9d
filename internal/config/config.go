package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Ai         AIConfig
	Reminder   ReminderConfig
	Enrichment EnrichmentConfig
	Push       PushConfig
	Telemetry  TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ReminderLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	JwtSecret          string
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider      string // "gemini" or "ollama"
	LLMModel         string
	GeminiAPIKey     string
	GeminiBaseURL    string
	OllamaBaseURL    string
	SummaryTimeout   time.Duration
	SummaryMaxTokens int
}

type ReminderConfig struct {
	Timezone         string
	Workers          int
	QueueSize        int
	FireTimeout      time.Duration
	StrictInvariants bool
}

type EnrichmentConfig struct {
	Topic     string
	Workers   int
	QueueSize int
}

type PushConfig struct {
	Provider        string // "fcm" or "log"
	CredentialsFile string
	CredentialsJSON string
	ProjectID       string
	BatchSize       int
}

type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	MetricsEnabled bool
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ReminderLogPath:    getEnv("REMINDER_LOG_FILE_PATH", "logs/reminder.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:         getEnv("LLM_MODEL", "gemini-2.0-flash"),
			GeminiAPIKey:     getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			SummaryTimeout:   getEnvAsDuration("SUMMARY_TIMEOUT", 20*time.Second),
			SummaryMaxTokens: getEnvAsInt("SUMMARY_MAX_TOKENS", 100),
		},
		Reminder: ReminderConfig{
			Timezone:         getEnv("REMINDER_TIMEZONE", "UTC"),
			Workers:          getEnvAsInt("REMINDER_WORKERS", 4),
			QueueSize:        getEnvAsInt("REMINDER_QUEUE_SIZE", 256),
			FireTimeout:      getEnvAsDuration("REMINDER_FIRE_TIMEOUT", time.Minute),
			StrictInvariants: getEnvAsBool("REMINDER_STRICT_INVARIANTS", false),
		},
		Enrichment: EnrichmentConfig{
			Topic:     getEnv("SUMMARIZE_NOTE_TOPIC_NAME", "SUMMARIZE_NOTE"),
			Workers:   getEnvAsInt("ENRICHMENT_WORKERS", 4),
			QueueSize: getEnvAsInt("ENRICHMENT_QUEUE_SIZE", 128),
		},
		Push: PushConfig{
			Provider:        getEnv("PUSH_PROVIDER", "log"),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			CredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			BatchSize:       getEnvAsInt("PUSH_BATCH_SIZE", 500),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "sado-notes-be"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
