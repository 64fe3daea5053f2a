package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Nats     NatsConfig
	Auth     AuthConfig
	Ai       AIConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	UsageLogFilePath   string
	CorsAllowedOrigins string
	InFlightDriver     string // "memory" or "redis"
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type RedisConfig struct {
	URL string
}

type NatsConfig struct {
	Enabled bool
	URL     string
	Durable string
}

type AuthConfig struct {
	JwtSecret     string
	InternalToken string // shared secret for the billing collaborator
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMModel      string // e.g. "gpt-4o-mini", "llama3"
	OpenAIKey     string
	OpenAIBaseURL string // optional, for OpenAI-compatible hosts
	OllamaBaseURL string
}

// inFlightMargin is how much longer a session lock lives than one completion.
const inFlightMargin = 30 * time.Second

type ChatConfig struct {
	HistoryWindow     int
	CompletionTimeout time.Duration
	InFlightTTL       time.Duration
	EventTopic        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	completionTimeout := getEnvAsDuration("CHAT_COMPLETION_TIMEOUT", 60*time.Second)

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			UsageLogFilePath:   getEnv("USAGE_LOG_FILE_PATH", "logs/usage.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			InFlightDriver:     getEnv("INFLIGHT_DRIVER", "memory"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORAGE_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Nats: NatsConfig{
			Enabled: getEnvAsBool("NATS_ENABLED", true),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Durable: getEnv("NATS_DURABLE", "mentor-ai-quota"),
		},
		Auth: AuthConfig{
			JwtSecret:     getEnv("JWT_SECRET", ""),
			InternalToken: getEnv("INTERNAL_API_TOKEN", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Chat: ChatConfig{
			HistoryWindow:     getEnvAsInt("CHAT_HISTORY_WINDOW", 6),
			CompletionTimeout: completionTimeout,
			InFlightTTL:       resolveInFlightTTL(completionTimeout, getEnvAsDuration("CHAT_INFLIGHT_TTL", 0)),
			EventTopic:        getEnv("CONVERSATION_EVENT_TOPIC", "CONVERSATION_EVENTS"),
		},
	}
}

// resolveInFlightTTL keeps a session lock alive past the longest exchange so a
// slow completion cannot lose it to a second sender. A crashed holder still
// frees it once the TTL runs out.
func resolveInFlightTTL(completionTimeout, configured time.Duration) time.Duration {
	minimum := completionTimeout + inFlightMargin
	if configured == 0 {
		return minimum
	}
	if configured < minimum {
		log.Printf("Warning: CHAT_INFLIGHT_TTL=%s is shorter than the completion timeout plus margin, using %s", configured, minimum)
		return minimum
	}
	return configured
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
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
