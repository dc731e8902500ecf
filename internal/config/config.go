package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

type Config struct {
	BotToken     string
	GroqAPIKey   string
	GeminiAPIKey string
	LLMProvider  string // "groq" or "gemini"

	DatabasePath string
	HTTPPort     string
	Language     string // locale pinned for STT and TTS
	TempDir      string

	LogLevel slog.Level
	LogFile  string
}

// Load reads configuration from a .env file (if present) and the environment.
// Missing external credentials are a startup error, not a runtime surprise.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		BotToken:     getEnv("BOT_TOKEN", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		LLMProvider:  getEnv("LLM_PROVIDER", ProviderGroq),
		DatabasePath: getEnv("DATABASE_PATH", "ai_careerist.db"),
		HTTPPort:     getEnv("HTTP_PORT", "8000"),
		Language:     getEnv("LANGUAGE", "ru"),
		TempDir:      getEnv("TEMP_DIR", "temp_audio"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
		LogFile:      getEnv("LOG_FILE", ""),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}

	switch cfg.LLMProvider {
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable is required for provider %q", ProviderGroq)
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for provider %q", ProviderGemini)
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLMProvider)
	}

	// Groq also backs Whisper transcription, regardless of the chat provider.
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable is required for transcription")
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
