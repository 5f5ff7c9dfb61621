package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Bot Settings
	BotToken string
	BotName  string
	Version  string

	// Database
	DatabaseURL string
	UseDatabase bool

	// Telegram bridge
	TelegramToken  string
	TelegramChatID int64
	EnableTelegram bool

	// Spotify
	SpotifyClientID     string
	SpotifyClientSecret string

	// Logging
	LogLevel  string
	LogFormat string

	// Playback
	MaxQueueSize  int
	DefaultVolume int           // percent, 0-150
	IdleTimeout   time.Duration // terminate sessions idle past this
	SweepInterval time.Duration

	// Performance
	CacheSize            int
	CacheDurationMinutes int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}

	// Database configuration
	databaseUser := os.Getenv("POSTGRES_USER")
	databasePassword := os.Getenv("POSTGRES_PASSWORD")
	databaseName := os.Getenv("POSTGRES_DB")
	databaseHost := os.Getenv("POSTGRES_HOST")
	databasePort := os.Getenv("POSTGRES_PORT")

	useDatabase := getEnvBool("USE_DATABASE", false)
	var databaseURL string
	if useDatabase {
		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			databaseUser, databasePassword, databaseHost, databasePort, databaseName)
	}

	telegramToken := os.Getenv("TELEGRAM_TOKEN")
	telegramChatID := getEnvInt64("TELEGRAM_CHAT_ID", 0)

	cfg := &Config{
		// Bot Settings
		BotToken: botToken,
		BotName:  getEnvOrDefault("BOT_NAME", "Discord Music Bot"),
		Version:  getEnvOrDefault("VERSION", "1.0.0"),

		// Database
		DatabaseURL: databaseURL,
		UseDatabase: useDatabase,

		// Telegram
		TelegramToken:  telegramToken,
		TelegramChatID: telegramChatID,
		EnableTelegram: getEnvBool("ENABLE_TELEGRAM", false) && telegramToken != "",

		// Spotify
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),

		// Logging
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),

		// Playback
		MaxQueueSize:  getEnvInt("MAX_QUEUE_SIZE", 100),
		DefaultVolume: getEnvInt("DEFAULT_VOLUME", 50),
		IdleTimeout:   getEnvDuration("IDLE_TIMEOUT", 5*time.Minute),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 30*time.Second),

		// Performance
		CacheSize:            getEnvInt("CACHE_SIZE", 500),
		CacheDurationMinutes: getEnvInt("CACHE_DURATION_MINUTES", 5),
	}

	if cfg.DefaultVolume < 0 || cfg.DefaultVolume > 150 {
		return nil, fmt.Errorf("DEFAULT_VOLUME must be between 0 and 150")
	}
	if cfg.MaxQueueSize < 1 {
		return nil, fmt.Errorf("MAX_QUEUE_SIZE must be greater than 0")
	}

	return cfg, nil
}

// GetSafeToken returns a masked version of the token for logging
func (c *Config) GetSafeToken() string {
	if len(c.BotToken) < 15 {
		return "***"
	}
	return c.BotToken[:10] + "..." + c.BotToken[len(c.BotToken)-4:]
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "NO":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
