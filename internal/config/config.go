package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"equity-sentry/internal/domain"
)

type Config struct {
	TelegramBotToken string
	TelegramChatID   string
	DatabaseURL      string
	RedisURL         string
	FeedBaseURL      string
	APIKey           string

	Timeframe        string
	ScanIntervalSecs int
	ScanWorkers      int
	PortfolioValue   float64

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		FeedBaseURL:      strings.TrimSpace(os.Getenv("FEED_BASE_URL")),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.FeedBaseURL == "" {
		log.Println("Warning: FEED_BASE_URL not set")
	}

	cfg.Timeframe = strings.TrimSpace(os.Getenv("TIMEFRAME"))
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1d"
	}
	if !domain.IsSupportedTimeframe(cfg.Timeframe) {
		log.Printf("Warning: unsupported TIMEFRAME=%q, defaulting to 1d", cfg.Timeframe)
		cfg.Timeframe = "1d"
	}

	cfg.ScanIntervalSecs = 300
	if v := os.Getenv("SCAN_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScanIntervalSecs = n
		}
	}

	cfg.ScanWorkers = 4
	if v := strings.TrimSpace(os.Getenv("SCAN_WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScanWorkers = n
		}
	}

	cfg.PortfolioValue = 1_000_000
	if v := strings.TrimSpace(os.Getenv("PORTFOLIO_VALUE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.PortfolioValue = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.AdvisorMaxHistory = 20
	if v := os.Getenv("ADVISOR_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AdvisorMaxHistory = n
		}
	}

	return cfg
}
