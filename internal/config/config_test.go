package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("TIMEFRAME", "")
	t.Setenv("SCAN_INTERVAL_SECS", "")
	t.Setenv("SCAN_WORKERS", "")
	t.Setenv("PORTFOLIO_VALUE", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.Timeframe != "1d" {
		t.Fatalf("expected default timeframe 1d, got %s", cfg.Timeframe)
	}
	if cfg.ScanIntervalSecs != 300 {
		t.Fatalf("expected default scan interval 300, got %d", cfg.ScanIntervalSecs)
	}
	if cfg.ScanWorkers != 4 {
		t.Fatalf("expected default scan workers 4, got %d", cfg.ScanWorkers)
	}
	if cfg.PortfolioValue != 1_000_000 {
		t.Fatalf("expected default portfolio value 1000000, got %f", cfg.PortfolioValue)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default openai model, got %s", cfg.OpenAIModel)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("FEED_BASE_URL", "https://feed.example.com")
	t.Setenv("TIMEFRAME", "1h")
	t.Setenv("SCAN_INTERVAL_SECS", "60")
	t.Setenv("SCAN_WORKERS", "8")
	t.Setenv("PORTFOLIO_VALUE", "500000")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.TelegramChatID != "12345" {
		t.Fatalf("expected chat id 12345, got %s", cfg.TelegramChatID)
	}
	if cfg.FeedBaseURL != "https://feed.example.com" {
		t.Fatalf("unexpected feed base url: %s", cfg.FeedBaseURL)
	}
	if cfg.Timeframe != "1h" {
		t.Fatalf("expected timeframe 1h, got %s", cfg.Timeframe)
	}
	if cfg.ScanIntervalSecs != 60 || cfg.ScanWorkers != 8 {
		t.Fatalf("unexpected scanner config: %+v", cfg)
	}
	if cfg.PortfolioValue != 500_000 {
		t.Fatalf("expected portfolio value 500000, got %f", cfg.PortfolioValue)
	}

	t.Setenv("SCAN_INTERVAL_SECS", "bad")
	cfg = Load()
	if cfg.ScanIntervalSecs != 300 {
		t.Fatalf("invalid scan interval should fall back to default, got %d", cfg.ScanIntervalSecs)
	}
}

func TestLoadUnsupportedTimeframe(t *testing.T) {
	t.Setenv("TIMEFRAME", "5m")

	cfg := Load()
	if cfg.Timeframe != "1d" {
		t.Fatalf("unsupported timeframe should fall back to 1d, got %s", cfg.Timeframe)
	}
}
