package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"equity-sentry/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// SignalReader is the read surface the bot's commands need.
type SignalReader interface {
	LatestSignals(ctx context.Context, ticker string) ([]domain.TradingSignal, error)
	Positions() map[string]*domain.StrategyState
	RiskReport() (domain.RiskMetrics, []string)
}

// Advisor answers free-form questions about the market state.
type Advisor interface {
	Ask(ctx context.Context, chatID int64, userMessage string) (string, error)
}

// TelegramBot pushes signal alerts to a configured chat and serves the
// query commands. A nil *TelegramBot is a valid no-op notifier, which
// keeps the wiring simple when the bot token is not configured.
type TelegramBot struct {
	bot    *tele.Bot
	chatID int64
}

// NewTelegramBot reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID from the
// environment. Returns nil (and no error) when the token is unset.
func NewTelegramBot() (*TelegramBot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}

	var chatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		chatID = parsed
	}

	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}
	return &TelegramBot{bot: b, chatID: chatID}, nil
}

// NotifySignal pushes one signal alert to the configured chat.
func (t *TelegramBot) NotifySignal(ctx context.Context, sig domain.TradingSignal) error {
	if t == nil || t.chatID == 0 {
		return nil
	}
	_, err := t.bot.Send(tele.ChatID(t.chatID), FormatSignal(sig))
	return err
}

// Start registers the command handlers and launches long polling.
func (t *TelegramBot) Start(signals SignalReader, advisor Advisor) {
	if t == nil {
		return
	}

	t.bot.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	t.bot.Handle("/signals", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /signals VNM\nWatched: %s", strings.Join(domain.Watchlist, ", ")))
		}
		ticker := strings.ToUpper(args[0])
		if !domain.IsWatched(ticker) {
			return c.Send(fmt.Sprintf("Unknown ticker: %s\nWatched: %s", ticker, strings.Join(domain.Watchlist, ", ")))
		}
		sigs, err := signals.LatestSignals(context.Background(), ticker)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching signals for %s: %v", ticker, err))
		}
		if len(sigs) == 0 {
			return c.Send(fmt.Sprintf("No recent signals for %s", ticker))
		}
		lines := make([]string, 0, len(sigs))
		for _, s := range sigs {
			lines = append(lines, FormatSignal(s))
		}
		return c.Send(strings.Join(lines, "\n\n"))
	})

	t.bot.Handle("/positions", func(c tele.Context) error {
		var lines []string
		for _, st := range signals.Positions() {
			if st.Status == domain.PositionNone {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s entry %.0f now %.0f (%+.1f%%)",
				st.Ticker, st.Status, st.EntryPrice, st.CurrentPrice, st.UnrealizedPnL*100))
		}
		if len(lines) == 0 {
			return c.Send("No open positions")
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	t.bot.Handle("/risk", func(c tele.Context) error {
		metrics, warnings := signals.RiskReport()
		msg := fmt.Sprintf(
			"Portfolio: %.0f\nDaily P&L: %.0f (%.2f%%)\nActive positions: %d\nRisk limit usage: %.0f%%",
			metrics.PortfolioValue, metrics.DailyPnL, metrics.DailyDrawdown*100,
			metrics.ActivePositionsCount, metrics.RiskLimitUsage*100,
		)
		if len(warnings) > 0 {
			msg += "\n\nWarnings:\n- " + strings.Join(warnings, "\n- ")
		}
		return c.Send(msg)
	})

	t.bot.Handle("/ask", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("Advisor is not configured")
		}
		question := strings.TrimSpace(strings.TrimPrefix(c.Text(), "/ask"))
		if question == "" {
			return c.Send("Usage: /ask should I hold VNM?")
		}
		reply, err := advisor.Ask(context.Background(), c.Chat().ID, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(reply)
	})

	log.Println("Telegram bot started")
	go t.bot.Start()
}

// FormatSignal renders one signal as a Telegram message.
func FormatSignal(sig domain.TradingSignal) string {
	var sb strings.Builder
	switch sig.Type {
	case domain.SignalBuy:
		sb.WriteString("🟢 BUY ")
	case domain.SignalSell:
		sb.WriteString("🔴 SELL ")
	case domain.SignalRiskWarning:
		sb.WriteString("⚠️ RISK ")
	}
	sb.WriteString(sig.Ticker)
	sb.WriteString(fmt.Sprintf("\nPrice: %.0f | Confidence: %.0f%%", sig.EntryPrice, sig.Confidence*100))
	if sig.StopLoss != nil && sig.TakeProfit != nil {
		sb.WriteString(fmt.Sprintf("\nSL: %.0f | TP: %.0f", *sig.StopLoss, *sig.TakeProfit))
	}
	sb.WriteString("\n")
	sb.WriteString(sig.Reason)
	return sb.String()
}
