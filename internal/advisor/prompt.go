package advisor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"equity-sentry/internal/domain"
)

const tradingPhilosophy = `You are an equity trading advisor bot for the Vietnamese stock market (HOSE). Your role is to interpret the signals the monitoring system produced, NOT to generate signals yourself.

Signal Framework:
- buy: core trend conditions met (price above the Parabolic SAR stop, RSI above the midpoint), confidence reflects confirmations like volume anomalies and bullish engulfing patterns.
- sell: an exit condition fired on an open position. Take profit, stop loss and trailing stop exits are mechanical. Technical exits combine bearish momentum and reversal patterns.
- risk_warning: elevated risk factors (volume spikes, wide intraday ranges, RSI extremes) independent of any position.

Rules:
- Always reference specific signals and data when making observations.
- Never fabricate data. If data is unavailable, say so.
- Express uncertainty when signals conflict.
- Quote the signal's confidence and reason when discussing it.
- Keep responses concise and actionable. You are talking via Telegram.
- Do not provide financial advice disclaimers on every message. The user understands this is informational.
- When asked about a ticker, summarize: its position state, recent signals, and your interpretation.
- If no signals exist for a ticker, say so honestly rather than speculating.`

func BuildSystemPrompt(marketContext string) string {
	var sb strings.Builder
	sb.WriteString(tradingPhilosophy)
	sb.WriteString("\n\n--- LIVE MARKET DATA (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

func FormatMarketContext(positions map[string]*domain.StrategyState, signals []domain.TradingSignal) string {
	var sb strings.Builder

	var held []string
	for ticker, st := range positions {
		if st == nil || st.Status == domain.PositionNone {
			continue
		}
		held = append(held, ticker)
	}
	if len(held) > 0 {
		sort.Strings(held)
		sb.WriteString("\nOpen Positions:\n")
		for _, ticker := range held {
			st := positions[ticker]
			sb.WriteString(fmt.Sprintf("  %s: %s since %s, entry %.0f, now %.0f (%+.1f%%)\n",
				ticker, st.Status, st.EntryDate.Format("02 Jan"),
				st.EntryPrice, st.CurrentPrice, st.UnrealizedPnL*100))
		}
	}

	if len(signals) > 0 {
		sb.WriteString("\nRecent Signals:\n")
		for _, s := range signals {
			sb.WriteString(fmt.Sprintf("  %s %s conf=%.2f @ %.0f: %s\n",
				s.Ticker, strings.ToUpper(string(s.Type)), s.Confidence, s.EntryPrice, s.Reason))
		}
	}

	if sb.Len() == 0 {
		return "No market data currently available."
	}
	return sb.String()
}
