package risk

import (
	"fmt"

	"equity-sentry/internal/domain"
)

// Metrics derives the portfolio risk snapshot from the current position
// states. Nothing here is persisted; callers recompute on demand.
func (m *Manager) Metrics(positions map[string]*domain.StrategyState, portfolioValue float64) domain.RiskMetrics {
	var (
		totalExposure float64
		maxExposure   float64
		active        int
	)
	for _, st := range positions {
		if st == nil || st.Status == domain.PositionNone {
			continue
		}
		active++
		if st.EntryPrice > 0 && st.CurrentPrice > 0 {
			exposure := abs(st.CurrentPrice-st.EntryPrice) / st.EntryPrice
			totalExposure += exposure
			if exposure > maxExposure {
				maxExposure = exposure
			}
		}
	}

	m.mu.Lock()
	dailyPnL := m.dailyPnL[timeNow().Format(dayKeyLayout)]
	m.mu.Unlock()

	var drawdown float64
	if portfolioValue > 0 && dailyPnL < 0 {
		drawdown = dailyPnL / portfolioValue
	}

	usage := float64(active) / float64(m.limits.MaxPositions)
	return domain.RiskMetrics{
		PortfolioValue:       portfolioValue,
		TotalExposure:        totalExposure,
		DailyPnL:             dailyPnL,
		DailyDrawdown:        drawdown,
		ActivePositionsCount: active,
		RiskLimitUsage:       usage,
		MaxPositionSize:      maxExposure,
		DiversificationScore: usage,
	}
}

// Warnings renders human-readable alerts for elevated metrics.
func (m *Manager) Warnings(metrics domain.RiskMetrics) []string {
	var warnings []string
	if metrics.TotalExposure > 0.8 {
		warnings = append(warnings, fmt.Sprintf("High total exposure: %.1f%%", metrics.TotalExposure*100))
	}
	if metrics.DailyDrawdown < -0.03 {
		warnings = append(warnings, fmt.Sprintf("Significant daily loss: %.1f%%", metrics.DailyDrawdown*100))
	}
	if metrics.MaxPositionSize > 0.15 {
		warnings = append(warnings, fmt.Sprintf("Large position concentration: %.1f%%", metrics.MaxPositionSize*100))
	}
	if metrics.RiskLimitUsage > 0.8 {
		warnings = append(warnings, fmt.Sprintf("Near position limit: %d/%d", metrics.ActivePositionsCount, m.limits.MaxPositions))
	}
	if m.BreakerOpen() {
		m.mu.Lock()
		until := m.breakerUntil
		m.mu.Unlock()
		warnings = append(warnings, fmt.Sprintf("Circuit breaker active until %s", until.Format("15:04 02 Jan")))
	}
	return warnings
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
