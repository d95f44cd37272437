package risk

import (
	"log"
	"math"
	"sync"
	"time"

	"equity-sentry/internal/domain"
)

const dayKeyLayout = "2006-01-02"

var timeNow = time.Now

// Manager is the portfolio-level gate: position sizing, position-count
// and daily-loss limits, a circuit breaker, and final filtering of
// candidate signals. All mutable state sits behind one mutex so the
// scanner's workers can share a single instance.
type Manager struct {
	limits         Limits
	portfolioValue float64

	mu            sync.Mutex
	dailyTrades   map[string]int
	dailyPnL      map[string]float64
	breakerActive bool
	breakerUntil  time.Time
}

func NewManager(limits Limits, portfolioValue float64) (*Manager, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		limits:         limits,
		portfolioValue: portfolioValue,
		dailyTrades:    make(map[string]int),
		dailyPnL:       make(map[string]float64),
	}, nil
}

func (m *Manager) Limits() Limits { return m.limits }

// PositionSize returns the number of shares to buy for the given entry
// and stop prices: the per-trade risk budget divided by the per-share
// risk, capped by the single-position notional cap. Degenerate inputs
// and sub-ticket notionals size to zero.
func (m *Manager) PositionSize(entry, stopLoss, portfolioValue float64) int {
	if entry <= 0 || stopLoss <= 0 || portfolioValue <= 0 {
		return 0
	}
	perShareRisk := math.Abs(entry - stopLoss)
	if perShareRisk <= 0 {
		return 0
	}

	riskBudget := portfolioValue * m.limits.PositionSize
	shares := int(riskBudget / perShareRisk)

	maxPositionValue := portfolioValue * m.limits.SinglePositionCap
	if maxShares := int(maxPositionValue / entry); shares > maxShares {
		shares = maxShares
	}

	if float64(shares)*entry < m.limits.MinTicketValue {
		return 0
	}
	return shares
}

// CanOpenPosition reports whether a new position in ticker is
// admissible right now. The circuit breaker is checked lazily: the
// first call after the cooldown expiry closes it again.
func (m *Manager) CanOpenPosition(ticker string, positions map[string]*domain.StrategyState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := 0
	for _, st := range positions {
		if st != nil && st.Status != domain.PositionNone {
			active++
		}
	}
	if active >= m.limits.MaxPositions {
		log.Printf("risk: max positions limit reached: %d/%d", active, m.limits.MaxPositions)
		return false
	}

	if st, ok := positions[ticker]; ok && st != nil && st.Status != domain.PositionNone {
		log.Printf("risk: already holding %s", ticker)
		return false
	}

	now := timeNow()
	if m.dailyTrades[now.Format(dayKeyLayout)] >= m.limits.MaxDailyTrades {
		log.Printf("risk: daily trade limit reached for %s", now.Format(dayKeyLayout))
		return false
	}

	if m.breakerActive {
		if now.Before(m.breakerUntil) {
			log.Printf("risk: circuit breaker open until %s, rejecting %s", m.breakerUntil.Format(time.RFC3339), ticker)
			return false
		}
		m.breakerActive = false
		m.breakerUntil = time.Time{}
		log.Println("risk: circuit breaker cooldown elapsed, closing")
	}

	return true
}

// CheckDailyLoss verifies the day's P&L against the maximum daily loss
// and trips the circuit breaker on a breach. Returns false exactly when
// the limit is exceeded.
func (m *Manager) CheckDailyLoss(currentPnL, portfolioValue float64) bool {
	maxLoss := portfolioValue * m.limits.MaxDailyLoss
	if currentPnL >= -maxLoss {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakerActive = true
	m.breakerUntil = timeNow().Add(m.limits.BreakerCooldown)
	log.Printf("risk: CRITICAL daily loss limit exceeded (%.0f < -%.0f), circuit breaker open until %s",
		currentPnL, maxLoss, m.breakerUntil.Format(time.RFC3339))
	return false
}

// BreakerOpen reports whether the circuit breaker currently suppresses
// new entries. It does not close an expired breaker; that happens on
// the next admission check.
func (m *Manager) BreakerOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breakerActive && timeNow().Before(m.breakerUntil)
}

// FilterSignals applies the portfolio gate to candidate signals. Sell
// and risk-warning signals always pass; buys must clear the admission
// checks and a confidence threshold that tightens to 0.7 during a
// high-risk period.
func (m *Manager) FilterSignals(ticker string, signals []domain.TradingSignal, positions map[string]*domain.StrategyState) []domain.TradingSignal {
	if len(signals) == 0 {
		return nil
	}

	minConfidence := 0.6
	if m.highRiskPeriod() {
		minConfidence = 0.7
	}

	filtered := make([]domain.TradingSignal, 0, len(signals))
	for _, sig := range signals {
		if sig.Type == domain.SignalSell || sig.Type == domain.SignalRiskWarning {
			filtered = append(filtered, sig)
			continue
		}
		if sig.Type != domain.SignalBuy {
			continue
		}
		if !m.CanOpenPosition(ticker, positions) {
			log.Printf("risk: buy for %s rejected by position limits", ticker)
			continue
		}
		if sig.Confidence < minConfidence {
			log.Printf("risk: buy for %s below confidence floor %.2f (%.2f)", ticker, minConfidence, sig.Confidence)
			continue
		}
		filtered = append(filtered, sig)
	}
	return filtered
}

// highRiskPeriod is true when the net losses over the last three days
// exceed 2% of the portfolio.
func (m *Manager) highRiskPeriod() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := timeNow()
	var losses float64
	for i := 0; i < 3; i++ {
		pnl := m.dailyPnL[now.AddDate(0, 0, -i).Format(dayKeyLayout)]
		if pnl < 0 {
			losses += pnl
		}
	}
	return losses < -0.02*m.portfolioValue
}

// RecordTrade counts one admitted entry against the daily trade cap.
func (m *Manager) RecordTrade(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyTrades[at.Format(dayKeyLayout)]++
}

// UpdateDailyPnL records the day's P&L and prunes tallies older than
// 30 days.
func (m *Manager) UpdateDailyPnL(date time.Time, pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := date.Format(dayKeyLayout)
	m.dailyPnL[key] = pnl

	cutoff := date.AddDate(0, 0, -30).Format(dayKeyLayout)
	for k := range m.dailyPnL {
		if k < cutoff {
			delete(m.dailyPnL, k)
		}
	}
	for k := range m.dailyTrades {
		if k < cutoff {
			delete(m.dailyTrades, k)
		}
	}
}
