package risk

import (
	"testing"
	"time"

	"equity-sentry/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(DefaultLimits(), 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func freezeTime(t *testing.T, at time.Time) func(time.Time) {
	t.Helper()
	orig := timeNow
	current := at
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = orig })
	return func(next time.Time) { current = next }
}

func longState(ticker string, entry, current float64) *domain.StrategyState {
	return &domain.StrategyState{
		Ticker:       ticker,
		Status:       domain.PositionLong,
		EntryPrice:   entry,
		CurrentPrice: current,
	}
}

func TestLimitsValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultLimits().Validate(); err != nil {
		t.Fatalf("default limits must validate: %v", err)
	}

	bad := DefaultLimits()
	bad.StopLoss = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatal("expected out-of-range stop_loss to be rejected")
	}

	bad = DefaultLimits()
	bad.MaxPositions = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected zero max_positions to be rejected")
	}
}

func TestPositionSizeZeroWhenEntryEqualsStop(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	if got := m.PositionSize(100, 100, 1_000_000); got != 0 {
		t.Fatalf("expected 0 shares when entry == stop, got %d", got)
	}
	if got := m.PositionSize(0, 92, 1_000_000); got != 0 {
		t.Fatalf("expected 0 shares for non-positive entry, got %d", got)
	}
	if got := m.PositionSize(100, 92, 0); got != 0 {
		t.Fatalf("expected 0 shares for empty portfolio, got %d", got)
	}
}

func TestPositionSizeMonotonicInRisk(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	prev := m.PositionSize(100, 99, 1_000_000)
	for _, stop := range []float64{98, 95, 92, 80} {
		got := m.PositionSize(100, stop, 1_000_000)
		if got > prev {
			t.Fatalf("size must not grow as per-share risk grows: %d > %d at stop %f", got, prev, stop)
		}
		prev = got
	}
}

func TestPositionSizeCappedBySingleName(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	// Tiny per-share risk would size huge; the 10% single-name cap wins.
	got := m.PositionSize(100, 99.99, 1_000_000)
	if got != 1000 {
		t.Fatalf("expected single-name cap of 1000 shares, got %d", got)
	}
}

func TestCanOpenPositionLimits(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	positions := map[string]*domain.StrategyState{}
	if !m.CanOpenPosition("HPG", positions) {
		t.Fatal("expected open portfolio to admit a position")
	}

	positions["HPG"] = longState("HPG", 100, 105)
	if m.CanOpenPosition("HPG", positions) {
		t.Fatal("expected rejection for a ticker already held")
	}
	if !m.CanOpenPosition("FPT", positions) {
		t.Fatal("expected admission for a new ticker")
	}

	for i := 0; i < DefaultLimits().MaxPositions; i++ {
		ticker := string(rune('A'+i)) + "XX"
		positions[ticker] = longState(ticker, 100, 100)
	}
	if m.CanOpenPosition("FPT", positions) {
		t.Fatal("expected rejection at the max position count")
	}
}

func TestCanOpenPositionDailyTradeCap(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	for i := 0; i < DefaultLimits().MaxDailyTrades; i++ {
		m.RecordTrade(timeNow())
	}
	if m.CanOpenPosition("HPG", nil) {
		t.Fatal("expected rejection once the daily trade cap is hit")
	}
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	advance := freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	if !m.CheckDailyLoss(-40_000, 1_000_000) {
		t.Fatal("a 4% loss must stay within the 5% limit")
	}
	if m.BreakerOpen() {
		t.Fatal("breaker must stay closed inside the limit")
	}

	if m.CheckDailyLoss(-60_000, 1_000_000) {
		t.Fatal("a 6% loss must breach the 5% limit")
	}
	if !m.BreakerOpen() {
		t.Fatal("breaker must open on a breach")
	}
	if m.CanOpenPosition("HPG", nil) {
		t.Fatal("open breaker must reject every new entry")
	}

	// One minute short of the cooldown: still open.
	advance(time.Date(2026, 3, 2, 11, 59, 0, 0, time.UTC))
	if m.CanOpenPosition("HPG", nil) {
		t.Fatal("breaker must hold through the cooldown")
	}

	// Past the expiry the next admission check closes it lazily.
	advance(time.Date(2026, 3, 2, 12, 1, 0, 0, time.UTC))
	if !m.CanOpenPosition("HPG", nil) {
		t.Fatal("expected admission after the cooldown elapsed")
	}
	if m.BreakerOpen() {
		t.Fatal("breaker must be closed after the lazy reset")
	}
}

func TestFilterSignalsNeverDropsSellOrWarning(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	// Trip the breaker so buys are rejected outright.
	m.CheckDailyLoss(-60_000, 1_000_000)

	signals := []domain.TradingSignal{
		{Ticker: "HPG", Type: domain.SignalSell, Confidence: 1.0},
		{Ticker: "HPG", Type: domain.SignalRiskWarning, Confidence: 0.4},
		{Ticker: "HPG", Type: domain.SignalBuy, Confidence: 0.95},
	}
	out := m.FilterSignals("HPG", signals, nil)
	if len(out) != 2 {
		t.Fatalf("expected sell and warning to survive, got %d signals", len(out))
	}
	for _, s := range out {
		if s.Type == domain.SignalBuy {
			t.Fatal("buy must not pass while the breaker is open")
		}
	}
}

func TestFilterSignalsConfidenceFloor(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	signals := []domain.TradingSignal{{Ticker: "HPG", Type: domain.SignalBuy, Confidence: 0.55}}
	if out := m.FilterSignals("HPG", signals, nil); len(out) != 0 {
		t.Fatalf("expected sub-floor buy to be filtered, got %d", len(out))
	}

	signals[0].Confidence = 0.65
	if out := m.FilterSignals("HPG", signals, nil); len(out) != 1 {
		t.Fatal("expected 0.65 confidence to pass the normal 0.6 floor")
	}
}

func TestFilterSignalsHighRiskPeriodRaisesFloor(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	// 3% of the portfolio lost yesterday: high-risk, floor is 0.7.
	m.UpdateDailyPnL(timeNow().AddDate(0, 0, -1), -30_000)

	signals := []domain.TradingSignal{{Ticker: "HPG", Type: domain.SignalBuy, Confidence: 0.65}}
	if out := m.FilterSignals("HPG", signals, nil); len(out) != 0 {
		t.Fatal("expected 0.65 to fail the high-risk 0.7 floor")
	}

	signals[0].Confidence = 0.75
	if out := m.FilterSignals("HPG", signals, nil); len(out) != 1 {
		t.Fatal("expected 0.75 to pass the high-risk floor")
	}
}

func TestMetricsAndWarnings(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	m := newTestManager(t)

	positions := map[string]*domain.StrategyState{
		"HPG": longState("HPG", 100, 120),
		"FPT": longState("FPT", 50, 51),
		"VNM": {Ticker: "VNM", Status: domain.PositionNone},
	}
	m.UpdateDailyPnL(timeNow(), -40_000)

	metrics := m.Metrics(positions, 1_000_000)
	if metrics.ActivePositionsCount != 2 {
		t.Fatalf("expected 2 active positions, got %d", metrics.ActivePositionsCount)
	}
	if metrics.DailyPnL != -40_000 {
		t.Fatalf("unexpected daily pnl: %f", metrics.DailyPnL)
	}
	if metrics.DailyDrawdown != -0.04 {
		t.Fatalf("unexpected drawdown: %f", metrics.DailyDrawdown)
	}
	if metrics.RiskLimitUsage != 0.2 {
		t.Fatalf("unexpected limit usage: %f", metrics.RiskLimitUsage)
	}
	if metrics.MaxPositionSize != 0.2 {
		t.Fatalf("unexpected max position size: %f", metrics.MaxPositionSize)
	}

	warnings := m.Warnings(metrics)
	// -4% daily drawdown and a 20% single-name move both warrant alerts.
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestUpdateDailyPnLPrunesOldDays(t *testing.T) {
	m := newTestManager(t)

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.UpdateDailyPnL(old, -100)
	m.UpdateDailyPnL(old.AddDate(0, 0, 45), 50)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dailyPnL[old.Format(dayKeyLayout)]; ok {
		t.Fatal("expected entries older than 30 days to be pruned")
	}
}
