package strategy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"equity-sentry/internal/domain"
	"equity-sentry/internal/ta"
)

// Generator turns one enriched bar plus the ticker's current position
// record into zero or more candidate signals. It holds no state of its
// own; the trailing-peak bookkeeping it performs happens on the state
// the engine passes in, under the engine's lock.
type Generator struct {
	params Params
}

func NewGenerator(params Params) *Generator {
	return &Generator{params: params}
}

// Evaluate runs the buy, sell, and risk-warning checks against the
// latest enriched bar. Sell evaluation only applies while the ticker
// holds a long position.
func (g *Generator) Evaluate(ticker string, row ta.EnrichedBar, state *domain.StrategyState, now time.Time) []domain.TradingSignal {
	var signals []domain.TradingSignal

	if sig, ok := g.evaluateBuy(ticker, row, now); ok {
		signals = append(signals, sig)
	}
	if state != nil && state.Status == domain.PositionLong {
		if sig, ok := g.evaluateSell(ticker, row, state, now); ok {
			signals = append(signals, sig)
		}
	}
	if sig, ok := g.evaluateRiskWarning(ticker, row, now); ok {
		signals = append(signals, sig)
	}
	return signals
}

// evaluateBuy applies the core gate (close above the PSAR stop and RSI
// above the midpoint) and the additive confidence scoring. NaN
// indicator values fail the comparisons, so a warm-up bar can never
// gate through.
func (g *Generator) evaluateBuy(ticker string, row ta.EnrichedBar, now time.Time) (domain.TradingSignal, bool) {
	var reasons []string

	priceAbovePSAR := row.Close > row.PSAR
	rsiBullish := row.RSI > g.params.RSI.Neutral
	if priceAbovePSAR {
		reasons = append(reasons, "Price > PSAR")
	}
	if rsiBullish {
		reasons = append(reasons, fmt.Sprintf("RSI > %.0f", g.params.RSI.Neutral))
	}
	coreMet := priceAbovePSAR && rsiBullish

	confidence := 0.0
	if coreMet {
		confidence = 0.6
	}
	if row.VolumeAnomaly {
		confidence += 0.2
		reasons = append(reasons, "Volume Anomaly")
	}
	if row.BullishEngulfingIn3 {
		confidence += 0.2
		reasons = append(reasons, "Bullish Engulfing <=3 bars")
	}
	if g.liquidityOK(row) {
		confidence = math.Min(1.0, confidence+0.1)
		reasons = append(reasons, "Liquidity OK")
	} else {
		confidence *= 0.7
	}

	if !coreMet || confidence < 0.6 {
		return domain.TradingSignal{}, false
	}

	stopLoss := row.Close * (1 - g.params.Risk.StopLoss)
	takeProfit := row.Close * (1 + g.params.Risk.TakeProfit)
	sig := domain.TradingSignal{
		Ticker:     ticker,
		Timestamp:  now,
		Type:       domain.SignalBuy,
		Confidence: confidence,
		EntryPrice: row.Close,
		StopLoss:   &stopLoss,
		TakeProfit: &takeProfit,
		Reason:     strings.Join(reasons, ", "),
		Metadata:   map[string]float64{},
	}
	putMeta(sig.Metadata, "rsi", row.RSI)
	putMeta(sig.Metadata, "psar", row.PSAR)
	putMeta(sig.Metadata, "price_vs_psar", boolToFloat(row.PriceAbovePSAR))
	putMeta(sig.Metadata, "engulfing_signal", row.EngulfingSignal)
	putMeta(sig.Metadata, "engulfing_in_3_bars", boolToFloat(row.BullishEngulfingIn3))
	putMeta(sig.Metadata, "volume_anomaly", boolToFloat(row.VolumeAnomaly))
	return sig, true
}

// evaluateSell walks the exit conditions in strict priority order:
// take profit, stop loss, trailing stop, then the technical exit. The
// trailing-peak and trailing-stop fields on state are updated here.
func (g *Generator) evaluateSell(ticker string, row ta.EnrichedBar, state *domain.StrategyState, now time.Time) (domain.TradingSignal, bool) {
	entry := state.EntryPrice
	if entry <= 0 {
		return domain.TradingSignal{}, false
	}
	price := row.Close
	pnl := (price - entry) / entry

	emit := func(confidence float64, reason string) (domain.TradingSignal, bool) {
		sig := domain.TradingSignal{
			Ticker:     ticker,
			Timestamp:  now,
			Type:       domain.SignalSell,
			Confidence: confidence,
			EntryPrice: price,
			Reason:     reason,
			Metadata:   map[string]float64{},
		}
		putMeta(sig.Metadata, "position_entry_price", entry)
		putMeta(sig.Metadata, "pnl_percent", pnl*100)
		if !state.EntryDate.IsZero() {
			putMeta(sig.Metadata, "days_held", now.Sub(state.EntryDate).Hours()/24)
		}
		return sig, true
	}

	if pnl >= g.params.Risk.TakeProfit {
		return emit(1.0, fmt.Sprintf("Take Profit hit (+%.1f%%)", pnl*100))
	}
	if pnl <= -g.params.Risk.StopLoss {
		return emit(1.0, fmt.Sprintf("Stop Loss hit (%.1f%%)", pnl*100))
	}

	if price > state.MaxPriceSinceEntry {
		state.MaxPriceSinceEntry = price
	}
	maxPnL := (state.MaxPriceSinceEntry - entry) / entry
	if maxPnL >= g.params.Risk.TrailingTakeProfit {
		state.TrailingStopPrice = state.MaxPriceSinceEntry * (1 - g.params.Risk.TrailingStop)
		if price <= state.TrailingStopPrice {
			return emit(1.0, fmt.Sprintf("Trailing Stop hit (peak: +%.1f%%, current: %.1f%%)", maxPnL*100, pnl*100))
		}
	}

	var reasons []string
	confidence := 0.0
	if row.RSI < g.params.RSI.Neutral {
		confidence += 0.4
		reasons = append(reasons, fmt.Sprintf("RSI < %.0f", g.params.RSI.Neutral))
	}
	if row.EngulfingSignal < 0 {
		confidence += 0.6
		reasons = append(reasons, "Bearish Engulfing")
	}
	if confidence >= 0.7 {
		return emit(confidence, strings.Join(reasons, ", "))
	}
	return domain.TradingSignal{}, false
}

// evaluateRiskWarning accumulates independent risk factors and emits
// once their combined confidence reaches 0.4. The reason lists every
// contributing factor with its measured value.
func (g *Generator) evaluateRiskWarning(ticker string, row ta.EnrichedBar, now time.Time) (domain.TradingSignal, bool) {
	var reasons []string
	confidence := 0.0
	metadata := map[string]float64{}

	if row.Volume > 0 && row.VolumeRatio > g.params.Volume.SpikeRatio {
		confidence += 0.3
		reasons = append(reasons, fmt.Sprintf("Volume spike (%.1fx avg)", row.VolumeRatio))
		metadata["volume_ratio"] = row.VolumeRatio
	}

	if row.Close > 0 {
		dailyRange := (row.High - row.Low) / row.Close
		if dailyRange > 0.05 {
			confidence += 0.2
			reasons = append(reasons, fmt.Sprintf("High volatility (%.1f%%)", dailyRange*100))
			metadata["daily_range_percent"] = dailyRange * 100
		}
	}

	switch {
	case row.RSI > g.params.RSI.Overbought:
		confidence += 0.3
		reasons = append(reasons, fmt.Sprintf("RSI overbought (%.1f)", row.RSI))
		metadata["rsi"] = row.RSI
	case row.RSI < g.params.RSI.Oversold:
		confidence += 0.2
		reasons = append(reasons, fmt.Sprintf("RSI oversold (%.1f)", row.RSI))
		metadata["rsi"] = row.RSI
	}

	if confidence < 0.4 {
		return domain.TradingSignal{}, false
	}
	return domain.TradingSignal{
		Ticker:     ticker,
		Timestamp:  now,
		Type:       domain.SignalRiskWarning,
		Confidence: confidence,
		EntryPrice: row.Close,
		Reason:     strings.Join(reasons, ", "),
		Metadata:   metadata,
	}, true
}

func (g *Generator) liquidityOK(row ta.EnrichedBar) bool {
	if row.Volume < g.params.Liquidity.MinVolume {
		return false
	}
	if row.Close < g.params.Liquidity.PriceFloor || row.Close > g.params.Liquidity.PriceCeil {
		return false
	}
	return true
}

// putMeta skips NaN values so the metadata map always marshals.
func putMeta(m map[string]float64, key string, value float64) {
	if math.IsNaN(value) {
		return
	}
	m[key] = value
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
