package ta

import (
	"equity-sentry/internal/domain"
)

// Params carries the indicator parameters for an enrichment pass.
// Validation happens upstream in the strategy configuration; zero
// values here degrade to empty indicator coverage, never panic.
type Params struct {
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
	RSINeutral    float64

	PSARAFInit float64
	PSARAFStep float64
	PSARAFMax  float64

	EngulfingMinBodyRatio float64

	VolumeAvgPeriod        int
	VolumeAnomalyThreshold float64
}

// EnrichedBar is one input bar augmented with every indicator column
// the signal generator reads. Value columns hold NaN before their
// indicator's warm-up window.
type EnrichedBar struct {
	domain.Bar

	RSI       float64
	RSISignal float64
	RSIState  RSIState

	PSAR           float64
	PSARTrend      float64
	PSARFlip       bool
	PriceAbovePSAR bool

	EngulfingSignal     float64
	BullishEngulfingIn3 bool
	BodyRatio           float64

	AvgVolume     float64
	VolumeRatio   float64
	VolumeAnomaly bool
}

// EnrichAll runs every indicator over the bar sequence and returns the
// per-bar enriched rows. This is the only entry point the signal
// generator consumes; it never errors, short input just shrinks the
// warmed-up suffix.
func EnrichAll(bars []domain.Bar, p Params) []EnrichedBar {
	n := len(bars)
	if n == 0 {
		return nil
	}

	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		opens[i] = b.Open
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	rsi := RSI(closes, p.RSIPeriod, p.RSIOverbought, p.RSIOversold, p.RSINeutral)
	psar := PSAR(highs, lows, closes, p.PSARAFInit, p.PSARAFStep, p.PSARAFMax)
	engulfing := Engulfing(opens, highs, lows, closes, p.EngulfingMinBodyRatio)
	volume := VolumeAnomaly(volumes, p.VolumeAvgPeriod, p.VolumeAnomalyThreshold)

	out := make([]EnrichedBar, n)
	for i := range bars {
		out[i] = EnrichedBar{
			Bar: bars[i],

			RSI:       rsi.Values[i],
			RSISignal: rsi.Signals[i],
			RSIState:  ClassifyRSI(rsi.Values[i], p.RSIOverbought, p.RSIOversold, p.RSINeutral),

			PSAR:           psar.Values[i],
			PSARTrend:      psar.Trend[i],
			PSARFlip:       psar.Flips[i],
			PriceAbovePSAR: psar.Trend[i] == 1,

			EngulfingSignal:     engulfing.Signals[i],
			BullishEngulfingIn3: engulfing.BullishIn3[i],
			BodyRatio:           engulfing.BodyRatios[i],

			AvgVolume:     volume.Averages[i],
			VolumeRatio:   volume.Ratios[i],
			VolumeAnomaly: volume.Anomaly[i],
		}
	}
	return out
}
