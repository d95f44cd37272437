package strategy

import (
	"fmt"

	"equity-sentry/internal/risk"
	"equity-sentry/internal/ta"
)

// Params is the immutable strategy configuration: indicator parameters,
// liquidity filters, and the risk limits. Build once at startup with
// DefaultParams, override, then pass to NewEngine, which validates and
// rejects out-of-range values instead of defaulting them silently.
type Params struct {
	RSI       RSIParams
	PSAR      PSARParams
	Engulfing EngulfingParams
	Volume    VolumeParams
	Liquidity LiquidityParams
	Risk      risk.Limits
}

type RSIParams struct {
	Period     int
	Overbought float64
	Oversold   float64
	Neutral    float64
}

type PSARParams struct {
	AFInit float64
	AFStep float64
	AFMax  float64
}

type EngulfingParams struct {
	MinBodyRatio float64
}

type VolumeParams struct {
	AvgPeriod        int
	AnomalyThreshold float64
	// SpikeRatio is the separate, stricter multiple the risk-warning
	// check uses; it is intentionally distinct from AnomalyThreshold.
	SpikeRatio float64
}

// LiquidityParams is the sanity filter applied before admitting a buy:
// a volume floor and a plausible price band (VND).
type LiquidityParams struct {
	MinVolume  float64
	PriceFloor float64
	PriceCeil  float64
}

func DefaultParams() Params {
	return Params{
		RSI: RSIParams{
			Period:     14,
			Overbought: 70,
			Oversold:   30,
			Neutral:    50,
		},
		PSAR: PSARParams{
			AFInit: 0.02,
			AFStep: 0.02,
			AFMax:  0.20,
		},
		Engulfing: EngulfingParams{
			MinBodyRatio: 0.5,
		},
		Volume: VolumeParams{
			AvgPeriod:        20,
			AnomalyThreshold: 1.0,
			SpikeRatio:       3.0,
		},
		Liquidity: LiquidityParams{
			MinVolume:  10_000,
			PriceFloor: 1_000,
			PriceCeil:  1_000_000,
		},
		Risk: risk.DefaultLimits(),
	}
}

func (p Params) Validate() error {
	if p.RSI.Period <= 1 {
		return fmt.Errorf("rsi period must exceed 1: %d", p.RSI.Period)
	}
	if p.RSI.Oversold >= p.RSI.Neutral || p.RSI.Neutral >= p.RSI.Overbought {
		return fmt.Errorf("rsi thresholds must order oversold < neutral < overbought: %f/%f/%f",
			p.RSI.Oversold, p.RSI.Neutral, p.RSI.Overbought)
	}
	if p.RSI.Oversold <= 0 || p.RSI.Overbought >= 100 {
		return fmt.Errorf("rsi thresholds must stay inside (0,100)")
	}
	if p.PSAR.AFInit <= 0 || p.PSAR.AFStep <= 0 || p.PSAR.AFMax <= 0 {
		return fmt.Errorf("psar acceleration factors must be positive")
	}
	if p.PSAR.AFInit > p.PSAR.AFMax {
		return fmt.Errorf("psar af_init %f exceeds af_max %f", p.PSAR.AFInit, p.PSAR.AFMax)
	}
	if p.Engulfing.MinBodyRatio <= 0 {
		return fmt.Errorf("engulfing min_body_ratio must be positive: %f", p.Engulfing.MinBodyRatio)
	}
	if p.Volume.AvgPeriod <= 0 {
		return fmt.Errorf("volume avg_period must be positive: %d", p.Volume.AvgPeriod)
	}
	if p.Volume.AnomalyThreshold <= 0 || p.Volume.SpikeRatio <= 0 {
		return fmt.Errorf("volume thresholds must be positive")
	}
	if p.Liquidity.MinVolume < 0 || p.Liquidity.PriceFloor < 0 || p.Liquidity.PriceCeil <= p.Liquidity.PriceFloor {
		return fmt.Errorf("liquidity filter misconfigured: %+v", p.Liquidity)
	}
	return p.Risk.Validate()
}

func (p Params) taParams() ta.Params {
	return ta.Params{
		RSIPeriod:              p.RSI.Period,
		RSIOverbought:          p.RSI.Overbought,
		RSIOversold:            p.RSI.Oversold,
		RSINeutral:             p.RSI.Neutral,
		PSARAFInit:             p.PSAR.AFInit,
		PSARAFStep:             p.PSAR.AFStep,
		PSARAFMax:              p.PSAR.AFMax,
		EngulfingMinBodyRatio:  p.Engulfing.MinBodyRatio,
		VolumeAvgPeriod:        p.Volume.AvgPeriod,
		VolumeAnomalyThreshold: p.Volume.AnomalyThreshold,
	}
}
