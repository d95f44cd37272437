package ta

import "math"

// Result bundles an indicator's value series with its discrete signal
// series and a few derived summary values. Both series are aligned 1:1
// with the input bars; positions before the warm-up window hold NaN
// (values) or 0 (signals).
type Result struct {
	Values   []float64
	Signals  []float64
	Metadata map[string]float64
}

// RSIState is the categorical classification of an RSI value.
type RSIState string

const (
	RSIOverbought   RSIState = "overbought"
	RSIOversold     RSIState = "oversold"
	RSITrendingUp   RSIState = "trending_up"
	RSITrendingDown RSIState = "trending_down"
	RSINeutral      RSIState = "neutral"
)

// ClassifyRSI maps an RSI value to its categorical state. NaN input
// (warm-up prefix) classifies as neutral.
func ClassifyRSI(rsi, overbought, oversold, neutral float64) RSIState {
	switch {
	case math.IsNaN(rsi):
		return RSINeutral
	case rsi >= overbought:
		return RSIOverbought
	case rsi <= oversold:
		return RSIOversold
	case rsi > neutral:
		return RSITrendingUp
	case rsi < neutral:
		return RSITrendingDown
	default:
		return RSINeutral
	}
}

// RSISeries computes the Wilder-smoothed Relative Strength Index.
// The first period samples hold NaN; input shorter than period+1 yields
// an all-NaN series rather than an error.
func RSISeries(closes []float64, period int) []float64 {
	series := make([]float64, len(closes))
	for i := range series {
		series[i] = math.NaN()
	}
	if period <= 0 || len(closes) <= period {
		return series
	}

	var gainSum float64
	var lossSum float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	series[period] = rsiFromAvg(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		series[i] = rsiFromAvg(avgGain, avgLoss)
	}
	return series
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			// Flat price action carries no directional information.
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// RSI computes the full RSI result: Wilder-smoothed values plus the
// threshold-derived discrete signal series (-1 overbought, +1 oversold,
// +0.5 above the midpoint, -0.5 below it).
func RSI(closes []float64, period int, overbought, oversold, neutral float64) Result {
	values := RSISeries(closes, period)
	signals := make([]float64, len(values))
	for i, v := range values {
		switch ClassifyRSI(v, overbought, oversold, neutral) {
		case RSIOverbought:
			signals[i] = -1
		case RSIOversold:
			signals[i] = 1
		case RSITrendingUp:
			signals[i] = 0.5
		case RSITrendingDown:
			signals[i] = -0.5
		}
	}

	meta := map[string]float64{
		"period":           float64(period),
		"overbought_level": overbought,
		"oversold_level":   oversold,
		"neutral_level":    neutral,
	}
	if n := len(values); n > 0 && !math.IsNaN(values[n-1]) {
		meta["current_rsi"] = values[n-1]
	}
	return Result{Values: values, Signals: signals, Metadata: meta}
}

// SMASeries computes a simple moving average with a NaN prefix before
// the first full window.
func SMASeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}
