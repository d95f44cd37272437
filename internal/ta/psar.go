package ta

import "math"

// PSARResult holds the Parabolic Stop-and-Reverse stop-price series,
// the trend sign per bar (+1 when price closes above the stop, -1
// below) and the flip flags derived by diffing consecutive signs.
type PSARResult struct {
	Values   []float64
	Trend    []float64
	Flips    []bool
	Metadata map[string]float64
}

// PSARSeries computes the classic Parabolic SAR stop-price series. The
// acceleration factor starts at afInit, grows by afStep on every new
// extreme and is capped at afMax. The first bar holds NaN; fewer than
// two bars yield an all-NaN series.
func PSARSeries(highs, lows, closes []float64, afInit, afStep, afMax float64) []float64 {
	n := len(closes)
	sar := make([]float64, n)
	for i := range sar {
		sar[i] = math.NaN()
	}
	if n < 2 || len(highs) != n || len(lows) != n {
		return sar
	}

	uptrend := closes[1] >= closes[0]
	var ep, cur float64
	if uptrend {
		ep = math.Max(highs[0], highs[1])
		cur = math.Min(lows[0], lows[1])
	} else {
		ep = math.Min(lows[0], lows[1])
		cur = math.Max(highs[0], highs[1])
	}
	af := afInit
	sar[1] = cur

	for i := 2; i < n; i++ {
		next := cur + af*(ep-cur)

		if uptrend {
			// Stop may never rise above the prior two lows.
			next = math.Min(next, math.Min(lows[i-1], lows[i-2]))
			if lows[i] < next {
				uptrend = false
				next = ep
				ep = lows[i]
				af = afInit
			} else if highs[i] > ep {
				ep = highs[i]
				af = math.Min(af+afStep, afMax)
			}
		} else {
			next = math.Max(next, math.Max(highs[i-1], highs[i-2]))
			if highs[i] > next {
				uptrend = true
				next = ep
				ep = highs[i]
				af = afInit
			} else if lows[i] < ep {
				ep = lows[i]
				af = math.Min(af+afStep, afMax)
			}
		}

		sar[i] = next
		cur = next
	}
	return sar
}

// PSAR computes the full PSAR result: stop prices, per-bar trend signs
// relative to the close, and trend-flip flags.
func PSAR(highs, lows, closes []float64, afInit, afStep, afMax float64) PSARResult {
	values := PSARSeries(highs, lows, closes, afInit, afStep, afMax)

	trend := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(values[i]) {
			continue
		}
		if closes[i] > values[i] {
			trend[i] = 1
		} else {
			trend[i] = -1
		}
	}

	flips := make([]bool, len(closes))
	for i := 1; i < len(trend); i++ {
		flips[i] = trend[i] != 0 && trend[i-1] != 0 && trend[i] != trend[i-1]
	}

	meta := map[string]float64{
		"af_init": afInit,
		"af_step": afStep,
		"af_max":  afMax,
	}
	if n := len(values); n > 0 && !math.IsNaN(values[n-1]) {
		meta["current_psar"] = values[n-1]
		meta["current_trend"] = trend[n-1]
	}
	return PSARResult{Values: values, Trend: trend, Flips: flips, Metadata: meta}
}
