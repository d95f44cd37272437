package ta

// EngulfingResult holds the two-bar reversal pattern classification per
// bar (+1 bullish, -1 bearish, 0 none), the rolling "bullish pattern
// seen in the last 3 bars" flags, and the body size ratio of each bar
// to its predecessor.
type EngulfingResult struct {
	Signals    []float64
	BullishIn3 []bool
	BodyRatios []float64
	Metadata   map[string]float64
}

// Engulfing detects bullish and bearish engulfing patterns. A bullish
// classification at bar i requires bar i-1 bearish, bar i bullish, bar
// i's close above bar i-1's open, bar i's open below bar i-1's close,
// and bar i's body at least minBodyRatio times bar i-1's body; bearish
// is the mirror condition. Highs and lows are accepted for interface
// symmetry with the other indicators but do not enter the
// classification, which is a body-only test.
func Engulfing(opens, highs, lows, closes []float64, minBodyRatio float64) EngulfingResult {
	n := len(closes)
	signals := make([]float64, n)
	ratios := make([]float64, n)
	var bullCount, bearCount float64

	for i := 1; i < n; i++ {
		prevOpen, prevClose := opens[i-1], closes[i-1]
		currOpen, currClose := opens[i], closes[i]

		prevBody := abs(prevClose - prevOpen)
		currBody := abs(currClose - currOpen)
		if prevBody > 0 {
			ratios[i] = currBody / prevBody
		}

		if currBody < minBodyRatio*prevBody {
			continue
		}

		switch {
		case prevClose < prevOpen && currClose > currOpen &&
			currClose > prevOpen && currOpen < prevClose:
			signals[i] = 1
			bullCount++
		case prevClose > prevOpen && currClose < currOpen &&
			currClose < prevOpen && currOpen > prevClose:
			signals[i] = -1
			bearCount++
		}
	}

	bullishIn3 := make([]bool, n)
	for i := range signals {
		for j := i; j >= 0 && j > i-3; j-- {
			if signals[j] == 1 {
				bullishIn3[i] = true
				break
			}
		}
	}

	meta := map[string]float64{
		"min_body_ratio": minBodyRatio,
		"bullish_count":  bullCount,
		"bearish_count":  bearCount,
	}
	if n > 0 {
		meta["last_signal"] = signals[n-1]
	}
	return EngulfingResult{Signals: signals, BullishIn3: bullishIn3, BodyRatios: ratios, Metadata: meta}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
