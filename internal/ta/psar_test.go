package ta

import (
	"math"
	"testing"
)

func trendBars(n int, start, step float64) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	price := start
	for i := 0; i < n; i++ {
		closes[i] = price
		highs[i] = price + 0.5
		lows[i] = price - 0.5
		price += step
	}
	return highs, lows, closes
}

func TestPSARUptrendStaysBelowPrice(t *testing.T) {
	t.Parallel()

	highs, lows, closes := trendBars(40, 100, 1)
	res := PSAR(highs, lows, closes, 0.02, 0.02, 0.20)

	if !math.IsNaN(res.Values[0]) {
		t.Fatal("expected NaN at first bar")
	}
	for i := 2; i < len(closes); i++ {
		if math.IsNaN(res.Values[i]) {
			t.Fatalf("expected defined PSAR at %d", i)
		}
		if res.Values[i] >= closes[i] {
			t.Fatalf("PSAR %f not below close %f at %d in pure uptrend", res.Values[i], closes[i], i)
		}
		if res.Trend[i] != 1 {
			t.Fatalf("expected trend +1 at %d, got %f", i, res.Trend[i])
		}
	}
}

func TestPSARTrendSignsAndFlips(t *testing.T) {
	t.Parallel()

	// Up for 20 bars, then sharply down for 20.
	highs, lows, closes := trendBars(20, 100, 1)
	h2, l2, c2 := trendBars(20, 119, -2)
	highs = append(highs, h2...)
	lows = append(lows, l2...)
	closes = append(closes, c2...)

	res := PSAR(highs, lows, closes, 0.02, 0.02, 0.20)

	flipCount := 0
	for i := 1; i < len(closes); i++ {
		if res.Trend[i] != 0 && res.Trend[i] != 1 && res.Trend[i] != -1 {
			t.Fatalf("trend sign out of domain at %d: %f", i, res.Trend[i])
		}
		wantFlip := res.Trend[i] != 0 && res.Trend[i-1] != 0 && res.Trend[i] != res.Trend[i-1]
		if res.Flips[i] != wantFlip {
			t.Fatalf("flip flag mismatch at %d", i)
		}
		if res.Flips[i] {
			flipCount++
		}
	}
	if flipCount == 0 {
		t.Fatal("expected at least one trend flip on the reversal")
	}
	if last := res.Trend[len(res.Trend)-1]; last != -1 {
		t.Fatalf("expected downtrend at the end, got %f", last)
	}
}

func TestPSARShortInput(t *testing.T) {
	t.Parallel()

	res := PSAR([]float64{1}, []float64{1}, []float64{1}, 0.02, 0.02, 0.20)
	if len(res.Values) != 1 || !math.IsNaN(res.Values[0]) {
		t.Fatalf("expected single NaN value, got %+v", res.Values)
	}
	if res.Trend[0] != 0 {
		t.Fatalf("expected zero trend for undefined bar, got %f", res.Trend[0])
	}
}

func TestPSARAccelerationCapped(t *testing.T) {
	t.Parallel()

	// A long one-way trend keeps producing new extremes; the stop must
	// keep chasing price without ever crossing it, even at max AF.
	highs, lows, closes := trendBars(200, 100, 2)
	res := PSAR(highs, lows, closes, 0.02, 0.02, 0.20)

	for i := 2; i < len(closes); i++ {
		if res.Values[i] > lows[i] {
			t.Fatalf("stop %f above low %f at %d", res.Values[i], lows[i], i)
		}
	}
}
