package ta

import (
	"math"
	"testing"
)

func TestRSISeriesBounds(t *testing.T) {
	t.Parallel()

	closes := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1,
		45.9, 46.3, 46.8, 46.4, 46.2, 45.6, 46.2, 46.6, 46.8, 47.1}
	series := RSISeries(closes, 14)

	for i := 0; i < 14; i++ {
		if !math.IsNaN(series[i]) {
			t.Fatalf("expected NaN at warm-up index %d, got %f", i, series[i])
		}
	}
	for i := 14; i < len(series); i++ {
		if math.IsNaN(series[i]) {
			t.Fatalf("expected defined RSI at index %d", i)
		}
		if series[i] < 0 || series[i] > 100 {
			t.Fatalf("RSI out of range at index %d: %f", i, series[i])
		}
	}
}

func TestRSISeriesConstantPrices(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	series := RSISeries(closes, 14)
	for i := 14; i < len(series); i++ {
		if math.Abs(series[i]-50) > 1e-9 {
			t.Fatalf("expected RSI 50 on constant series at %d, got %f", i, series[i])
		}
	}
}

func TestRSISeriesShortInput(t *testing.T) {
	t.Parallel()

	series := RSISeries([]float64{1, 2, 3}, 14)
	if len(series) != 3 {
		t.Fatalf("expected aligned output length, got %d", len(series))
	}
	for i, v := range series {
		if !math.IsNaN(v) {
			t.Fatalf("expected NaN at %d for short input, got %f", i, v)
		}
	}
}

func TestClassifyRSI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rsi  float64
		want RSIState
	}{
		{85, RSIOverbought},
		{70, RSIOverbought},
		{25, RSIOversold},
		{30, RSIOversold},
		{60, RSITrendingUp},
		{40, RSITrendingDown},
		{50, RSINeutral},
		{math.NaN(), RSINeutral},
	}
	for _, tt := range tests {
		if got := ClassifyRSI(tt.rsi, 70, 30, 50); got != tt.want {
			t.Errorf("ClassifyRSI(%f) = %q, want %q", tt.rsi, got, tt.want)
		}
	}
}

func TestRSISignals(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i) // steadily rising
	}
	res := RSI(closes, 14, 70, 30, 50)
	last := res.Signals[len(res.Signals)-1]
	if last != -1 {
		t.Fatalf("expected overbought signal -1 on rising series, got %f", last)
	}
	if res.Metadata["period"] != 14 {
		t.Fatalf("expected period metadata, got %+v", res.Metadata)
	}
}

func TestSMASeries(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4, 5}
	out := SMASeries(values, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatal("expected NaN prefix before first full window")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(out[i+2]-w) > 1e-9 {
			t.Fatalf("SMA[%d] = %f, want %f", i+2, out[i+2], w)
		}
	}
}
