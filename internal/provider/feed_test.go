package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestFeedProvider(handler roundTripFunc) *FeedProvider {
	p := NewFeedProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	p.client = &http.Client{Transport: handler}
	p.limiter = NewRateLimiter(10, time.Millisecond)
	return p
}

func TestFeedProviderFetchBars(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 3, 2, 0, 0, 0, time.UTC)
	p := newTestFeedProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/history") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("symbol") != "VNM" {
			t.Fatalf("unexpected symbol: %s", q.Get("symbol"))
		}
		if q.Get("resolution") != "1D" {
			t.Fatalf("unexpected resolution: %s", q.Get("resolution"))
		}
		resp := historyResponse{
			Status:  "ok",
			Times:   []int64{base.Unix(), base.AddDate(0, 0, 1).Unix()},
			Opens:   []float64{60_000, 60_500},
			Highs:   []float64{61_000, 61_200},
			Lows:    []float64{59_500, 60_100},
			Closes:  []float64{60_500, 61_000},
			Volumes: []float64{1_200_000, 950_000},
		}
		data, _ := json.Marshal(resp)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
		}, nil
	})

	bars, err := p.FetchBars(context.Background(), "VNM", "1d", base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	first := bars[0]
	if first.Ticker != "VNM" || first.Timeframe != "1d" {
		t.Fatalf("unexpected bar identity: %+v", first)
	}
	if !first.Timestamp.Equal(base) {
		t.Fatalf("unexpected timestamp: %v", first.Timestamp)
	}
	if first.Open != 60_000 || first.High != 61_000 || first.Low != 59_500 || first.Close != 60_500 {
		t.Fatalf("unexpected OHLC: %+v", first)
	}
	if first.Volume != 1_200_000 {
		t.Fatalf("unexpected volume: %f", first.Volume)
	}
}

func TestFeedProviderNoData(t *testing.T) {
	t.Parallel()

	p := newTestFeedProvider(func(req *http.Request) (*http.Response, error) {
		data, _ := json.Marshal(historyResponse{Status: "no_data"})
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
		}, nil
	})

	bars, err := p.FetchBars(context.Background(), "VNM", "1d", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bars != nil {
		t.Fatalf("expected no bars, got %v", bars)
	}
}

func TestFeedProviderRaggedColumns(t *testing.T) {
	t.Parallel()

	p := newTestFeedProvider(func(req *http.Request) (*http.Response, error) {
		resp := historyResponse{
			Status:  "ok",
			Times:   []int64{1, 2},
			Opens:   []float64{1},
			Highs:   []float64{1, 2},
			Lows:    []float64{1, 2},
			Closes:  []float64{1, 2},
			Volumes: []float64{1, 2},
		}
		data, _ := json.Marshal(resp)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := p.FetchBars(context.Background(), "VNM", "1d", time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected an error for ragged columns")
	}
}

func TestFeedProviderUnsupportedTimeframe(t *testing.T) {
	t.Parallel()

	p := newTestFeedProvider(func(req *http.Request) (*http.Response, error) {
		t.Fatal("request should not be made")
		return nil, nil
	})

	if _, err := p.FetchBars(context.Background(), "VNM", "4h", time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected an error for an unsupported timeframe")
	}
}

func TestFeedProviderAPIError(t *testing.T) {
	t.Parallel()

	p := newTestFeedProvider(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader("slow down")),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := p.FetchBars(context.Background(), "VNM", "1d", time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
