package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"equity-sentry/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// FeedProvider fetches OHLCV history from a TradingView-style chart
// API, the shape the HOSE data vendors serve.
type FeedProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewFeedProvider creates a provider with built-in rate limiting.
// Rate limited to 30 requests per minute (one token every 2 seconds).
func NewFeedProvider(tracer trace.Tracer, baseURL string) *FeedProvider {
	return &FeedProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(30, 2*time.Second),
	}
}

// feedResolution maps internal timeframe names onto the chart API's
// resolution parameter.
var feedResolution = map[string]string{
	"15m": "15",
	"1h":  "60",
	"1d":  "1D",
}

type historyResponse struct {
	Status  string    `json:"s"`
	Times   []int64   `json:"t"`
	Opens   []float64 `json:"o"`
	Highs   []float64 `json:"h"`
	Lows    []float64 `json:"l"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
}

// FetchBars fetches the ticker's bars for [from, to] in ascending time
// order. An empty window returns no bars and no error; the chart API
// reports that with status "no_data".
func (p *FeedProvider) FetchBars(ctx context.Context, ticker, timeframe string, from, to time.Time) ([]domain.Bar, error) {
	_, span := p.tracer.Start(ctx, "feed.fetch-bars")
	defer span.End()

	resolution, ok := feedResolution[timeframe]
	if !ok {
		return nil, fmt.Errorf("unsupported timeframe: %s", timeframe)
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("resolution", resolution)
	q.Set("from", fmt.Sprintf("%d", from.Unix()))
	q.Set("to", fmt.Sprintf("%d", to.Unix()))

	body, err := p.doRequest(ctx, p.baseURL+"/history?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", ticker, err)
	}

	var raw historyResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse bars for %s: %w", ticker, err)
	}
	if raw.Status == "no_data" {
		return nil, nil
	}
	if raw.Status != "ok" {
		return nil, fmt.Errorf("feed status %q for %s", raw.Status, ticker)
	}

	n := len(raw.Times)
	if len(raw.Opens) != n || len(raw.Highs) != n || len(raw.Lows) != n || len(raw.Closes) != n || len(raw.Volumes) != n {
		return nil, fmt.Errorf("feed returned ragged columns for %s", ticker)
	}

	bars := make([]domain.Bar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, domain.Bar{
			Ticker:    ticker,
			Timeframe: timeframe,
			Timestamp: time.Unix(raw.Times[i], 0).UTC(),
			Open:      raw.Opens[i],
			High:      raw.Highs[i],
			Low:       raw.Lows[i],
			Close:     raw.Closes[i],
			Volume:    raw.Volumes[i],
		})
	}
	return bars, nil
}

func (p *FeedProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed API error %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
