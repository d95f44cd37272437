package job

import (
	"context"
	"log"
	"sync"
	"time"

	"equity-sentry/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Scanner runs the watchlist scan on an interval, fanning tickers
// across a bounded worker pool so one slow feed call cannot stall the
// whole batch.
type Scanner struct {
	tracer       trace.Tracer
	signals      TickerScanner
	watchlist    []string
	scanInterval time.Duration
	workers      int
}

type TickerScanner interface {
	ScanTicker(ctx context.Context, ticker string) ([]domain.TradingSignal, error)
}

func NewScanner(tracer trace.Tracer, signals TickerScanner, watchlist []string, scanIntervalSecs, workers int) *Scanner {
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{
		tracer:       tracer,
		signals:      signals,
		watchlist:    watchlist,
		scanInterval: time.Duration(scanIntervalSecs) * time.Second,
		workers:      workers,
	}
}

// Start launches the scan loop. Blocks until ctx is cancelled.
func (s *Scanner) Start(ctx context.Context) {
	log.Printf("Scanner starting (%d tickers, %d workers, every %s)", len(s.watchlist), s.workers, s.scanInterval)

	// Run immediately on start
	s.scanBatch(ctx)

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scanner stopped")
			return
		case <-ticker.C:
			s.scanBatch(ctx)
		}
	}
}

func (s *Scanner) scanBatch(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "scanner.scan-batch")
	defer span.End()

	start := time.Now()
	tickers := make(chan string, len(s.watchlist))
	for _, t := range s.watchlist {
		tickers <- t
	}
	close(tickers)

	var (
		mu       sync.Mutex
		produced int
	)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tickers {
				if ctx.Err() != nil {
					return
				}
				signals, err := s.signals.ScanTicker(ctx, ticker)
				if err != nil {
					log.Printf("scan error for %s: %v", ticker, err)
					continue
				}
				mu.Lock()
				produced += len(signals)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	log.Printf("Scan batch complete: %d tickers, %d signals, %s", len(s.watchlist), produced, time.Since(start).Round(time.Millisecond))
}
