package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"equity-sentry/internal/domain"
	"equity-sentry/internal/repository"
	"equity-sentry/internal/strategy"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	signalCacheTTL = 10 * time.Minute
	// historyDepth is how many stored bars feed one analysis pass,
	// enough for every indicator to warm up with headroom.
	historyDepth = 120
)

// backfillWindow is how far back the first fetch reaches when a ticker
// has no stored bars yet.
var backfillWindow = map[string]time.Duration{
	"15m": 7 * 24 * time.Hour,
	"1h":  30 * 24 * time.Hour,
	"1d":  365 * 24 * time.Hour,
}

type BarProvider interface {
	FetchBars(ctx context.Context, ticker, timeframe string, from, to time.Time) ([]domain.Bar, error)
}

type BarRepository interface {
	UpsertBars(ctx context.Context, bars []domain.Bar) error
	GetBars(ctx context.Context, ticker, timeframe string, limit int) ([]domain.Bar, error)
	LatestBarTime(ctx context.Context, ticker, timeframe string) (time.Time, error)
}

type SignalRepository interface {
	SaveSignal(ctx context.Context, sig *domain.TradingSignal) error
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.TradingSignal, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Notifier pushes a signal to an outbound channel. Delivery failures
// are logged, never propagated; a dropped notification must not fail
// the scan that produced it.
type Notifier interface {
	NotifySignal(ctx context.Context, sig domain.TradingSignal) error
}

// TradeRecorder books executed orders and reports the day's realized
// P&L, which feeds the daily loss breaker.
type TradeRecorder interface {
	SaveTrade(ctx context.Context, t *repository.Trade) error
	RealizedPnLOn(ctx context.Context, day time.Time) (float64, error)
}

// SignalService orchestrates one ticker's scan cycle: ingest fresh
// bars, run the strategy engine over the stored history, persist and
// cache whatever signals come out, and fan them out to notifiers.
type SignalService struct {
	tracer     trace.Tracer
	provider   BarProvider
	bars       BarRepository
	signals    SignalRepository
	trades     TradeRecorder
	engine     *strategy.Engine
	redis      RedisClient
	notifier   Notifier
	timeframe  string
	portfolioV float64
}

func NewSignalService(
	tracer trace.Tracer,
	provider BarProvider,
	bars BarRepository,
	signals SignalRepository,
	trades TradeRecorder,
	engine *strategy.Engine,
	redisClient RedisClient,
	notifier Notifier,
	timeframe string,
	portfolioValue float64,
) *SignalService {
	return &SignalService{
		tracer:     tracer,
		provider:   provider,
		bars:       bars,
		signals:    signals,
		trades:     trades,
		engine:     engine,
		redis:      redisClient,
		notifier:   notifier,
		timeframe:  timeframe,
		portfolioV: portfolioValue,
	}
}

// ScanTicker runs one full scan cycle for the ticker and returns the
// signals it produced.
func (s *SignalService) ScanTicker(ctx context.Context, ticker string) ([]domain.TradingSignal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.scan-ticker")
	defer span.End()

	if err := s.RefreshBars(ctx, ticker); err != nil {
		return nil, fmt.Errorf("refresh bars for %s: %w", ticker, err)
	}

	history, err := s.bars.GetBars(ctx, ticker, s.timeframe, historyDepth)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", ticker, err)
	}
	if len(history) == 0 {
		return nil, nil
	}

	signals, err := s.engine.Analyze(ctx, ticker, history)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", ticker, err)
	}

	for i := range signals {
		if err := s.signals.SaveSignal(ctx, &signals[i]); err != nil {
			return nil, fmt.Errorf("save signal for %s: %w", ticker, err)
		}
	}

	if len(signals) > 0 {
		if s.redis != nil {
			if err := s.cacheSignals(ctx, ticker, signals); err != nil {
				log.Printf("redis cache write error for %s: %v", ticker, err)
			}
		}
		if s.notifier != nil {
			for _, sig := range signals {
				if err := s.notifier.NotifySignal(ctx, sig); err != nil {
					log.Printf("notify %s signal for %s: %v", sig.Type, ticker, err)
				}
			}
		}
	}
	return signals, nil
}

// RefreshBars fetches whatever bars the feed has published since the
// last stored one and upserts them.
func (s *SignalService) RefreshBars(ctx context.Context, ticker string) error {
	_, span := s.tracer.Start(ctx, "signal-service.refresh-bars")
	defer span.End()

	latest, err := s.bars.LatestBarTime(ctx, ticker, s.timeframe)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	from := latest
	if from.IsZero() {
		window, ok := backfillWindow[s.timeframe]
		if !ok {
			return fmt.Errorf("unsupported timeframe: %s", s.timeframe)
		}
		from = now.Add(-window)
	}

	fresh, err := s.provider.FetchBars(ctx, ticker, s.timeframe, from, now)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := s.bars.UpsertBars(ctx, fresh); err != nil {
		return fmt.Errorf("upsert bars: %w", err)
	}
	log.Printf("Refreshed bars for %s (%d bars)", ticker, len(fresh))
	return nil
}

// GetSignals returns stored signals matching the filter, newest first.
func (s *SignalService) GetSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.TradingSignal, error) {
	return s.signals.ListSignals(ctx, filter)
}

// LatestSignals returns the ticker's most recent scan output from the
// cache, falling back to the signal store when the cache is cold.
func (s *SignalService) LatestSignals(ctx context.Context, ticker string) ([]domain.TradingSignal, error) {
	_, span := s.tracer.Start(ctx, "signal-service.latest-signals")
	defer span.End()

	if s.redis != nil {
		data, err := s.redis.Get(ctx, signalCacheKey(ticker)).Bytes()
		if err == nil {
			var cached []domain.TradingSignal
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			log.Printf("redis cache read error for %s: %v", ticker, err)
		}
	}
	return s.signals.ListSignals(ctx, domain.SignalFilter{Ticker: ticker, Limit: 5})
}

// GetBars returns the ticker's stored history in ascending time order.
func (s *SignalService) GetBars(ctx context.Context, ticker string, limit int) ([]domain.Bar, error) {
	return s.bars.GetBars(ctx, ticker, s.timeframe, limit)
}

// Positions returns every tracked per-ticker strategy state.
func (s *SignalService) Positions() map[string]*domain.StrategyState {
	return s.engine.Positions()
}

// SetPosition forwards an execution acknowledgement to the engine and
// books the matching ledger entry. Closing a position realizes its P&L
// against the daily loss limit.
func (s *SignalService) SetPosition(ctx context.Context, ticker string, status domain.PositionStatus, entryPrice float64, entryTime time.Time) error {
	prior, _ := s.engine.State(ticker)

	if err := s.engine.SetPosition(ticker, status, entryPrice, entryTime); err != nil {
		return err
	}
	if s.trades == nil {
		return nil
	}

	mgr := s.engine.RiskManager()
	stop := 1 - mgr.Limits().StopLoss

	switch {
	case status != domain.PositionNone && prior.Status == domain.PositionNone:
		qty := mgr.PositionSize(entryPrice, entryPrice*stop, s.portfolioV)
		trade := &repository.Trade{
			Ticker:     ticker,
			Side:       "buy",
			Quantity:   int64(qty),
			Price:      entryPrice,
			ExecutedAt: entryTime,
		}
		if err := s.trades.SaveTrade(ctx, trade); err != nil {
			log.Printf("Failed to record buy for %s: %v", ticker, err)
		}
	case status == domain.PositionNone && prior.Status != domain.PositionNone:
		exit := prior.CurrentPrice
		if exit == 0 {
			exit = prior.EntryPrice
		}
		qty := mgr.PositionSize(prior.EntryPrice, prior.EntryPrice*stop, s.portfolioV)
		pnl := (exit - prior.EntryPrice) * float64(qty)
		trade := &repository.Trade{
			Ticker:     ticker,
			Side:       "sell",
			Quantity:   int64(qty),
			Price:      exit,
			PnL:        &pnl,
			ExecutedAt: entryTime,
		}
		if err := s.trades.SaveTrade(ctx, trade); err != nil {
			log.Printf("Failed to record sell for %s: %v", ticker, err)
		}

		dayPnL, err := s.trades.RealizedPnLOn(ctx, entryTime)
		if err != nil {
			log.Printf("Failed to load realized P&L for %s: %v", entryTime.Format("2006-01-02"), err)
			return nil
		}
		mgr.UpdateDailyPnL(entryTime, dayPnL)
		mgr.CheckDailyLoss(dayPnL, s.portfolioV)
	}
	return nil
}

// RiskReport computes the current portfolio risk snapshot and its
// warnings from the engine's live position set.
func (s *SignalService) RiskReport() (domain.RiskMetrics, []string) {
	mgr := s.engine.RiskManager()
	metrics := mgr.Metrics(s.engine.ActivePositions(), s.portfolioV)
	return metrics, mgr.Warnings(metrics)
}

func (s *SignalService) cacheSignals(ctx context.Context, ticker string, signals []domain.TradingSignal) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, signalCacheKey(ticker), data, signalCacheTTL).Err()
}

func signalCacheKey(ticker string) string {
	return "signals:latest:" + ticker
}
