package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equity-sentry/internal/domain"
	"equity-sentry/internal/risk"
	"equity-sentry/internal/ta"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnorderedBars marks a bar sequence whose timestamps are not
// strictly ascending. Callers can distinguish it from an empty signal
// list with errors.Is.
var ErrUnorderedBars = errors.New("bar sequence not strictly ascending")

// ErrTickerMismatch marks a bar sequence carrying a different ticker
// than the one being analyzed.
var ErrTickerMismatch = errors.New("bar ticker mismatch")

var timeNow = time.Now

// Engine composes the indicator pass, signal generator, state store and
// risk manager for per-ticker analysis. It is the one entry point
// external callers use; Analyze is safe for concurrent use across
// tickers, and successive analyses of the same ticker serialize on the
// state store's lock.
type Engine struct {
	tracer trace.Tracer
	params Params
	gen    *Generator
	states *StateStore
	risk   *risk.Manager
}

func NewEngine(tracer trace.Tracer, params Params, riskMgr *risk.Manager) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("strategy params: %w", err)
	}
	return &Engine{
		tracer: tracer,
		params: params,
		gen:    NewGenerator(params),
		states: NewStateStore(),
		risk:   riskMgr,
	}, nil
}

func (e *Engine) Params() Params { return e.params }

func (e *Engine) RiskManager() *risk.Manager { return e.risk }

// Analyze enriches the bar sequence, evaluates the latest bar against
// the ticker's position state, and returns the risk-filtered signals.
// A malformed sequence yields an error; insufficient history yields an
// empty result as indicator coverage degrades.
func (e *Engine) Analyze(ctx context.Context, ticker string, bars []domain.Bar) ([]domain.TradingSignal, error) {
	_, span := e.tracer.Start(ctx, "strategy.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("bars", len(bars)))

	if len(bars) == 0 {
		return nil, nil
	}
	if err := validateBars(ticker, bars); err != nil {
		return nil, err
	}

	enriched := ta.EnrichAll(bars, e.params.taParams())
	last := enriched[len(enriched)-1]
	now := timeNow()

	var candidates []domain.TradingSignal
	e.states.with(ticker, func(st *domain.StrategyState) {
		touch(st, last.Close, now)
		candidates = e.gen.Evaluate(ticker, last, st, now)
	})

	filtered := e.risk.FilterSignals(ticker, candidates, e.states.Snapshot())
	if len(filtered) > 0 {
		latest := filtered[len(filtered)-1]
		e.states.with(ticker, func(st *domain.StrategyState) {
			st.LastSignalType = latest.Type
			st.LastSignalTime = now
		})
	}
	span.SetAttributes(attribute.Int("signals", len(filtered)))
	return filtered, nil
}

// SetPosition records an execution acknowledgement from the broker
// collaborator. The engine itself never transitions position state;
// deciding to trade and having traded stay decoupled.
func (e *Engine) SetPosition(ticker string, status domain.PositionStatus, entryPrice float64, entryTime time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid position status %q", status)
	}
	if status != domain.PositionNone && entryPrice <= 0 {
		return fmt.Errorf("entry price must be positive when opening a position: %f", entryPrice)
	}

	prior, _ := e.State(ticker)
	e.states.SetPosition(ticker, status, entryPrice, entryTime)

	// Only a transition into an open status counts against the daily
	// trade cap; re-acknowledging a held position is not a new trade.
	opened := (status == domain.PositionLong || status == domain.PositionShort) && prior.Status != status
	if opened {
		e.risk.RecordTrade(timeNow())
	}
	return nil
}

// State returns a copy of the ticker's strategy state. Unknown tickers
// report a flat record, not a zero value, so callers can compare the
// status against PositionNone without checking ok first.
func (e *Engine) State(ticker string) (domain.StrategyState, bool) {
	st, ok := e.states.Get(ticker)
	if !ok {
		return domain.StrategyState{Ticker: ticker, Status: domain.PositionNone}, false
	}
	return st, true
}

// Positions returns copies of every tracked state record.
func (e *Engine) Positions() map[string]*domain.StrategyState {
	return e.states.Snapshot()
}

// ActivePositions returns copies of the records holding a position.
func (e *Engine) ActivePositions() map[string]*domain.StrategyState {
	return e.states.ActivePositions()
}

func validateBars(ticker string, bars []domain.Bar) error {
	for i, b := range bars {
		if b.Ticker != "" && b.Ticker != ticker {
			return fmt.Errorf("%w: bar %d carries %q", ErrTickerMismatch, i, b.Ticker)
		}
		if i == 0 {
			continue
		}
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("%w: index %d (%s after %s)", ErrUnorderedBars, i,
				bars[i].Timestamp.Format(time.RFC3339), bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
