package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Trade is one executed order. PnL is set on closing trades only.
type Trade struct {
	ID         int64     `json:"id"`
	Ticker     string    `json:"ticker"`
	Side       string    `json:"side"`
	Quantity   int64     `json:"quantity"`
	Price      float64   `json:"price"`
	PnL        *float64  `json:"pnl,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

type TradeRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewTradeRepository(pool PgxPool, tracer trace.Tracer) *TradeRepository {
	return &TradeRepository{pool: pool, tracer: tracer}
}

func (r *TradeRepository) SaveTrade(ctx context.Context, t *Trade) error {
	_, span := r.tracer.Start(ctx, "trade-repo.save-trade")
	defer span.End()

	return r.pool.QueryRow(ctx,
		`INSERT INTO trades (ticker, side, quantity, price, pnl, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		t.Ticker, t.Side, t.Quantity, t.Price, t.PnL, t.ExecutedAt,
	).Scan(&t.ID)
}

// RealizedPnLOn sums the closing PnL booked on the given calendar day.
func (r *TradeRepository) RealizedPnLOn(ctx context.Context, day time.Time) (float64, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.realized-pnl-on")
	defer span.End()

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var pnl float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(pnl), 0) FROM trades WHERE executed_at >= $1 AND executed_at < $2`,
		start, end,
	).Scan(&pnl)
	return pnl, err
}

func (r *TradeRepository) RecentTrades(ctx context.Context, limit int) ([]Trade, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.recent-trades")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, ticker, side, quantity, price, pnl, executed_at
		 FROM trades
		 ORDER BY executed_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.ID, &t.Ticker, &t.Side, &t.Quantity, &t.Price, &t.PnL, &t.ExecutedAt); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
