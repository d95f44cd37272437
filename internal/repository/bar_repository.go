package repository

import (
	"context"
	"time"

	"equity-sentry/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createBarsTable = `
CREATE TABLE IF NOT EXISTS bars (
    ticker      TEXT        NOT NULL,
    timeframe   TEXT        NOT NULL,
    bar_time    TIMESTAMPTZ NOT NULL,
    open        NUMERIC     NOT NULL,
    high        NUMERIC     NOT NULL,
    low         NUMERIC     NOT NULL,
    close       NUMERIC     NOT NULL,
    volume      NUMERIC     NOT NULL,
    PRIMARY KEY (ticker, timeframe, bar_time)
);

CREATE INDEX IF NOT EXISTS idx_bars_ticker_timeframe_time
    ON bars (ticker, timeframe, bar_time DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type BarRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewBarRepository(pool PgxPool, tracer trace.Tracer) *BarRepository {
	return &BarRepository{pool: pool, tracer: tracer}
}

func (r *BarRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "bar-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createBarsTable)
	return err
}

func (r *BarRepository) UpsertBars(ctx context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "bar-repo.upsert-bars")
	defer span.End()

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(
			`INSERT INTO bars (ticker, timeframe, bar_time, open, high, low, close, volume)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (ticker, timeframe, bar_time) DO UPDATE SET
			     open = EXCLUDED.open,
			     high = EXCLUDED.high,
			     low = EXCLUDED.low,
			     close = EXCLUDED.close,
			     volume = EXCLUDED.volume`,
			b.Ticker, b.Timeframe, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetBars returns the newest limit bars in ascending time order, the
// order the strategy engine consumes.
func (r *BarRepository) GetBars(ctx context.Context, ticker, timeframe string, limit int) ([]domain.Bar, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.get-bars")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ticker, timeframe, bar_time, open, high, low, close, volume
		 FROM bars
		 WHERE ticker = $1 AND timeframe = $2
		 ORDER BY bar_time DESC
		 LIMIT $3`,
		ticker, timeframe, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}

	// Reverse: DB returns newest-first, the indicator pass needs oldest-first
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (r *BarRepository) GetBarsInRange(ctx context.Context, ticker, timeframe string, from, to time.Time) ([]domain.Bar, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.get-bars-in-range")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ticker, timeframe, bar_time, open, high, low, close, volume
		 FROM bars
		 WHERE ticker = $1 AND timeframe = $2 AND bar_time >= $3 AND bar_time <= $4
		 ORDER BY bar_time ASC`,
		ticker, timeframe, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBars(rows)
}

// LatestBarTime returns the zero time when the ticker has no stored
// bars yet.
func (r *BarRepository) LatestBarTime(ctx context.Context, ticker, timeframe string) (time.Time, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.latest-bar-time")
	defer span.End()

	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(bar_time) FROM bars WHERE ticker = $1 AND timeframe = $2`,
		ticker, timeframe,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return latest.UTC(), nil
}

func scanBars(rows pgx.Rows) ([]domain.Bar, error) {
	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Ticker, &b.Timeframe, &b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
