package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"equity-sentry/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const createSignalsTable = `
CREATE TABLE IF NOT EXISTS signals (
    id          BIGSERIAL   PRIMARY KEY,
    ticker      TEXT        NOT NULL,
    signal_time TIMESTAMPTZ NOT NULL,
    signal_type TEXT        NOT NULL,
    confidence  NUMERIC     NOT NULL,
    entry_price NUMERIC     NOT NULL,
    stop_loss   NUMERIC,
    take_profit NUMERIC,
    reason      TEXT        NOT NULL,
    metadata    JSONB,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_signals_ticker_time
    ON signals (ticker, signal_time DESC);

CREATE INDEX IF NOT EXISTS idx_signals_type_time
    ON signals (signal_type, signal_time DESC);
`

type SignalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSignalRepository(pool PgxPool, tracer trace.Tracer) *SignalRepository {
	return &SignalRepository{pool: pool, tracer: tracer}
}

func (r *SignalRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "signal-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSignalsTable)
	return err
}

// SaveSignal persists the signal and fills in its ID and CreatedAt.
func (r *SignalRepository) SaveSignal(ctx context.Context, sig *domain.TradingSignal) error {
	_, span := r.tracer.Start(ctx, "signal-repo.save-signal")
	defer span.End()

	var metadata []byte
	if len(sig.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(sig.Metadata)
		if err != nil {
			return fmt.Errorf("marshal signal metadata: %w", err)
		}
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO signals (ticker, signal_time, signal_type, confidence, entry_price, stop_loss, take_profit, reason, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		sig.Ticker, sig.Timestamp, string(sig.Type), sig.Confidence, sig.EntryPrice,
		sig.StopLoss, sig.TakeProfit, sig.Reason, metadata,
	).Scan(&sig.ID, &sig.CreatedAt)
}

// ListSignals applies the filter's optional clauses in insertion-order
// positional arguments and returns newest-first.
func (r *SignalRepository) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.TradingSignal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.list-signals")
	defer span.End()

	var (
		clauses []string
		args    []any
	)
	if filter.Ticker != "" {
		args = append(args, filter.Ticker)
		clauses = append(clauses, fmt.Sprintf("ticker = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		clauses = append(clauses, fmt.Sprintf("signal_type = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		clauses = append(clauses, fmt.Sprintf("signal_time >= $%d", len(args)))
	}

	query := `SELECT id, ticker, signal_time, signal_type, confidence, entry_price, stop_loss, take_profit, reason, metadata, created_at FROM signals`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY signal_time DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.TradingSignal
	for rows.Next() {
		var (
			sig      domain.TradingSignal
			sigType  string
			metadata []byte
		)
		if err := rows.Scan(&sig.ID, &sig.Ticker, &sig.Timestamp, &sigType, &sig.Confidence,
			&sig.EntryPrice, &sig.StopLoss, &sig.TakeProfit, &sig.Reason, &metadata, &sig.CreatedAt); err != nil {
			return nil, err
		}
		sig.Type = domain.SignalType(sigType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &sig.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal signal metadata: %w", err)
			}
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}
