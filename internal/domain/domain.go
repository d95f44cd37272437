package domain

import "time"

type SignalType string

const (
	SignalBuy         SignalType = "buy"
	SignalSell        SignalType = "sell"
	SignalRiskWarning SignalType = "risk_warning"
)

func (s SignalType) IsValid() bool {
	return s == SignalBuy || s == SignalSell || s == SignalRiskWarning
}

// TradingSignal is one actionable alert produced by the strategy engine.
// The engine fills every field except ID and CreatedAt, which the signal
// repository stamps on insert. Consumers must treat a signal as read-only.
type TradingSignal struct {
	ID         int64              `json:"id,omitempty"`
	Ticker     string             `json:"ticker"`
	Timestamp  time.Time          `json:"timestamp"`
	Type       SignalType         `json:"signal_type"`
	Confidence float64            `json:"confidence"`
	EntryPrice float64            `json:"entry_price"`
	StopLoss   *float64           `json:"stop_loss,omitempty"`
	TakeProfit *float64           `json:"take_profit,omitempty"`
	Reason     string             `json:"reason"`
	Metadata   map[string]float64 `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"created_at,omitempty"`
}

type SignalFilter struct {
	Ticker string
	Type   SignalType
	Since  time.Time
	Limit  int
}

type PositionStatus string

const (
	PositionNone  PositionStatus = "none"
	PositionLong  PositionStatus = "long"
	PositionShort PositionStatus = "short"
)

func (p PositionStatus) IsValid() bool {
	return p == PositionNone || p == PositionLong || p == PositionShort
}

// StrategyState is the per-ticker position lifecycle record. EntryPrice and
// EntryDate are meaningful only while Status != PositionNone;
// MaxPriceSinceEntry never decreases while a long position is open.
type StrategyState struct {
	Ticker             string         `json:"ticker"`
	LastUpdate         time.Time      `json:"last_update"`
	CurrentPrice       float64        `json:"current_price"`
	Status             PositionStatus `json:"position_status"`
	EntryPrice         float64        `json:"entry_price,omitempty"`
	EntryDate          time.Time      `json:"entry_date,omitempty"`
	UnrealizedPnL      float64        `json:"unrealized_pnl"`
	MaxPriceSinceEntry float64        `json:"max_price_since_entry,omitempty"`
	TrailingStopPrice  float64        `json:"trailing_stop_price,omitempty"`
	LastSignalType     SignalType     `json:"last_signal_type,omitempty"`
	LastSignalTime     time.Time      `json:"last_signal_time,omitempty"`
}

// RiskMetrics is a derived portfolio snapshot, recomputed on demand and
// never persisted.
type RiskMetrics struct {
	PortfolioValue       float64 `json:"portfolio_value"`
	TotalExposure        float64 `json:"total_exposure"`
	DailyPnL             float64 `json:"daily_pnl"`
	DailyDrawdown        float64 `json:"daily_drawdown"`
	ActivePositionsCount int     `json:"active_positions_count"`
	RiskLimitUsage       float64 `json:"risk_limit_usage"`
	MaxPositionSize      float64 `json:"max_position_size"`
	DiversificationScore float64 `json:"diversification_score"`
}

type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}
