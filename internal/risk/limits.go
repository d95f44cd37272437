package risk

import (
	"fmt"
	"time"
)

// Limits is the immutable risk configuration. Build it once at startup
// via DefaultLimits and validate overrides with Validate; out-of-range
// values are rejected there instead of silently defaulted in the hot
// path.
type Limits struct {
	TakeProfit         float64       // exit gain fraction
	StopLoss           float64       // exit loss fraction
	TrailingTakeProfit float64       // gain fraction that arms the trailing stop
	TrailingStop       float64       // drawdown fraction from the peak
	PositionSize       float64       // per-trade risk fraction of portfolio
	MaxPositions       int           // concurrent open positions
	MaxDailyLoss       float64       // daily loss fraction tripping the breaker
	MaxDailyTrades     int           // new entries admitted per day
	SinglePositionCap  float64       // max fraction of portfolio in one name
	MinTicketValue     float64       // smallest notional worth opening
	BreakerCooldown    time.Duration // how long the breaker stays open
}

func DefaultLimits() Limits {
	return Limits{
		TakeProfit:         0.15,
		StopLoss:           0.08,
		TrailingTakeProfit: 0.09,
		TrailingStop:       0.03,
		PositionSize:       0.02,
		MaxPositions:       10,
		MaxDailyLoss:       0.05,
		MaxDailyTrades:     20,
		SinglePositionCap:  0.10,
		MinTicketValue:     1000,
		BreakerCooldown:    2 * time.Hour,
	}
}

func (l Limits) Validate() error {
	type fracCheck struct {
		name  string
		value float64
	}
	for _, c := range []fracCheck{
		{"take_profit", l.TakeProfit},
		{"stop_loss", l.StopLoss},
		{"trailing_take_profit", l.TrailingTakeProfit},
		{"trailing_stop", l.TrailingStop},
		{"position_size", l.PositionSize},
		{"max_daily_loss", l.MaxDailyLoss},
		{"single_position_cap", l.SinglePositionCap},
	} {
		if c.value <= 0 || c.value >= 1 {
			return fmt.Errorf("risk limit %s out of range (0,1): %f", c.name, c.value)
		}
	}
	if l.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive: %d", l.MaxPositions)
	}
	if l.MaxDailyTrades <= 0 {
		return fmt.Errorf("max_daily_trades must be positive: %d", l.MaxDailyTrades)
	}
	if l.MinTicketValue < 0 {
		return fmt.Errorf("min_ticket_value must not be negative: %f", l.MinTicketValue)
	}
	if l.BreakerCooldown <= 0 {
		return fmt.Errorf("breaker_cooldown must be positive: %s", l.BreakerCooldown)
	}
	return nil
}
