package domain

import "time"

// Bar represents a single OHLCV bar for a ticker at a given timeframe.
type Bar struct {
	Ticker    string    `json:"ticker"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Watchlist lists the HOSE tickers the scanner sweeps by default.
var Watchlist = []string{
	"VNM", "VIC", "HPG", "FPT", "MWG",
	"VCB", "TCB", "SSI", "GAS", "MSN",
}

// SupportedTimeframes defines the bar timeframes we store.
var SupportedTimeframes = []string{"15m", "1h", "1d"}

// DefaultTimeframe is the timeframe the scanner analyzes.
const DefaultTimeframe = "1d"

func IsWatched(ticker string) bool {
	for _, t := range Watchlist {
		if t == ticker {
			return true
		}
	}
	return false
}

func IsSupportedTimeframe(tf string) bool {
	for _, t := range SupportedTimeframes {
		if t == tf {
			return true
		}
	}
	return false
}
