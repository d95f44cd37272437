package strategy

import (
	"sync"
	"time"

	"equity-sentry/internal/domain"
)

// StateStore is the process-wide keyed store of per-ticker strategy
// states. Records are created lazily on first touch and never deleted;
// closing a position reverts its status to none instead. One mutex
// guards the map and every record, which serializes concurrent
// analyses that touch the same ticker.
type StateStore struct {
	mu     sync.Mutex
	states map[string]*domain.StrategyState
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]*domain.StrategyState)}
}

// with runs fn on the ticker's record under the store lock, creating
// the record first if the ticker is new.
func (s *StateStore) with(ticker string, fn func(*domain.StrategyState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[ticker]
	if !ok {
		st = &domain.StrategyState{Ticker: ticker, Status: domain.PositionNone}
		s.states[ticker] = st
	}
	fn(st)
}

// touch refreshes the record's price view and recomputes unrealized
// P&L while a position is open.
func touch(st *domain.StrategyState, price float64, now time.Time) {
	st.LastUpdate = now
	st.CurrentPrice = price
	if st.Status == domain.PositionLong && st.EntryPrice > 0 {
		st.UnrealizedPnL = (price - st.EntryPrice) / st.EntryPrice
	}
}

// SetPosition applies an execution acknowledgement: the only way a
// ticker's position status changes. Entering a position seeds the
// trailing-peak tracking from the entry price; leaving one clears
// every entry-related field.
func (s *StateStore) SetPosition(ticker string, status domain.PositionStatus, entryPrice float64, entryTime time.Time) {
	s.with(ticker, func(st *domain.StrategyState) {
		st.Status = status
		st.LastUpdate = time.Now()

		if status == domain.PositionLong || status == domain.PositionShort {
			st.EntryPrice = entryPrice
			if entryTime.IsZero() {
				entryTime = time.Now()
			}
			st.EntryDate = entryTime
			st.MaxPriceSinceEntry = entryPrice
			st.TrailingStopPrice = 0
			st.UnrealizedPnL = 0
			return
		}

		st.EntryPrice = 0
		st.EntryDate = time.Time{}
		st.UnrealizedPnL = 0
		st.MaxPriceSinceEntry = 0
		st.TrailingStopPrice = 0
	})
}

// Get returns a copy of the ticker's record.
func (s *StateStore) Get(ticker string) (domain.StrategyState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[ticker]
	if !ok {
		return domain.StrategyState{}, false
	}
	return *st, true
}

// Snapshot returns a copy of every record, keyed by ticker.
func (s *StateStore) Snapshot() map[string]*domain.StrategyState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.StrategyState, len(s.states))
	for ticker, st := range s.states {
		copied := *st
		out[ticker] = &copied
	}
	return out
}

// ActivePositions returns copies of the records currently holding a
// position.
func (s *StateStore) ActivePositions() map[string]*domain.StrategyState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.StrategyState)
	for ticker, st := range s.states {
		if st.Status == domain.PositionNone {
			continue
		}
		copied := *st
		out[ticker] = &copied
	}
	return out
}
