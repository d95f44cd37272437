package strategy

import (
	"testing"
	"time"

	"equity-sentry/internal/domain"
)

func TestStateStoreLazyCreation(t *testing.T) {
	t.Parallel()
	s := NewStateStore()

	if _, ok := s.Get("VNM"); ok {
		t.Fatal("expected no record before first touch")
	}
	s.with("VNM", func(st *domain.StrategyState) {
		touch(st, 50_000, time.Now())
	})
	st, ok := s.Get("VNM")
	if !ok {
		t.Fatal("expected a record after touch")
	}
	if st.Status != domain.PositionNone {
		t.Errorf("status = %s, want none", st.Status)
	}
	if st.CurrentPrice != 50_000 {
		t.Errorf("current price = %f, want 50000", st.CurrentPrice)
	}
}

func TestStateStoreSetPosition(t *testing.T) {
	t.Parallel()
	s := NewStateStore()
	entryTime := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

	s.SetPosition("HPG", domain.PositionLong, 28_000, entryTime)
	st, _ := s.Get("HPG")
	if st.Status != domain.PositionLong {
		t.Fatalf("status = %s, want long", st.Status)
	}
	if st.EntryPrice != 28_000 || !st.EntryDate.Equal(entryTime) {
		t.Errorf("entry = %f @ %s", st.EntryPrice, st.EntryDate)
	}
	if st.MaxPriceSinceEntry != 28_000 {
		t.Errorf("max price seeded to %f, want entry price", st.MaxPriceSinceEntry)
	}

	s.with("HPG", func(rec *domain.StrategyState) {
		touch(rec, 30_800, time.Now())
	})
	st, _ = s.Get("HPG")
	if st.UnrealizedPnL < 0.099 || st.UnrealizedPnL > 0.101 {
		t.Errorf("unrealized pnl = %f, want ~0.10", st.UnrealizedPnL)
	}

	s.SetPosition("HPG", domain.PositionNone, 0, time.Time{})
	st, _ = s.Get("HPG")
	if st.Status != domain.PositionNone {
		t.Errorf("status = %s after close, want none", st.Status)
	}
	if st.EntryPrice != 0 || st.MaxPriceSinceEntry != 0 || st.TrailingStopPrice != 0 {
		t.Errorf("entry fields not cleared: %+v", st)
	}
}

func TestStateStoreSnapshotCopies(t *testing.T) {
	t.Parallel()
	s := NewStateStore()
	s.SetPosition("VNM", domain.PositionLong, 60_000, time.Now())

	snap := s.Snapshot()
	snap["VNM"].EntryPrice = 1

	st, _ := s.Get("VNM")
	if st.EntryPrice != 60_000 {
		t.Errorf("snapshot mutation leaked into the store: %f", st.EntryPrice)
	}
}

func TestStateStoreActivePositions(t *testing.T) {
	t.Parallel()
	s := NewStateStore()
	s.SetPosition("VNM", domain.PositionLong, 60_000, time.Now())
	s.with("FPT", func(st *domain.StrategyState) {
		touch(st, 90_000, time.Now())
	})

	active := s.ActivePositions()
	if len(active) != 1 {
		t.Fatalf("active positions = %d, want 1", len(active))
	}
	if _, ok := active["VNM"]; !ok {
		t.Error("expected VNM in active positions")
	}
}
