package service

import (
	"context"
	"time"

	"github.com/msto63/euklid/internal/euklid/store"
)

// History returns recorded calculations matching filter, newest first
func (s *Service) History(ctx context.Context, filter store.Filter) ([]*store.Record, error) {
	if s.history == nil {
		return nil, historyDisabled("history")
	}
	return s.history.Query(ctx, filter)
}

// HistoryEntry returns one recorded calculation
func (s *Service) HistoryEntry(ctx context.Context, id string) (*store.Record, error) {
	if s.history == nil {
		return nil, historyDisabled("history_entry")
	}
	return s.history.Get(ctx, id)
}

// HistoryStats summarizes the recorded calculations
func (s *Service) HistoryStats(ctx context.Context) (*store.Stats, error) {
	if s.history == nil {
		return nil, historyDisabled("history_stats")
	}
	return s.history.Stats(ctx)
}

// Retention bounds the stored history. Zero fields keep everything.
type Retention struct {
	MaxAge     time.Duration
	MaxEntries int
}

// PruneHistory drops records older than r.MaxAge and then all but the
// newest r.MaxEntries. It returns the number of records removed.
func (s *Service) PruneHistory(ctx context.Context, r Retention) (int64, error) {
	if s.history == nil {
		return 0, historyDisabled("prune_history")
	}

	var removed int64
	if r.MaxAge > 0 {
		n, err := s.history.Prune(ctx, r.MaxAge)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if r.MaxEntries > 0 {
		n, err := s.history.Trim(ctx, r.MaxEntries)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if removed > 0 {
		s.logger.Info("History pruned", "removed", removed)
	}
	return removed, nil
}

// RunRetention prunes the history every interval until ctx is done
func (s *Service) RunRetention(ctx context.Context, r Retention, interval time.Duration) {
	if s.history == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.PruneHistory(ctx, r); err != nil {
			s.logger.Warn("History pruning failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PingHistory checks that the history store is reachable. Stores without a
// connection to check always succeed.
func (s *Service) PingHistory(ctx context.Context) error {
	if s.history == nil {
		return historyDisabled("ping_history")
	}
	if p, ok := s.history.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// VacuumHistory compacts the history store when it supports compaction
func (s *Service) VacuumHistory(ctx context.Context) error {
	if s.history == nil {
		return historyDisabled("vacuum_history")
	}
	if v, ok := s.history.(interface{ Vacuum(context.Context) error }); ok {
		return v.Vacuum(ctx)
	}
	return nil
}
