// Package cached wraps a ledger store with a short-lived snapshot of its
// rows, so back-to-back queries do not each read the whole sheet.
package cached

import (
	"context"
	"log/slog"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
)

const snapshotKey = "rows"

var _ ledger.Store = (*Store)(nil)

// Store serves ListAll from a snapshot younger than ttl. Appends through
// the store drop the snapshot; rows written elsewhere show up once it
// expires.
type Store struct {
	inner    ledger.Store
	snapshot *cache.LRU[[]core.Row]
}

func New(inner ledger.Store, ttl time.Duration) *Store {
	return &Store{
		inner:    inner,
		snapshot: cache.New[[]core.Row](1, ttl),
	}
}

func (s *Store) Append(ctx context.Context, r core.Record) (string, error) {
	ref, err := s.inner.Append(ctx, r)
	// A failed append may still have landed.
	s.snapshot.Delete(snapshotKey)
	return ref, err
}

func (s *Store) ListAll(ctx context.Context) ([]core.Row, error) {
	if rows, ok := s.snapshot.Get(snapshotKey); ok {
		slog.DebugContext(ctx, "Ledger snapshot hit", "rows", len(rows))
		return rows, nil
	}
	rows, err := s.inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot.Set(snapshotKey, rows)
	return rows, nil
}
