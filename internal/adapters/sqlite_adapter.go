package adapters

import (
	"context"

	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/services"
)

var _ ledger.Store = (*SQLiteAdapter)(nil)

// SQLiteAdapter exposes the SQLite + AMQP pipeline as a ledger.Store so the
// interpreter works unchanged on top of it.
type SQLiteAdapter struct {
	service *services.RecordService
}

func NewSQLiteAdapter(service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{service: service}
}

// Append stores the record locally and queues it for the sheet.
func (a *SQLiteAdapter) Append(ctx context.Context, r core.Record) (string, error) {
	return a.service.CreateRecord(ctx, r)
}

// ListAll reads from SQLite, which holds every record including those not
// yet synced.
func (a *SQLiteAdapter) ListAll(ctx context.Context) ([]core.Row, error) {
	return a.service.ListAll(ctx)
}
