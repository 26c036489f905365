package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/storage"
)

// RecordStore is the subset of the SQLite repository the worker needs.
type RecordStore interface {
	GetRecord(ctx context.Context, id int64) (core.Record, error)
	GetPendingSyncRecords(ctx context.Context, limit int) ([]storage.PendingSyncRecord, error)
	ClaimForSync(ctx context.Context, id int64) (bool, error)
	SyncStatus(ctx context.Context, id int64) (string, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

var _ RecordStore = (*storage.SQLiteRepository)(nil)

// SyncWorker copies records from SQLite to the sheet ledger.
type SyncWorker struct {
	storage   RecordStore
	sheets    ledger.Appender
	batchSize int
}

func NewSyncWorker(storage RecordStore, sheets ledger.Appender, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
// Only the holder of the record's sync claim appends it; records that are
// synced or being synced elsewhere are acknowledged without appending.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	claimed, err := w.storage.ClaimForSync(ctx, msg.ID)
	if err != nil {
		return err
	}
	if !claimed {
		status, err := w.storage.SyncStatus(ctx, msg.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Redelivery cannot help a record that does not exist.
			slog.WarnContext(ctx, "Record not found, dropping sync message", "id", msg.ID)
			return nil
		case err != nil:
			return fmt.Errorf("get sync status: %w", err)
		case status == storage.SyncSynced:
			slog.InfoContext(ctx, "Record already synced, skipping", "id", msg.ID)
		default:
			slog.InfoContext(ctx, "Record is being synced elsewhere, skipping", "id", msg.ID)
		}
		return nil
	}

	rec, err := w.storage.GetRecord(ctx, msg.ID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, msg.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", msg.ID, "error", markErr)
		}
		return fmt.Errorf("get record from storage: %w", err)
	}

	if err := w.syncRecordToSheets(ctx, msg.ID, rec); err != nil {
		return fmt.Errorf("sync record to sheets: %w", err)
	}
	return nil
}

// ProcessPendingRecords syncs one batch of pending records. It covers
// messages lost between the write and the publish.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if synced+failed > 0 {
		slog.InfoContext(ctx, "Processed pending records", "synced", synced, "errors", failed)
	}
	return nil
}

// StartupSyncCheck drains a larger batch once when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"total", synced+failed,
		"synced", synced,
		"errors", failed)
	return nil
}

// Run sweeps pending records every interval until ctx ends.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingRecords(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.storage.GetPendingSyncRecords(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending records: %w", err)
	}

	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		claimed, err := w.storage.ClaimForSync(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to claim record", "id", p.ID, "error", err)
			failed++
			continue
		}
		if !claimed {
			slog.DebugContext(ctx, "Record claimed elsewhere, skipping", "id", p.ID)
			continue
		}
		rec, err := w.storage.GetRecord(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get record", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			failed++
			continue
		}
		if err := w.syncRecordToSheets(ctx, p.ID, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *SyncWorker) syncRecordToSheets(ctx context.Context, id int64, rec core.Record) error {
	ref, err := w.sheets.Append(ctx, rec)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The row is in the sheet; a failed status update only means it may be
	// appended again on the next sweep.
	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"id", id,
		"sheets_ref", ref,
		"type", rec.Type,
		"amount", rec.Amount)
	return nil
}
