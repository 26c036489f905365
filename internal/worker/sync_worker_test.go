package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger/memory"
	"finanzas/internal/storage"
)

type failingAppender struct{ calls int }

func (f *failingAppender) Append(context.Context, core.Record) (string, error) {
	f.calls++
	return "", errors.New("sheets unavailable")
}

// blockingAppender holds its first append until release is closed.
type blockingAppender struct {
	sheet   *memory.Store
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAppender) Append(ctx context.Context, rec core.Record) (string, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
		<-b.release
	}
	return b.sheet.Append(ctx, rec)
}

func newRepo(t *testing.T, n int) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	for i := 0; i < n; i++ {
		_, err := repo.Append(context.Background(), core.Record{
			Date:        time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC),
			Type:        core.Expense,
			Amount:      int64(1000 * (i + 1)),
			Category:    "Comida",
			Method:      "Efectivo",
			Description: "Comida",
			Sender:      "whatsapp:+56911111111",
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return repo
}

func TestHandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, 1)
	sheet := memory.New()
	w := NewSyncWorker(repo, sheet, 10)

	msg := amqp.NewRecordSyncMessage(1, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sheet.Len() != 1 {
		t.Fatalf("expected 1 sheet row, got %d", sheet.Len())
	}
	rows, _ := sheet.ListAll(ctx)
	if rows[0][core.ColAmount] != "1000" || rows[0][core.ColDate] != "2025-03-01" {
		t.Fatalf("unexpected sheet row %v", rows[0])
	}
	if status, _ := repo.SyncStatus(ctx, 1); status != storage.SyncSynced {
		t.Fatalf("expected synced, got %q", status)
	}

	// Redelivery of an already synced record must not append twice.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if sheet.Len() != 1 {
		t.Fatalf("duplicate append: %d rows", sheet.Len())
	}
}

func TestHandleSyncMessageUnknownRecord(t *testing.T) {
	w := NewSyncWorker(newRepo(t, 0), memory.New(), 10)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage(42, 1)); err != nil {
		t.Fatalf("unknown record should be dropped, got %v", err)
	}
}

func TestHandleSyncMessageAppendFailure(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, 1)
	w := NewSyncWorker(repo, &failingAppender{}, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(1, 1)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if status, _ := repo.SyncStatus(ctx, 1); status != storage.SyncError {
		t.Fatalf("expected error status, got %q", status)
	}
}

func TestProcessPendingRecords(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, 3)
	sheet := memory.New()
	w := NewSyncWorker(repo, sheet, 2)

	if err := w.ProcessPendingRecords(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sheet.Len() != 2 {
		t.Fatalf("batch size not applied: %d rows", sheet.Len())
	}
	if err := w.ProcessPendingRecords(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sheet.Len() != 3 {
		t.Fatalf("expected all 3 rows synced, got %d", sheet.Len())
	}
	pending, _ := repo.GetPendingSyncRecords(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %+v", pending)
	}
}

func TestStartupSyncCheckRetriesErrors(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, 2)
	failing := &failingAppender{}

	if err := NewSyncWorker(repo, failing, 1).StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if failing.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", failing.calls)
	}

	sheet := memory.New()
	if err := NewSyncWorker(repo, sheet, 1).StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if sheet.Len() != 2 {
		t.Fatalf("records in error state should be retried, got %d rows", sheet.Len())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := newRepo(t, 1)
	sheet := memory.New()
	w := NewSyncWorker(repo, sheet, 10)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 10*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for sheet.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("periodic sweep never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSweepSkipsRecordBeingSyncedByHandler(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, 1)
	sheet := &blockingAppender{
		sheet:   memory.New(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := NewSyncWorker(repo, sheet, 10)

	done := make(chan error, 1)
	go func() { done <- w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(1, 1)) }()
	<-sheet.entered

	if err := w.ProcessPendingRecords(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(1, 1)); err != nil {
		t.Fatalf("concurrent redelivery: %v", err)
	}
	if n := sheet.calls.Load(); n != 1 {
		t.Fatalf("record appended %d times while claimed", n)
	}

	close(sheet.release)
	if err := <-done; err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sheet.sheet.Len() != 1 {
		t.Fatalf("expected 1 sheet row, got %d", sheet.sheet.Len())
	}
	if status, _ := repo.SyncStatus(ctx, 1); status != storage.SyncSynced {
		t.Fatalf("expected synced, got %q", status)
	}
}
