package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states of a stored record.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// ClaimLease bounds how long a sync claim blocks other workers. A worker
// that dies mid-sync leaves its record claimable again after the lease.
const ClaimLease = 5 * time.Minute

// claimLayout sorts lexically in time order.
const claimLayout = "2006-01-02T15:04:05.000000Z"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// PendingSyncRecord represents minimal data needed for sync queue messages
type PendingSyncRecord struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append stores the record as pending sync and returns its id.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (date, type, amount, category, method, description, sender)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.DateString(), string(rec.Type), rec.Amount, rec.Category, rec.Method, rec.Description, rec.Sender)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"type", rec.Type,
		"amount", rec.Amount,
		"category", rec.Category,
		"date", rec.DateString())

	return strconv.FormatInt(id, 10), nil
}

// ListAll returns every record as a ledger row, in insertion order.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Row, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, type, amount, category, method, description, sender
		 FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.Row
	for rows.Next() {
		var (
			date, typ, category, method, description, sender string
			amount                                           int64
		)
		if err := rows.Scan(&date, &typ, &amount, &category, &method, &description, &sender); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, core.Row{
			core.ColDate:        date,
			core.ColType:        typ,
			core.ColAmount:      strconv.FormatInt(amount, 10),
			core.ColCategory:    category,
			core.ColMethod:      method,
			core.ColDescription: description,
			core.ColSender:      sender,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// GetRecord retrieves a single record by id. A missing id wraps sql.ErrNoRows.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	var (
		rec  core.Record
		date string
		typ  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT date, type, amount, category, method, description, sender
		 FROM records WHERE id = ?`, id).
		Scan(&date, &typ, &rec.Amount, &rec.Category, &rec.Method, &rec.Description, &rec.Sender)
	if err != nil {
		return core.Record{}, fmt.Errorf("get record by id %d: %w", id, err)
	}
	rec.Type = core.TxType(typ)
	if rec.Date, err = time.Parse(core.DateLayout, date); err != nil {
		return core.Record{}, fmt.Errorf("record %d date %q: %w", id, date, core.ErrInvalidDate)
	}
	return rec, nil
}

// GetPendingSyncRecords returns records that still need to reach the sheet.
func (r *SQLiteRepository) GetPendingSyncRecords(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, strftime('%Y-%m-%dT%H:%M:%SZ', created_at) FROM records
		 WHERE sync_status IN (?, ?) ORDER BY id LIMIT ?`,
		SyncPending, SyncError, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncRecord
	for rows.Next() {
		var (
			p         PendingSyncRecord
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced marks a record as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, SyncSynced); err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a record as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, SyncError); err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

// ClaimForSync marks a pending or failed record as being synced by the
// caller. It reports false when the record is unknown, already synced or
// claimed by someone else within ClaimLease. The claim is released by
// MarkSynced or MarkSyncError.
func (r *SQLiteRepository) ClaimForSync(ctx context.Context, id int64) (bool, error) {
	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET claimed_at = ?
		 WHERE id = ? AND sync_status IN (?, ?) AND (claimed_at IS NULL OR claimed_at <= ?)`,
		now.Format(claimLayout), id, SyncPending, SyncError, now.Add(-ClaimLease).Format(claimLayout))
	if err != nil {
		return false, fmt.Errorf("claim record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim record %d: %w", id, err)
	}
	return n == 1, nil
}

// SyncStatus returns the sync state of a record.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT sync_status FROM records WHERE id = ?`, id).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("get sync status %d: %w", id, err)
	}
	return status, nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id int64, status string) error {
	var syncedAt any
	if status == SyncSynced {
		syncedAt = r.now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = ?, synced_at = ?, claimed_at = NULL WHERE id = ?`, status, syncedAt, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
