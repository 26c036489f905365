package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"finanzas/internal/core"
)

type (
	// RecordRepository is the local store records are written to first.
	RecordRepository interface {
		Append(ctx context.Context, r core.Record) (string, error)
		ListAll(ctx context.Context) ([]core.Row, error)
	}

	// SyncPublisher queues a stored record for copying to the sheet.
	SyncPublisher interface {
		PublishRecordSync(ctx context.Context, id, version int64) error
	}
)

// RecordService orchestrates record writes across SQLite and AMQP
type RecordService struct {
	storage   RecordRepository
	publisher SyncPublisher
}

func NewRecordService(storage RecordRepository, publisher SyncPublisher) *RecordService {
	return &RecordService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateRecord saves a record locally and publishes a sync message. A
// publish failure is logged only: the pending row is picked up by the
// worker's periodic sweep.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (string, error) {
	ref, err := s.storage.Append(ctx, r)
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse record ID", "ref", ref, "error", err)
		return ref, nil
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return ref, nil
	}
	if err := s.publisher.PublishRecordSync(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
	return ref, nil
}

func (s *RecordService) ListAll(ctx context.Context) ([]core.Row, error) {
	return s.storage.ListAll(ctx)
}

// Close closes storage and publisher when they hold resources.
func (s *RecordService) Close() error {
	var errs []error
	if c, ok := s.storage.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
