// Package ledger defines the ports to the append-only store of records.
package ledger

import (
	"context"

	"finanzas/internal/core"
)

// Ports for outbound adapters.
type (
	Appender interface {
		Append(ctx context.Context, r core.Record) (rowRef string, err error)
	}

	// Lister returns a snapshot of every ledger row in storage order.
	// Callers must not mutate the returned rows.
	Lister interface {
		ListAll(ctx context.Context) ([]core.Row, error)
	}

	Store interface {
		Appender
		Lister
	}
)
