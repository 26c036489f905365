package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"sync"

	"finanzas/internal/core"
	"finanzas/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows []core.Row
}

func New(rows ...core.Row) *Store {
	s := &Store{}
	for _, r := range rows {
		s.rows = append(s.rows, maps.Clone(r))
	}
	return s
}

// NewFromFile seeds a store from a CSV file whose first line holds the
// ledger headers. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return New(rows...), nil
}

// ReadCSV maps every data line onto the header names of the first line.
func ReadCSV(r io.Reader) ([]core.Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	out := make([]core.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := core.Row{}
		for i, h := range headers {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r.Row())
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// ListAll returns a copy of every row.
func (s *Store) ListAll(_ context.Context) ([]core.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = maps.Clone(r)
	}
	return out, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
