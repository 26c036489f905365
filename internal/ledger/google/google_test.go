package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"finanzas/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	mu       sync.Mutex
	appended [][]interface{}
	query    map[string]string
	values   [][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		f.query = map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Datos!A5:G5"},
		})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":  "Datos!A1:G10",
			"values": f.values,
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sheet-id", "")
}

func TestAppendSendsRecordRow(t *testing.T) {
	f := &fakeSheets{}
	c := newTestClient(t, f)

	ref, err := c.Append(context.Background(), core.Record{
		Date:        time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Amount:      2500,
		Category:    "Comida",
		Method:      "Debito",
		Description: "Comida",
		Sender:      "whatsapp:+56900000000",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Datos!A5:G5" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if len(f.appended) != 1 || len(f.appended[0]) != 7 {
		t.Fatalf("unexpected appended values: %v", f.appended)
	}
	row := f.appended[0]
	if row[0] != "2025-03-13" || row[1] != "Gasto" || row[2] != float64(2500) || row[6] != "whatsapp:+56900000000" {
		t.Fatalf("unexpected row: %v", row)
	}
	if f.query["valueInputOption"] != "RAW" || f.query["insertDataOption"] != "INSERT_ROWS" {
		t.Fatalf("unexpected options: %v", f.query)
	}
}

func TestAppendValidatesRecord(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.Append(context.Background(), core.Record{Type: core.Expense, Category: "x"})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestListAllMapsHeaders(t *testing.T) {
	f := &fakeSheets{values: [][]interface{}{
		{"Fecha", "Tipo", "Monto", "Categoría", "Método", "Descripción", "Remitente"},
		{"2025-03-01", "Gasto", 2500, "Comida", "Efectivo", "Almuerzo", "a"},
		{},
		{"2025-03-02", "Ingreso", 1250000, "Sueldo"},
	}}
	c := newTestClient(t, f)

	rows, err := c.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][core.ColAmount] != "2500" || rows[0][core.ColDescription] != "Almuerzo" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][core.ColAmount] != "1250000" || rows[1][core.ColMethod] != "" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestUninitializedClient(t *testing.T) {
	c := &Client{}
	if _, err := c.ListAll(context.Background()); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewWithServiceDefaultsSheetName(t *testing.T) {
	if c := NewWithService(nil, "id", " "); c.sheet != DefaultSheetName {
		t.Fatalf("expected %q, got %q", DefaultSheetName, c.sheet)
	}
}
