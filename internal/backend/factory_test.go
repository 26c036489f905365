package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finanzas/internal/config"
	"finanzas/internal/core"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateMemoryBackendWithSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.csv")
	content := "Fecha,Tipo,Monto,Categoría,Método,Descripción,Remitente\n" +
		"2025-03-01,Gasto,2500,Comida,Efectivo,Almuerzo,cli\n"
	if err := os.WriteFile(seed, []byte(content), 0644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()

	rows, err := res.Store.ListAll(context.Background())
	if err != nil || len(rows) != 1 || rows[0][core.ColCategory] != "Comida" {
		t.Fatalf("unexpected rows %v (err=%v)", rows, err)
	}
	if res.Health != nil {
		t.Fatal("memory backend has no health check")
	}
}

func TestCreateMemoryBackendWithoutSeed(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rows, _ := res.Store.ListAll(context.Background())
	if len(rows) != 0 {
		t.Fatalf("expected empty store, got %v", rows)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCreateSQLiteBackendWithoutAMQP(t *testing.T) {
	ctx := context.Background()
	res, err := quietFactory().CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "finanzas.db"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()

	if err := res.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	ref, err := res.Store.Append(ctx, core.Record{
		Date:     time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		Type:     core.Expense,
		Amount:   900,
		Category: "Micro",
		Method:   "Efectivo",
	})
	if err != nil || ref != "1" {
		t.Fatalf("append: ref=%q err=%v", ref, err)
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unknown type", Config{Type: "postgres"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"sheets without id", Config{Type: SheetsBackend, GoogleServiceAccountJSON: "{}"}, "Spreadsheet ID"},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, "GoogleServiceAccount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := quietFactory().CreateBackend(context.Background(), tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "mongo"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:              "sheets",
		GoogleSpreadsheetID:      "sheet-id",
		GoogleSheetName:          "Datos",
		GoogleServiceAccountJSON: "{}",
		SeedFile:                 "seed.csv",
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.GoogleSpreadsheetID != "sheet-id" || cfg.GoogleServiceAccountJSON != "{}" || cfg.SeedFile != "seed.csv" {
		t.Fatalf("unexpected backend config %+v", cfg)
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := strings.Join(GetBackendTypeStrings(), ",")
	if got != "sqlite,sheets,memory" {
		t.Fatalf("got %q", got)
	}
}
