package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseTxType(t *testing.T) {
	cases := []struct {
		in   string
		want TxType
		ok   bool
	}{
		{"Gasto", Expense, true},
		{" gastos ", Expense, true},
		{"INGRESO", Income, true},
		{"ingresos", Income, true},
		{"compra", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTxType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrTypeNotRecognized) {
			t.Fatalf("%q expected ErrTypeNotRecognized, got %v", tc.in, err)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Date:     time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Type:     Expense,
		Amount:   2500,
		Category: "Comida",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Record{
		{Type: Expense, Amount: 1, Category: "c"},
		{Date: good.Date, Type: "Otro", Amount: 1, Category: "c"},
		{Date: good.Date, Type: Income, Amount: -1, Category: "c"},
		{Date: good.Date, Type: Income, Amount: 1, Category: " "},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecordRow(t *testing.T) {
	r := Record{
		Date:        time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Type:        Income,
		Amount:      50000,
		Category:    "General",
		Method:      MethodUnspecified,
		Description: "General",
		Sender:      "whatsapp:+56911111111",
	}
	row := r.Row()
	if row[ColDate] != "2025-03-04" || row[ColAmount] != "50000" || row[ColType] != "Ingreso" {
		t.Fatalf("unexpected row: %v", row)
	}
	vals := row.Values()
	if len(vals) != len(Columns) || vals[6] != "whatsapp:+56911111111" {
		t.Fatalf("unexpected values: %v", vals)
	}
}

func TestKindString(t *testing.T) {
	if KindRecord.String() != "record" || KindRejected.String() != "rejected" || Kind(42).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
}
