package parser

import (
	"testing"

	"finanzas/internal/core"
)

func TestExtractCategory(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"gasté 2500 en comida con débito", "Comida"},
		{"gasté 2500 en comida", "Comida"},
		{"gasté 2000 en comida ayer", "Comida"},
		{"gasté 2000 en comida 2025-03-01", "Comida"},
		{"gasté 3000 en super mercado", "Super mercado"},
		{"hoy me pagaron 50000", core.DefaultCategory},
		{"gasté 2000 ayer", core.DefaultCategory},
		{"pagué con efectivo", core.DefaultCategory},
	}
	for _, tc := range cases {
		if got := ExtractCategory(tc.in); got != tc.want {
			t.Fatalf("ExtractCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractQueryCategory(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"cuánto gasté en comida este mes", "Comida"},
		{"cuánto gasté en el supermercado", "Supermercado"},
		{"cuánto gasté esta semana", ""},
		{"cuánto gasté en esta semana", ""},
		{"cuánto gasté en el mes pasado", ""},
		{"cuánto gasté en el mes pasado en comida", "Comida"},
		{"cuánto gasté en este año en la farmacia", "Farmacia"},
		{"cuánto ingresé", ""},
	}
	for _, tc := range cases {
		if got := ExtractQueryCategory(tc.in); got != tc.want {
			t.Fatalf("ExtractQueryCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchMethod(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"gasté 2500 en comida con débito", "Debito"},
		{"con debito", "Debito"},
		{"Efectivo", "Efectivo"},
		{"por transferencia", "Transferencia"},
		{"con crédito", "Credito"},
		{"con CREDITO", "Credito"},
		{"efectivo y débito", "Efectivo"},
		{"tarjeta", core.MethodUnspecified},
		{"", core.MethodUnspecified},
	}
	for _, tc := range cases {
		if got := MatchMethod(tc.in); got != tc.want {
			t.Fatalf("MatchMethod(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  ¿Cuánto GASTÉ   esta semana?  ", "cuánto gasté esta semana"},
		{"¡Resumen!", "resumen"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Clean(tc.in); got != tc.want {
			t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
