package parser

import (
	"strings"

	"finanzas/internal/core"
)

// paymentMethods is checked in order; the first token found wins. Accented
// and plain spellings share one stored value.
var paymentMethods = []struct {
	token  string
	stored string
}{
	{"efectivo", "Efectivo"},
	{"debito", "Debito"},
	{"débito", "Debito"},
	{"transferencia", "Transferencia"},
	{"credito", "Credito"},
	{"crédito", "Credito"},
}

// MatchMethod returns the payment method named in text, or
// core.MethodUnspecified.
func MatchMethod(text string) string {
	folded := foldAccents(strings.ToLower(text))
	for _, m := range paymentMethods {
		if strings.Contains(folded, foldAccents(m.token)) {
			return m.stored
		}
	}
	return core.MethodUnspecified
}
