// Package reply renders user-facing Spanish text for parse and aggregation
// results. Template choice is the only non-deterministic part and draws
// from an injected random source.
package reply

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"finanzas/internal/core"
)

const (
	defaultIcon = "🧾"

	HelpText = "🤖 No entendí tu mensaje. Puedes decir:\n" +
		"- *Gasté 2500 en comida con débito*\n" +
		"- *Hoy me pagaron 50000*\n" +
		"- *¿Cuánto gasté esta semana?*\n" +
		"- *Resumen del mes*"

	EmptySummaryText = "📉 Aún no hay movimientos registrados este mes."
	SaveFailedText   = "❌ No pude guardar tu registro. Intenta de nuevo en un momento."
	ReadFailedText   = "❌ No pude consultar tus movimientos. Intenta de nuevo en un momento."
)

// Keys are lowercase.
var icons = map[string]string{
	"comida":        "🍽️",
	"transporte":    "🚌",
	"uber":          "🚗",
	"sueldo":        "💼",
	"almuerzo":      "🥪",
	"delivery":      "📦",
	"educación":     "🎓",
	"salud":         "💊",
	"general":       "🧾",
	"efectivo":      "💵",
	"transferencia": "💳",
}

var (
	expenseTemplates = []string{
		"%s ¡Anotado tu gasto en %s! A seguir controlando 💸",
		"%s Registro guardado. Otro gasto más en %s 😅",
		"%s Gasto en %s añadido. ¡Vamos bien! ✅",
	}
	incomeTemplates = []string{
		"%s Ingreso en %s registrado. ¡Vamos creciendo! 💰",
		"%s ¡Qué bien! Anoté tu ingreso en %s ✅",
		"%s Ingreso guardado en %s. ¡Sigue así! 📈",
	}
)

// Renderer is safe for concurrent use.
type Renderer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Renderer drawing templates from rng. A nil rng always picks
// the first template.
func New(rng *rand.Rand) *Renderer {
	return &Renderer{rng: rng}
}

// NewSeeded returns a Renderer with a deterministic PCG source.
func NewSeeded(seed uint64) *Renderer {
	return New(rand.New(rand.NewPCG(seed, seed)))
}

func (r *Renderer) pick(n int) int {
	if r.rng == nil || n <= 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Icon returns the emoji for a category or payment method.
func Icon(category string) string {
	if icon, ok := icons[strings.ToLower(strings.TrimSpace(category))]; ok {
		return icon
	}
	return defaultIcon
}

// Pesos formats an amount with "." as the thousands separator: $1.250.000.
func Pesos(amount int64) string {
	return "$" + strings.ReplaceAll(humanize.Comma(amount), ",", ".")
}

// RecordSaved confirms a stored record.
func (r *Renderer) RecordSaved(rec core.Record) string {
	templates := expenseTemplates
	if rec.Type == core.Income {
		templates = incomeTemplates
	}
	tpl := templates[r.pick(len(templates))]
	return fmt.Sprintf(tpl, Icon(rec.Category), rec.Category)
}

// Total answers a query: "📊 Total de gastos en Comida entre A y B: $4.500".
func (r *Renderer) Total(q core.Query, total core.Total) string {
	var b strings.Builder
	b.WriteString("📊 Total de ")
	b.WriteString(q.Type.Plural())
	if q.Category != "" {
		b.WriteString(" en ")
		b.WriteString(q.Category)
	}
	fmt.Fprintf(&b, " entre %s y %s: %s", q.StartString(), q.EndString(), Pesos(total.Amount))
	return b.String()
}

// Summary renders grouped totals, or the empty sentinel.
func (r *Renderer) Summary(s core.Summary) string {
	if s.Empty() {
		return EmptySummaryText
	}
	var b strings.Builder
	b.WriteString("📊 *Resumen del mes:*")
	for _, g := range s.Groups {
		fmt.Fprintf(&b, "\n%s %s en %s: %s", Icon(g.Category), g.Type, g.Category, Pesos(g.Amount))
	}
	return b.String()
}

// Rejected explains why structured input was refused.
func (r *Renderer) Rejected(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "⚠️ El monto no es válido. Usa solo números, por ejemplo: Gasto, 2500, Comida, Efectivo, Almuerzo"
	case errors.Is(err, core.ErrInvalidDate):
		return "⚠️ La fecha no es válida. Usa AAAA-MM-DD, \"hoy\" o \"ayer\"."
	case errors.Is(err, core.ErrTypeNotRecognized):
		return "⚠️ El tipo debe ser Gasto o Ingreso."
	}
	return "⚠️ No pude leer tu registro. Revisa el formato: Tipo, Monto, Categoría, Método, Descripción[, Fecha]"
}

func (r *Renderer) Help() string { return HelpText }

func (r *Renderer) SaveFailed() string { return SaveFailedText }

func (r *Renderer) ReadFailed() string { return ReadFailedText }

// ExpenseTemplates and IncomeTemplates expose the confirmation formats so
// callers can assert membership.
func ExpenseTemplates() []string { return append([]string(nil), expenseTemplates...) }
func IncomeTemplates() []string  { return append([]string(nil), incomeTemplates...) }
