package parser

import (
	"strings"
	"time"

	"finanzas/internal/core"
)

var (
	expenseStems = []string{"gast"}
	incomeStems  = []string{"ingres", "pagaron", "cobré"}
)

// DetectType reports whether cleaned text talks about an expense or an
// income. Expense stems are checked first.
func DetectType(text string) (core.TxType, error) {
	for _, s := range expenseStems {
		if strings.Contains(text, s) {
			return core.Expense, nil
		}
	}
	for _, s := range incomeStems {
		if strings.Contains(text, s) {
			return core.Income, nil
		}
	}
	return "", core.ErrTypeNotRecognized
}

// RecordParser builds a record from a natural-language message.
type RecordParser struct {
	dates *DateResolver
}

func NewRecordParser(dates *DateResolver) *RecordParser {
	return &RecordParser{dates: dates}
}

// Parse composes normalization, type detection, category and method
// extraction and date resolution. Sender is left for the caller.
func (p *RecordParser) Parse(clean string, now time.Time) (core.Record, error) {
	text := Normalize(clean)
	amount, err := ExtractAmount(text)
	if err != nil {
		return core.Record{}, err
	}
	typ, err := DetectType(text)
	if err != nil {
		return core.Record{}, err
	}
	category := ExtractCategory(text)
	method := MatchMethod(text)
	date, err := p.dates.Resolve(text, now)
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		Date:        date,
		Type:        typ,
		Amount:      amount,
		Category:    category,
		Method:      method,
		Description: category,
	}, nil
}
