package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"finanzas/internal/core"
)

// Structured input is "Tipo, Monto, Categoría, Método, Descripción[, Fecha]".
const (
	structuredFields         = 5
	structuredFieldsWithDate = 6
)

// StructuredParser reads comma-delimited manual entries.
type StructuredParser struct {
	dates *DateResolver
}

func NewStructuredParser(dates *DateResolver) *StructuredParser {
	return &StructuredParser{dates: dates}
}

var (
	reLeadingGroup  = regexp.MustCompile(`^\$?\s*\d{1,3}$`)
	reThousandGroup = regexp.MustCompile(`^\d{3}$`)
)

// Fields splits raw text into trimmed fields and reports whether the count
// matches the structured format. An amount written with comma thousands
// separators ("2,500") is rejoined into one field first.
func (p *StructuredParser) Fields(raw string) ([]string, bool) {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 2 && reLeadingGroup.MatchString(parts[1]) {
		for len(parts) > 2 && reThousandGroup.MatchString(parts[2]) {
			parts[1] += "." + parts[2]
			parts = append(parts[:2], parts[3:]...)
		}
	}
	if len(parts) != structuredFields && len(parts) != structuredFieldsWithDate {
		return nil, false
	}
	return parts, true
}

// Claims reports whether fields open with a transaction type. Text that
// merely has the right number of commas is left to the other strategies.
func (p *StructuredParser) Claims(fields []string) bool {
	_, err := core.ParseTxType(fields[0])
	return err == nil
}

// Parse validates the fields. Errors wrap core.ErrTypeNotRecognized,
// core.ErrInvalidAmount or core.ErrInvalidDate.
func (p *StructuredParser) Parse(fields []string, now time.Time) (core.Record, error) {
	typ, err := core.ParseTxType(fields[0])
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: %q", err, fields[0])
	}
	amount, err := parseFieldAmount(fields[1])
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: %q", err, fields[1])
	}

	date := p.dates.Today(now)
	if len(fields) == structuredFieldsWithDate {
		if date, err = p.dates.ResolveToken(fields[5], now); err != nil {
			return core.Record{}, err
		}
	}

	category := fields[2]
	if category == "" {
		category = core.DefaultCategory
	}
	description := fields[4]
	if description == "" {
		description = category
	}
	return core.Record{
		Date:        date,
		Type:        typ,
		Amount:      amount,
		Category:    category,
		Method:      MatchMethod(fields[3]),
		Description: description,
	}, nil
}
