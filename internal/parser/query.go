package parser

import (
	"time"

	"finanzas/internal/core"
)

// QueryParser builds an aggregate query from a question.
type QueryParser struct {
	dates *DateResolver
}

func NewQueryParser(dates *DateResolver) *QueryParser {
	return &QueryParser{dates: dates}
}

func (p *QueryParser) Parse(clean string, now time.Time) (core.Query, error) {
	typ, err := DetectType(clean)
	if err != nil {
		return core.Query{}, err
	}
	start, end := p.dates.ResolveRange(clean, now)
	return core.Query{
		Type:     typ,
		Start:    start,
		End:      end,
		Category: ExtractQueryCategory(clean),
	}, nil
}
