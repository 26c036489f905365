package parser

import (
	"strings"
	"time"

	"finanzas/internal/core"
)

// Message is one inbound text with the instant it was received.
type Message struct {
	Raw   string
	Clean string
	Now   time.Time
}

func NewMessage(raw string, now time.Time) Message {
	return Message{Raw: strings.TrimSpace(raw), Clean: Clean(raw), Now: now}
}

// Matcher is one parsing strategy. Match reports false to defer to the next
// strategy.
type Matcher interface {
	Name() string
	Match(msg Message) (core.ParseResult, bool)
}

// Classifier runs its matchers in order and returns the first match.
type Classifier struct {
	matchers []Matcher
}

// NewClassifier builds the default precedence: structured input, summary
// triggers, natural-language records, then natural-language queries.
func NewClassifier(dates *DateResolver) *Classifier {
	return &Classifier{matchers: []Matcher{
		&structuredMatcher{parser: NewStructuredParser(dates)},
		&summaryMatcher{dates: dates},
		&recordMatcher{parser: NewRecordParser(dates)},
		&queryMatcher{parser: NewQueryParser(dates), dates: dates},
	}}
}

// NewClassifierWith builds a classifier over an explicit matcher list.
func NewClassifierWith(matchers ...Matcher) *Classifier {
	return &Classifier{matchers: matchers}
}

// Classify interprets text received at now. It always returns exactly one
// result; core.KindUnrecognized when no strategy applies.
func (c *Classifier) Classify(text string, now time.Time) core.ParseResult {
	return c.ClassifyMessage(NewMessage(text, now))
}

func (c *Classifier) ClassifyMessage(msg Message) core.ParseResult {
	if msg.Clean == "" {
		return core.Unrecognized()
	}
	for _, m := range c.matchers {
		if res, ok := m.Match(msg); ok {
			return res
		}
	}
	return core.Unrecognized()
}

type structuredMatcher struct {
	parser *StructuredParser
}

func (m *structuredMatcher) Name() string { return "structured" }

// Match claims messages with the structured field count whose first field
// is a transaction type. Invalid amounts and dates are rejected here rather
// than passed on.
func (m *structuredMatcher) Match(msg Message) (core.ParseResult, bool) {
	fields, ok := m.parser.Fields(msg.Raw)
	if !ok || !m.parser.Claims(fields) {
		return core.ParseResult{}, false
	}
	rec, err := m.parser.Parse(fields, msg.Now)
	if err != nil {
		return core.RejectedResult(err), true
	}
	return core.RecordResult(rec), true
}

var summaryTriggers = []string{"resumen del mes", "mostrar resumen", "resumen"}

type summaryMatcher struct {
	dates *DateResolver
}

func (m *summaryMatcher) Name() string { return "summary" }

func (m *summaryMatcher) Match(msg Message) (core.ParseResult, bool) {
	for _, t := range summaryTriggers {
		if strings.Contains(msg.Clean, t) {
			start, end := m.dates.MonthToDate(msg.Now)
			return core.SummaryResult(core.SummaryRequest{Start: start, End: end}), true
		}
	}
	return core.ParseResult{}, false
}

type recordMatcher struct {
	parser *RecordParser
}

func (m *recordMatcher) Name() string { return "record" }

func (m *recordMatcher) Match(msg Message) (core.ParseResult, bool) {
	rec, err := m.parser.Parse(msg.Clean, msg.Now)
	if err != nil {
		return core.ParseResult{}, false
	}
	return core.RecordResult(rec), true
}

type queryMatcher struct {
	parser *QueryParser
	dates  *DateResolver
}

func (m *queryMatcher) Name() string { return "query" }

// Match needs a type stem plus either a range phrase or no amount at all.
// Without a range it answers for today.
func (m *queryMatcher) Match(msg Message) (core.ParseResult, bool) {
	if !m.dates.RangeMentioned(msg.Clean) {
		if _, err := ParseAmount(msg.Clean); err == nil {
			return core.ParseResult{}, false
		}
	}
	q, err := m.parser.Parse(msg.Clean, msg.Now)
	if err != nil {
		return core.ParseResult{}, false
	}
	return core.QueryResult(q), true
}
