package parser

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"finanzas/internal/core"
)

// DefaultTimezone is the zone used when none is configured.
const DefaultTimezone = "America/Santiago"

// DateResolver maps relative and absolute date expressions onto calendar days
// in one fixed zone. Returned times are midnight in that zone.
type DateResolver struct {
	loc *time.Location
}

func NewDateResolver(loc *time.Location) *DateResolver {
	if loc == nil {
		loc = time.UTC
	}
	return &DateResolver{loc: loc}
}

func (r *DateResolver) Location() *time.Location {
	return r.loc
}

// Today truncates now to its calendar day in the resolver's zone.
func (r *DateResolver) Today(now time.Time) time.Time {
	n := now.In(r.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, r.loc)
}

func (r *DateResolver) day(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+offset, 0, 0, 0, 0, r.loc)
}

// Resolve finds the single date a message refers to: an explicit YYYY-MM-DD
// token, "anteayer", "ayer" or "hoy". Without any of them it is today.
// A date-shaped token that does not parse strictly yields ErrInvalidDate.
func (r *DateResolver) Resolve(text string, now time.Time) (time.Time, error) {
	if tok := reISODate.FindString(text); tok != "" {
		return r.parseISO(tok)
	}
	today := r.Today(now)
	switch {
	case containsWord(text, "anteayer"):
		return r.day(today, -2), nil
	case containsWord(text, "ayer"):
		return r.day(today, -1), nil
	}
	return today, nil
}

// ResolveToken resolves the date field of structured input, which must be
// exactly "hoy", "ayer", "anteayer" or a YYYY-MM-DD date.
func (r *DateResolver) ResolveToken(tok string, now time.Time) (time.Time, error) {
	tok = Clean(tok)
	today := r.Today(now)
	switch tok {
	case "", "hoy":
		return today, nil
	case "ayer":
		return r.day(today, -1), nil
	case "anteayer":
		return r.day(today, -2), nil
	}
	return r.parseISO(tok)
}

func (r *DateResolver) parseISO(tok string) (time.Time, error) {
	t, err := time.ParseInLocation(core.DateLayout, tok, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, tok)
	}
	return t, nil
}

// rangePhrases are matched as whole words.
var rangePhrases = []string{"esta semana", "este mes", "mes pasado", "este año", "anteayer", "ayer", "hoy"}

// RangeMentioned reports whether text names a time range.
func (r *DateResolver) RangeMentioned(text string) bool {
	for _, p := range rangePhrases {
		if containsWord(text, p) {
			return true
		}
	}
	return false
}

// ResolveRange returns the inclusive [start, end] range a query refers to.
// Both ends derive from the same now.
func (r *DateResolver) ResolveRange(text string, now time.Time) (start, end time.Time) {
	today := r.Today(now)
	switch {
	case containsWord(text, "esta semana"):
		sinceMonday := (int(today.Weekday()) + 6) % 7
		return r.day(today, -sinceMonday), today
	case containsWord(text, "este mes"):
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, r.loc), today
	case containsWord(text, "mes pasado"):
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, r.loc)
		last := time.Date(today.Year(), today.Month(), 0, 0, 0, 0, 0, r.loc)
		return first, last
	case containsWord(text, "este año"):
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, r.loc), today
	case containsWord(text, "anteayer"):
		d := r.day(today, -2)
		return d, d
	case containsWord(text, "ayer"):
		d := r.day(today, -1)
		return d, d
	}
	return today, today
}

// MonthToDate returns [first day of the current month, today].
func (r *DateResolver) MonthToDate(now time.Time) (start, end time.Time) {
	today := r.Today(now)
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, r.loc), today
}

// containsWord reports whether phrase occurs in text with no letter or digit
// on either side, so "ayer" is not found in "playera".
func containsWord(text, phrase string) bool {
	for i := 0; i <= len(text); {
		j := strings.Index(text[i:], phrase)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(phrase)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
