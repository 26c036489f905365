// Package parser turns informal Spanish messages into records, queries and
// summary requests.
//
// Every function here is pure: the caller supplies the message text and the
// instant ("now") the request was received, sampled once per request.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// edgePunctuation is stripped from both ends of a cleaned message.
const edgePunctuation = "¿?¡!., "

// Clean trims, case-folds and collapses whitespace in a raw message.
func Clean(s string) string {
	// Casers keep state; build one per call so Clean stays goroutine safe.
	s = cases.Lower(language.Spanish).String(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, edgePunctuation)
}

// foldAccents removes combining marks: "débito" -> "debito", "millón" -> "millon".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
