package parser

import (
	"regexp"
	"strings"

	"finanzas/internal/core"
)

var (
	// "en <words>" up to " con" or the end of the text.
	reRecordCategory = regexp.MustCompile(`(?:^|\s)en\s+([\p{L}\p{N}_\s]+?)(?:\s+con\b|\s*$)`)
	// Queries take a single word, skipping an article.
	reQueryCategory = regexp.MustCompile(`(?:^|\s)en\s+(?:(?:el|la|los|las)\s+)?([\p{L}\p{N}_]+)`)
	// Date expressions are removed before looking for a category so that
	// "en comida ayer" yields "Comida".
	reDateWords = regexp.MustCompile(`\s*(?:\b\d{4}-\d{1,2}-\d{1,2}\b|(?:^|\s)(?:anteayer|ayer|hoy)(?:\s|$))`)
)

// ExtractCategory returns the capitalized category of a record message, or
// core.DefaultCategory when the message names none.
func ExtractCategory(text string) string {
	text = strings.TrimSpace(reDateWords.ReplaceAllString(text, " "))
	m := reRecordCategory.FindStringSubmatch(text)
	if m == nil {
		return core.DefaultCategory
	}
	if c := capitalize(m[1]); c != "" {
		return c
	}
	return core.DefaultCategory
}

// ExtractQueryCategory returns the capitalized category filter of a query,
// or "" when every category should match.
func ExtractQueryCategory(text string) string {
	for _, m := range reQueryCategory.FindAllStringSubmatch(text, -1) {
		if rangeWords[m[1]] {
			continue
		}
		return capitalize(m[1])
	}
	return ""
}

// rangeWords open a time range after "en", as in "en el mes pasado".
var rangeWords = map[string]bool{
	"esta": true, "este": true, "mes": true, "semana": true, "año": true,
	"hoy": true, "ayer": true, "anteayer": true,
}
