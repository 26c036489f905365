package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// minAmountDigits keeps stray quantities ("2 cafés") from being read as amounts.
const minAmountDigits = 3

var (
	reThousandsWord = regexp.MustCompile(`(\d+(?:[.,]?\d+)?) ?(?:mil|lucas?)\b`)
	reThousandsK    = regexp.MustCompile(`(\d+(?:[.,]?\d+)?)k\b`)
	reDigitRun      = regexp.MustCompile(`\d+(?:[.,]\d{3})*`)
	reISODate       = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`)

	thousand = decimal.NewFromInt(1000)
)

// Normalize rewrites amount shorthand in lowercased text into plain digits:
// "3 mil" and "3mil" -> "3000", "2,5 lucas" -> "2500", "10k" -> "10000",
// "dos mil" -> "2000". Text without shorthand is returned unchanged.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = replaceScaled(reThousandsWord, text)
	text = replaceScaled(reThousandsK, text)
	return replaceNumberWords(text)
}

func replaceScaled(re *regexp.Regexp, text string) string {
	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		d, err := decimal.NewFromString(strings.Replace(sub[1], ",", ".", 1))
		if err != nil {
			return m
		}
		return d.Mul(thousand).Truncate(0).String()
	})
}

// ExtractAmount returns the first digit run in normalized text holding at
// least three digits once thousands separators are removed. ISO dates are
// ignored so "2025-03-01" never becomes an amount.
func ExtractAmount(text string) (int64, error) {
	text = reISODate.ReplaceAllString(text, " ")
	for _, run := range reDigitRun.FindAllString(text, -1) {
		digits := strings.NewReplacer(".", "", ",", "").Replace(run)
		if len(digits) < minAmountDigits {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		return n, nil
	}
	return 0, core.ErrAmountNotFound
}

// ParseAmount normalizes lowercased text and extracts its amount.
func ParseAmount(text string) (int64, error) {
	return ExtractAmount(Normalize(text))
}

// parseFieldAmount reads the amount field of structured input. Shorthand is
// accepted ("3 mil"); fractional pesos are truncated.
func parseFieldAmount(field string) (int64, error) {
	s := Normalize(Clean(field))
	d, err := core.ParseAmountString(s)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}
