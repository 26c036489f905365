package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// reGrouped matches integers written with thousands separators: 2.500, 1,250,000.
var reGrouped = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

// ParseAmountString coerces a stored or typed amount into a decimal.
//
// Accepted forms: "2500", "2500.0", "2500,5", "2.500", "$ 1.250.000".
// Grouped forms are read as thousands because ledger amounts carry no
// subunits. Negative values and anything non-numeric return ErrInvalidAmount.
func ParseAmountString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if reGrouped.MatchString(s) {
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	} else {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
