package google

import (
	"fmt"
	"strconv"
	"strings"

	"finanzas/internal/core"
)

// recordValues orders a record's cells as the A:G columns. The amount is
// sent as a number so the sheet can sum it.
func recordValues(r core.Record) []any {
	return []any{
		r.DateString(),
		string(r.Type),
		r.Amount,
		r.Category,
		r.Method,
		r.Description,
		r.Sender,
	}
}

// rowsFromValues converts a values matrix whose first row is the header
// into ledger rows. Blank rows are dropped; short rows leave missing
// columns empty.
func rowsFromValues(values [][]interface{}) []core.Row {
	if len(values) < 2 {
		return nil
	}
	headers := toStrings(values[0])
	out := make([]core.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		cols := toStrings(raw)
		if isBlank(cols) {
			continue
		}
		row := make(core.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			row[h] = safeGet(cols, i)
		}
		out = append(out, row)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = cellString(v)
	}
	return out
}

// cellString renders a cell as text. Whole numbers never use exponent
// notation, so 1250000 stays "1250000".
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strings.TrimSpace(x)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
