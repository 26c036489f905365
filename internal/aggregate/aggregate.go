// Package aggregate computes totals over a ledger snapshot.
//
// Rows are read as stored: dates are zero-padded ISO strings compared
// lexicographically and amounts are coerced per row. A row whose amount
// cannot be coerced is skipped and counted, never fatal.
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// Total sums the rows matching q: exact type, date inside [q.Start, q.End]
// and, when q.Category is set, a case-insensitive category match.
func Total(rows []core.Row, q core.Query) core.Total {
	start, end := q.StartString(), q.EndString()
	category := strings.TrimSpace(q.Category)

	var out core.Total
	sum := decimal.Zero
	for _, row := range rows {
		if strings.TrimSpace(row[core.ColType]) != string(q.Type) {
			continue
		}
		if !inRange(row[core.ColDate], start, end) {
			continue
		}
		if category != "" && !strings.EqualFold(strings.TrimSpace(row[core.ColCategory]), category) {
			continue
		}
		amount, err := core.ParseAmountString(row[core.ColAmount])
		if err != nil {
			out.Skipped++
			continue
		}
		sum = sum.Add(amount)
		out.Matched++
	}
	out.Amount = sum.IntPart()
	return out
}

type groupKey struct {
	typ      core.TxType
	category string
}

// Summarize groups every row inside the request range by type and category,
// keeping the order in which each group first appears. Categories group
// case-insensitively under their first spelling.
func Summarize(rows []core.Row, req core.SummaryRequest) core.Summary {
	start, end := req.Start.Format(core.DateLayout), req.End.Format(core.DateLayout)
	out := core.Summary{Start: req.Start, End: req.End}

	index := make(map[groupKey]int)
	sums := make([]decimal.Decimal, 0)
	for _, row := range rows {
		if !inRange(row[core.ColDate], start, end) {
			continue
		}
		amount, err := core.ParseAmountString(row[core.ColAmount])
		if err != nil {
			out.Skipped++
			continue
		}
		typ := core.TxType(strings.TrimSpace(row[core.ColType]))
		category := strings.TrimSpace(row[core.ColCategory])
		if category == "" {
			category = core.DefaultCategory
		}
		key := groupKey{typ: typ, category: strings.ToLower(category)}
		i, ok := index[key]
		if !ok {
			i = len(out.Groups)
			index[key] = i
			out.Groups = append(out.Groups, core.GroupTotal{Type: typ, Category: category})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(amount)
	}
	for i := range out.Groups {
		out.Groups[i].Amount = sums[i].IntPart()
	}
	return out
}

func inRange(date, start, end string) bool {
	date = strings.TrimSpace(date)
	return date >= start && date <= end
}
