package core

import "time"

type (
	// Query filters the ledger for a single transaction type over an
	// inclusive date range. An empty Category matches every category.
	Query struct {
		Type     TxType
		Start    time.Time
		End      time.Time
		Category string
	}

	// SummaryRequest asks for every movement in [Start, End] grouped by
	// type and category.
	SummaryRequest struct {
		Start time.Time
		End   time.Time
	}

	// Total is the answer to a Query.
	Total struct {
		Amount  int64
		Matched int
		Skipped int // rows whose amount could not be coerced
	}

	GroupTotal struct {
		Type     TxType
		Category string
		Amount   int64
	}

	// Summary holds grouped totals in first-seen order.
	Summary struct {
		Start   time.Time
		End     time.Time
		Groups  []GroupTotal
		Skipped int
	}
)

func (q Query) StartString() string { return q.Start.Format(DateLayout) }
func (q Query) EndString() string   { return q.End.Format(DateLayout) }

// Empty reports whether no movement fell inside the summary range.
func (s Summary) Empty() bool {
	return len(s.Groups) == 0
}
