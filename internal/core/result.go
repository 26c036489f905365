package core

// Kind tags the variant carried by a ParseResult.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindRecord
	KindQuery
	KindSummary
	// KindRejected is structured input that failed validation; the error is
	// reported to the user instead of falling through to other strategies.
	KindRejected
)

var kindNames = map[Kind]string{
	KindUnrecognized: "unrecognized",
	KindRecord:       "record",
	KindQuery:        "query",
	KindSummary:      "summary",
	KindRejected:     "rejected",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseResult is produced exactly once per inbound message. Only the field
// matching Kind is set.
type ParseResult struct {
	Kind    Kind
	Record  *Record
	Query   *Query
	Summary *SummaryRequest
	Err     error
}

func RecordResult(r Record) ParseResult { return ParseResult{Kind: KindRecord, Record: &r} }
func QueryResult(q Query) ParseResult   { return ParseResult{Kind: KindQuery, Query: &q} }
func SummaryResult(s SummaryRequest) ParseResult {
	return ParseResult{Kind: KindSummary, Summary: &s}
}
func RejectedResult(err error) ParseResult { return ParseResult{Kind: KindRejected, Err: err} }
func Unrecognized() ParseResult            { return ParseResult{Kind: KindUnrecognized} }
