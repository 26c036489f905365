package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finanzas/internal/aggregate"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/parser"
	"finanzas/internal/reply"
)

// Response is the outcome of one inbound message. Reply is always set.
type Response struct {
	Reply   string
	Result  core.ParseResult
	RowRef  string
	Total   *core.Total
	Summary *core.Summary
	Err     error
}

// Interpreter turns one message into a ledger effect and a reply.
type Interpreter struct {
	classifier *parser.Classifier
	store      ledger.Store
	renderer   *reply.Renderer
}

func NewInterpreter(classifier *parser.Classifier, store ledger.Store, renderer *reply.Renderer) *Interpreter {
	if renderer == nil {
		renderer = reply.New(nil)
	}
	return &Interpreter{
		classifier: classifier,
		store:      store,
		renderer:   renderer,
	}
}

// Interpret classifies text and acts on it. now is sampled once by the
// caller so every date in the request agrees.
func (i *Interpreter) Interpret(ctx context.Context, text, sender string, now time.Time) Response {
	res := i.classifier.Classify(text, now)
	resp := Response{Result: res}

	switch res.Kind {
	case core.KindRecord:
		rec := *res.Record
		rec.Sender = strings.TrimSpace(sender)
		resp.Result = core.RecordResult(rec)

		ref, err := i.store.Append(ctx, rec)
		if err != nil {
			resp.Err = fmt.Errorf("%w: %w", core.ErrLedgerWrite, err)
			resp.Reply = i.renderer.SaveFailed()
			slog.ErrorContext(ctx, "Failed to append record",
				"sender", rec.Sender,
				"type", rec.Type,
				"amount", rec.Amount,
				"error", err)
			return resp
		}
		resp.RowRef = ref
		resp.Reply = i.renderer.RecordSaved(rec)
		slog.InfoContext(ctx, "Record saved",
			"ref", ref,
			"sender", rec.Sender,
			"type", rec.Type,
			"amount", rec.Amount,
			"category", rec.Category,
			"method", rec.Method,
			"date", rec.DateString())

	case core.KindQuery:
		rows, err := i.store.ListAll(ctx)
		if err != nil {
			return i.readFailed(ctx, resp, err)
		}
		total := aggregate.Total(rows, *res.Query)
		resp.Total = &total
		resp.Reply = i.renderer.Total(*res.Query, total)
		slog.InfoContext(ctx, "Query answered",
			"sender", sender,
			"type", res.Query.Type,
			"category", res.Query.Category,
			"start", res.Query.StartString(),
			"end", res.Query.EndString(),
			"total", total.Amount,
			"matched", total.Matched)
		if total.Skipped > 0 {
			slog.DebugContext(ctx, "Skipped rows with non-numeric amounts", "skipped", total.Skipped)
		}

	case core.KindSummary:
		rows, err := i.store.ListAll(ctx)
		if err != nil {
			return i.readFailed(ctx, resp, err)
		}
		summary := aggregate.Summarize(rows, *res.Summary)
		resp.Summary = &summary
		resp.Reply = i.renderer.Summary(summary)
		slog.InfoContext(ctx, "Summary answered",
			"sender", sender,
			"groups", len(summary.Groups),
			"skipped", summary.Skipped)

	case core.KindRejected:
		resp.Err = res.Err
		resp.Reply = i.renderer.Rejected(res.Err)
		slog.InfoContext(ctx, "Structured input rejected", "sender", sender, "error", res.Err)

	default:
		resp.Reply = i.renderer.Help()
		slog.DebugContext(ctx, "Message not recognized", "sender", sender)
	}
	return resp
}

func (i *Interpreter) readFailed(ctx context.Context, resp Response, err error) Response {
	resp.Err = fmt.Errorf("list ledger: %w", err)
	resp.Reply = i.renderer.ReadFailed()
	slog.ErrorContext(ctx, "Failed to read ledger", "kind", resp.Result.Kind, "error", err)
	return resp
}
