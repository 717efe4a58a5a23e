package journal

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/corebridge/internal/bridge"
)

// Mismatch is one replayed exchange whose output differed from the record.
type Mismatch struct {
	Seq  int64
	Op   bridge.Op
	Want []byte
	Got  []byte
	Err  string // non-empty if the handler failed
}

// Report summarizes a replay.
type Report struct {
	Total         int
	Mismatches    []Mismatch
	Deterministic bool
}

// Replay feeds the recorded inputs, in order, to h and compares each output
// with the recorded one. h should be a freshly built engine.
//
// A handler failure counts as a mismatch; replay continues with the next
// entry. Only context cancellation stops it early.
func Replay(ctx context.Context, entries []Entry, h bridge.Handler) (Report, error) {
	report := Report{Mismatches: []Mismatch{}}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("replay: %w", err)
		}

		got, err := replayOne(ctx, e.Exchange, h)
		report.Total++

		switch {
		case err != nil:
			report.Mismatches = append(report.Mismatches, Mismatch{
				Seq: e.Seq, Op: e.Exchange.Op, Want: e.Exchange.Output, Err: err.Error(),
			})
		case !bytes.Equal(got, e.Exchange.Output):
			report.Mismatches = append(report.Mismatches, Mismatch{
				Seq: e.Seq, Op: e.Exchange.Op, Want: e.Exchange.Output, Got: got,
			})
		}
	}

	report.Deterministic = len(report.Mismatches) == 0
	return report, nil
}

func replayOne(ctx context.Context, ex bridge.Exchange, h bridge.Handler) ([]byte, error) {
	switch ex.Op {
	case bridge.OpProcessEvent:
		return h.ProcessEvent(ctx, ex.Input)
	case bridge.OpHandleResponse:
		return h.HandleResponse(ctx, ex.RequestID, ex.Input)
	case bridge.OpView:
		return h.View(ctx)
	default:
		return nil, fmt.Errorf("unknown op %q", ex.Op)
	}
}
