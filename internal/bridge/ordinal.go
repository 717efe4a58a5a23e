package bridge

import "context"

type ordinalKey struct{}

// ordinalSlot receives the ordinal reported during one Bridge call. It is
// written by the handler before it returns and read by the bridge after, on
// the same goroutine.
type ordinalSlot struct {
	n uint64
}

// ReportOrdinal records the position of the current call in the handler's
// own execution order. Handlers call it at most once per successful call,
// while still holding whatever lock serializes their work, so that
// recorders can restore engine order when concurrent calls reach them out
// of order. Ordinals start at 1; 0 means "not reported".
//
// Outside a Bridge call it does nothing.
func ReportOrdinal(ctx context.Context, n uint64) {
	if slot, ok := ctx.Value(ordinalKey{}).(*ordinalSlot); ok {
		slot.n = n
	}
}

func withOrdinalSlot(ctx context.Context) (context.Context, *ordinalSlot) {
	slot := &ordinalSlot{}
	return context.WithValue(ctx, ordinalKey{}, slot), slot
}
