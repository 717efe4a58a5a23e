package bridge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Bridge is the result-based boundary over a Handler.
type Bridge struct {
	handler Handler
	cfg     config
}

// New wraps h.
func New(h Handler, opts ...Option) *Bridge {
	return &Bridge{handler: h, cfg: newConfig(opts)}
}

// ProcessEvent forwards an encoded event to the handler.
func (b *Bridge) ProcessEvent(ctx context.Context, data []byte) ([]byte, error) {
	return b.call(ctx, Exchange{Op: OpProcessEvent, Input: data}, func(ctx context.Context) ([]byte, error) {
		return b.handler.ProcessEvent(ctx, data)
	})
}

// HandleResponse forwards an encoded response for request id to the handler.
func (b *Bridge) HandleResponse(ctx context.Context, id uint32, data []byte) ([]byte, error) {
	return b.call(ctx, Exchange{Op: OpHandleResponse, RequestID: id, Input: data}, func(ctx context.Context) ([]byte, error) {
		return b.handler.HandleResponse(ctx, id, data)
	})
}

// View asks the handler for the encoded view.
func (b *Bridge) View(ctx context.Context) ([]byte, error) {
	return b.call(ctx, Exchange{Op: OpView}, b.handler.View)
}

// call runs fn inside a span. On failure the output is always nil.
func (b *Bridge) call(ctx context.Context, ex Exchange, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	attrs := []attribute.KeyValue{
		attribute.String("bridge.op", string(ex.Op)),
		attribute.Int("bridge.input_bytes", len(ex.Input)),
	}
	if ex.Op == OpHandleResponse {
		attrs = append(attrs, attribute.Int64("bridge.request_id", int64(ex.RequestID)))
	}
	ctx, span := b.cfg.tracer.Start(ctx, "bridge."+string(ex.Op),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	ctx, slot := withOrdinalSlot(ctx)
	out, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", ex.Op, err)
	}
	ex.Ordinal = slot.n
	span.SetAttributes(
		attribute.Int("bridge.output_bytes", len(out)),
		attribute.Int64("bridge.ordinal", int64(ex.Ordinal)),
	)
	span.SetStatus(codes.Ok, "")

	b.cfg.log().DebugContext(ctx, "bridge exchange",
		"op", ex.Op,
		"request_id", ex.RequestID,
		"input_bytes", len(ex.Input),
		"output_bytes", len(out),
		"ordinal", ex.Ordinal,
	)

	if b.cfg.recorder != nil {
		ex.Output = out
		if rerr := b.cfg.recorder.Record(ctx, ex); rerr != nil {
			b.cfg.log().WarnContext(ctx, "recording exchange failed",
				"op", ex.Op,
				"request_id", ex.RequestID,
				"err", rerr,
			)
		}
	}
	return out, nil
}
