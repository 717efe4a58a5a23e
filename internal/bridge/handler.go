package bridge

import "context"

// Handler is the engine behind the boundary.
//
// Implementations must be safe for concurrent use; each call is one unit of
// work.
type Handler interface {
	// ProcessEvent decodes an event and returns the encoded effect batch.
	ProcessEvent(ctx context.Context, data []byte) ([]byte, error)

	// HandleResponse resolves the request with the given id and returns the
	// encoded effect batch of the follow-up.
	HandleResponse(ctx context.Context, id uint32, data []byte) ([]byte, error)

	// View returns the encoded view of the current state.
	View(ctx context.Context) ([]byte, error)
}

// Op names a boundary operation.
type Op string

const (
	OpProcessEvent   Op = "process_event"
	OpHandleResponse Op = "handle_response"
	OpView           Op = "view"
)

// Valid reports whether op is one of the three boundary operations.
func (op Op) Valid() bool {
	switch op {
	case OpProcessEvent, OpHandleResponse, OpView:
		return true
	}
	return false
}

// Exchange is one completed boundary call.
type Exchange struct {
	Op        Op
	RequestID uint32 // only set for OpHandleResponse
	Input     []byte // nil for OpView
	Output    []byte

	// Ordinal is the call's place in the handler's execution order, as
	// reported through ReportOrdinal. 0 if the handler reports none.
	Ordinal uint64
}

// Recorder is told about every successful exchange.
type Recorder interface {
	Record(ctx context.Context, ex Exchange) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, ex Exchange) error

// Record calls f(ctx, ex).
func (f RecorderFunc) Record(ctx context.Context, ex Exchange) error {
	return f(ctx, ex)
}
