package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrNoHandler is the cause reported when the factory produced no handler.
	ErrNoHandler = errors.New("engine factory returned no handler")

	// ErrPanic wraps the value of a panic raised by the factory or the
	// handler.
	ErrPanic = errors.New("panic")
)

// State is the lifecycle state of a Shell.
type State int

const (
	// StateUninitialized means no operation has been called yet.
	StateUninitialized State = iota
	// StateReady means the handler exists. Terminal.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FatalError is the panic value raised by Shell when an operation fails.
type FatalError struct {
	Op        Op
	RequestID uint32
	Err       error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Op == OpHandleResponse {
		return fmt.Sprintf("fatal %s (request=%d): %v", e.Op, e.RequestID, e.Err)
	}
	return fmt.Sprintf("fatal %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// Shell owns the process-wide engine and exposes the panicking host API.
//
// The zero value is not usable; build one with NewShell.
type Shell struct {
	factory func() Handler
	opts    []Option
	cfg     config

	once    sync.Once
	bridge  *Bridge
	initErr error
	ready   atomic.Bool
}

// NewShell returns a Shell that builds its handler with factory on first use.
// The factory runs at most once per Shell.
func NewShell(factory func() Handler, opts ...Option) *Shell {
	return &Shell{
		factory: factory,
		opts:    opts,
		cfg:     newConfig(opts),
	}
}

// State reports whether the handler has been built.
func (s *Shell) State() State {
	if s.ready.Load() {
		return StateReady
	}
	return StateUninitialized
}

// ProcessEvent forwards an encoded event and returns the encoded effect batch.
// It panics with *FatalError on any failure.
func (s *Shell) ProcessEvent(data []byte) []byte {
	ctx := context.Background()
	return s.do(ctx, OpProcessEvent, 0, func(b *Bridge) ([]byte, error) {
		return b.ProcessEvent(ctx, data)
	})
}

// HandleResponse forwards the response to request id and returns the encoded
// effect batch. It panics with *FatalError on any failure, including an id
// with no pending request.
func (s *Shell) HandleResponse(id uint32, data []byte) []byte {
	ctx := context.Background()
	return s.do(ctx, OpHandleResponse, id, func(b *Bridge) ([]byte, error) {
		return b.HandleResponse(ctx, id, data)
	})
}

// View returns the encoded view. It panics with *FatalError if encoding
// fails.
func (s *Shell) View() []byte {
	ctx := context.Background()
	return s.do(ctx, OpView, 0, func(b *Bridge) ([]byte, error) {
		return b.View(ctx)
	})
}

// do runs fn against the shared bridge and aborts on failure.
func (s *Shell) do(ctx context.Context, op Op, id uint32, fn func(*Bridge) ([]byte, error)) []byte {
	out, err := s.guard(ctx, op, fn)
	if err != nil {
		s.fatal(ctx, op, id, err)
	}
	return out
}

// guard turns a panic raised below the Shell into an ErrPanic error so that
// it is logged and reported like any other failure.
func (s *Shell) guard(ctx context.Context, op Op, fn func(*Bridge) ([]byte, error)) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	b, err := s.get(ctx, op)
	if err != nil {
		return nil, err
	}
	return fn(b)
}

// get returns the shared bridge, building it on the first call. Callers
// racing the first call block until construction finishes. A factory that
// panics or returns nil leaves the Shell without a handler for good.
func (s *Shell) get(ctx context.Context, op Op) (*Bridge, error) {
	s.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.initErr = fmt.Errorf("%w: %w: %v", ErrNoHandler, ErrPanic, r)
			}
		}()

		h := s.factory()
		if h == nil {
			s.initErr = ErrNoHandler
			return
		}
		s.bridge = New(h, s.opts...)
		s.ready.Store(true)
		s.cfg.log().DebugContext(ctx, "engine initialized", "op", op)
	})
	if s.bridge == nil {
		return nil, s.initErr
	}
	return s.bridge, nil
}

func (s *Shell) fatal(ctx context.Context, op Op, id uint32, err error) {
	s.cfg.log().ErrorContext(ctx, "bridge operation failed",
		"op", op,
		"request_id", id,
		"err", err,
	)
	panic(&FatalError{Op: op, RequestID: id, Err: err})
}
