package core

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/corebridge/internal/bridge"
	"github.com/roach88/corebridge/internal/ir"
)

// DefaultMaxPending is the default cap on continuations awaiting a response.
// It stops a runaway app from growing the pending table without bound.
const DefaultMaxPending = 4096

// Core is the reference engine. It satisfies the boundary's Handler
// interface and is safe for concurrent use.
//
// Thread-safety model:
//   - ProcessEvent, HandleResponse: exclusive lock for the whole unit of work
//   - View, PendingCount, Steps: shared lock
//
// Every successful call takes the next ordinal while still holding its lock
// and reports it with bridge.ReportOrdinal. Ordinal order is an execution
// order that replays to the same outputs; concurrent views may take theirs
// in either order since they observe the same state.
type Core struct {
	mu      sync.RWMutex
	app     App
	model   ir.Object
	pending map[uint32]Continuation
	ids     *Sequence
	steps   int64
	ordinal atomic.Uint64

	maxPending int
	logger     *slog.Logger
}

// Option configures a Core.
type Option func(*Core)

// WithMaxPending sets the cap on pending continuations.
//
// Default: 4096 (DefaultMaxPending)
func WithMaxPending(n int) Option {
	return func(c *Core) {
		c.maxPending = n
	}
}

// WithSequence replaces the correlation ID source.
func WithSequence(seq *Sequence) Option {
	return func(c *Core) {
		c.ids = seq
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// New creates a Core around app, starting from app.Init().
func New(app App, opts ...Option) *Core {
	c := &Core{
		app:        app,
		model:      app.Init(),
		pending:    make(map[uint32]Continuation),
		ids:        NewSequence(),
		maxPending: DefaultMaxPending,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == nil {
		c.model = ir.Object{}
	}
	return c
}

// ProcessEvent decodes an event, runs it through the app and returns the
// encoded effect batch.
func (c *Core) ProcessEvent(ctx context.Context, data []byte) ([]byte, error) {
	ev, err := ir.DecodeEvent(data)
	if err != nil {
		return nil, newDecodeError(0, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.dispatch(ctx, 0, ev)
	if err != nil {
		return nil, err
	}
	c.reportOrdinal(ctx)
	return out, nil
}

// HandleResponse delivers a response to the continuation registered under id
// and returns the encoded effect batch produced by the follow-up event.
//
// The continuation is consumed only if the whole unit of work succeeds.
func (c *Core) HandleResponse(ctx context.Context, id uint32, data []byte) ([]byte, error) {
	resp, err := ir.DecodeResponse(data)
	if err != nil {
		return nil, newDecodeError(id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	then, ok := c.pending[id]
	if !ok {
		return nil, newUnknownRequestError(id)
	}

	ev, err := then(resp)
	if err != nil {
		return nil, newUpdateError(id, "", err)
	}

	var out []byte
	if ev.Name == "" {
		out, err = ir.EncodeEffects(nil)
		if err != nil {
			return nil, newEncodeError("", err)
		}
		c.steps++
	} else {
		out, err = c.dispatch(ctx, id, ev)
		if err != nil {
			return nil, err
		}
	}

	delete(c.pending, id)
	c.reportOrdinal(ctx)
	return out, nil
}

// View encodes the app's view of the current model. It does not advance the
// engine.
func (c *Core) View(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := ir.MarshalCanonical(c.app.View(c.model.Clone()))
	if err != nil {
		return nil, newEncodeError("", err)
	}
	c.reportOrdinal(ctx)
	return data, nil
}

// PendingCount returns the number of continuations awaiting a response.
func (c *Core) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// Steps returns the number of committed units of work.
func (c *Core) Steps() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.steps
}

// reportOrdinal hands the next ordinal to the bridge. Caller must hold c.mu.
func (c *Core) reportOrdinal(ctx context.Context) {
	bridge.ReportOrdinal(ctx, c.ordinal.Add(1))
}

// dispatch runs one event through the app and commits on success.
// Caller must hold c.mu exclusively.
func (c *Core) dispatch(ctx context.Context, requestID uint32, ev ir.Event) ([]byte, error) {
	model, cmds, err := c.app.Update(c.model.Clone(), ev)
	if err != nil {
		return nil, newUpdateError(requestID, ev.Name, err)
	}

	batch := make([]ir.Request, 0, len(cmds))
	registered := make(map[uint32]Continuation)
	for _, cmd := range cmds {
		id := c.nextID(registered)
		batch = append(batch, ir.Request{ID: id, Effect: cmd.Effect})
		if cmd.Then != nil {
			registered[id] = cmd.Then
		}
	}

	if total := len(c.pending) + len(registered); total > c.maxPending {
		return nil, newQuotaError(ev.Name, total, c.maxPending)
	}

	out, err := ir.EncodeEffects(batch)
	if err != nil {
		return nil, newEncodeError(ev.Name, err)
	}

	if model == nil {
		model = ir.Object{}
	}
	c.model = model
	for id, then := range registered {
		c.pending[id] = then
	}
	c.steps++

	c.logger.DebugContext(ctx, "event processed",
		"event", ev.Name,
		"request_id", requestID,
		"effects", len(batch),
		"pending", len(c.pending),
	)
	return out, nil
}

// nextID returns an ID not currently pending and not already used in this
// batch. After wrap-around an ID still awaiting a response is skipped.
func (c *Core) nextID(batch map[uint32]Continuation) uint32 {
	for {
		id := c.ids.Next()
		if _, busy := c.pending[id]; busy {
			continue
		}
		if _, busy := batch[id]; busy {
			continue
		}
		return id
	}
}
