package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/corebridge/internal/app/catfacts"
	"github.com/roach88/corebridge/internal/bridge"
	"github.com/roach88/corebridge/internal/ir"
)

type runConfig struct {
	recorder bridge.Recorder
	logger   *slog.Logger
	factory  func() bridge.Handler
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithRecorder also sends every exchange to r (e.g. a journal).
func WithRecorder(r bridge.Recorder) RunOption {
	return func(c *runConfig) {
		c.recorder = r
	}
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithHandlerFactory replaces the engine under test. Defaults to a fresh
// catfacts engine.
func WithHandlerFactory(factory func() bridge.Handler) RunOption {
	return func(c *runConfig) {
		c.factory = factory
	}
}

// runner holds the state of one scenario run.
type runner struct {
	shell  *bridge.Shell
	clock  *Clock
	result *Result
	logger *slog.Logger

	step   int
	issued map[uint32]bool
}

// Run executes a scenario against a fresh engine.
//
// Expectation mismatches are reported in the Result. A fatal boundary
// failure stops the run and is reported in the Result as well; the returned
// error is reserved for scenarios that cannot be run at all.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger:  slog.New(slog.DiscardHandler),
		factory: catfacts.NewHandler,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &runner{
		clock:  NewClock(),
		result: NewResult(),
		logger: cfg.logger,
		issued: make(map[uint32]bool),
	}

	record := bridge.RecorderFunc(func(ctx context.Context, ex bridge.Exchange) error {
		if err := r.trace(ex); err != nil {
			return err
		}
		if cfg.recorder != nil {
			return cfg.recorder.Record(ctx, ex)
		}
		return nil
	})
	r.shell = bridge.NewShell(cfg.factory, bridge.WithRecorder(record), bridge.WithLogger(cfg.logger))

	inputs, err := encodeInputs(scenario)
	if err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		r.step = i + 1
		out, ok := r.exec(step, inputs[i])
		if !ok {
			break
		}
		r.check(step, out)
	}

	r.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"steps", r.step,
		"exchanges", len(r.result.Trace),
		"pass", r.result.Pass,
	)
	return r.result, nil
}

// encodeInputs converts every step's YAML input to wire bytes up front so a
// malformed scenario fails before the engine sees anything.
func encodeInputs(scenario *Scenario) ([][]byte, error) {
	inputs := make([][]byte, len(scenario.Steps))
	for i, step := range scenario.Steps {
		var err error
		switch {
		case step.Event != nil:
			var payload ir.Value = ir.Object{}
			if step.Event.Payload != nil {
				payload, err = ir.FromGo(step.Event.Payload)
				if err != nil {
					return nil, fmt.Errorf("steps[%d].event.payload: %w", i, err)
				}
			}
			obj, _ := payload.(ir.Object)
			inputs[i], err = ir.EncodeEvent(ir.Event{Name: step.Event.Name, Payload: obj})
		case step.Respond != nil:
			var v ir.Value
			v, err = ir.FromGo(step.Respond.Value)
			if err != nil {
				return nil, fmt.Errorf("steps[%d].respond.value: %w", i, err)
			}
			inputs[i], err = ir.EncodeResponse(v)
		}
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return inputs, nil
}

// exec runs one step. ok is false if the boundary aborted.
func (r *runner) exec(step Step, input []byte) (out []byte, ok bool) {
	var op bridge.Op
	var id uint32
	switch {
	case step.Event != nil:
		op = bridge.OpProcessEvent
	case step.Respond != nil:
		op, id = bridge.OpHandleResponse, step.Respond.Ref
		if !r.issued[id] {
			r.result.AddError(fmt.Sprintf("steps[%d]: ref %d was never issued", r.step-1, id))
			return nil, false
		}
	default:
		op = bridge.OpView
	}

	defer func() {
		if rec := recover(); rec != nil {
			fe, isFatal := rec.(*bridge.FatalError)
			if !isFatal {
				panic(rec)
			}
			r.result.AddError(fmt.Sprintf("steps[%d]: %v", r.step-1, fe))
			out, ok = nil, false
		}
	}()

	switch op {
	case bridge.OpProcessEvent:
		out = r.shell.ProcessEvent(input)
	case bridge.OpHandleResponse:
		out = r.shell.HandleResponse(id, input)
	default:
		out = r.shell.View()
	}
	return out, true
}

// trace is the recorder callback: it appends the exchange to the trace and
// remembers issued request ids.
func (r *runner) trace(ex bridge.Exchange) error {
	ev := TraceEvent{
		Seq:       r.clock.Next(),
		Step:      r.step,
		Op:        ex.Op,
		RequestID: ex.RequestID,
	}

	var err error
	if ex.Input != nil {
		if ev.Input, err = ir.UnmarshalValue(ex.Input); err != nil {
			return fmt.Errorf("trace input: %w", err)
		}
	}
	if ev.Output, err = ir.UnmarshalValue(ex.Output); err != nil {
		return fmt.Errorf("trace output: %w", err)
	}

	if ex.Op == bridge.OpView {
		r.result.View, _ = ev.Output.(ir.Object)
	} else {
		batch, err := ir.DecodeEffects(ex.Output)
		if err != nil {
			return fmt.Errorf("trace batch: %w", err)
		}
		for _, req := range batch {
			r.issued[req.ID] = true
		}
	}

	r.result.Trace = append(r.result.Trace, ev)
	return nil
}

// check compares a step's output with its expect clause.
func (r *runner) check(step Step, out []byte) {
	if step.Expect == nil {
		return
	}
	idx := r.step - 1

	if step.Expect.Effects != nil {
		batch, err := ir.DecodeEffects(out)
		if err != nil {
			r.result.AddError(fmt.Sprintf("steps[%d].expect.effects: output is not an effect batch: %v", idx, err))
		} else {
			got := make([]string, len(batch))
			for i, req := range batch {
				got[i] = req.Effect.Capability
			}
			if !slices.Equal(got, step.Expect.Effects) {
				r.result.AddError(fmt.Sprintf("steps[%d].expect.effects: got %v, want %v", idx, got, step.Expect.Effects))
			}
		}
	}

	if step.Expect.View != nil {
		r.checkView(idx, out, step.Expect.View)
	}
}

func (r *runner) checkView(idx int, data []byte, want map[string]any) {
	v, err := ir.UnmarshalValue(data)
	if err != nil {
		r.result.AddError(fmt.Sprintf("steps[%d].expect.view: %v", idx, err))
		return
	}
	view, ok := v.(ir.Object)
	if !ok {
		r.result.AddError(fmt.Sprintf("steps[%d].expect.view: view is %T, want object", idx, v))
		return
	}

	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		expected, err := ir.FromGo(want[key])
		if err != nil {
			r.result.AddError(fmt.Sprintf("steps[%d].expect.view.%s: %v", idx, key, err))
			continue
		}
		actual, found := view[key]
		if !found {
			r.result.AddError(fmt.Sprintf("steps[%d].expect.view.%s: missing", idx, key))
			continue
		}
		if !sameValue(actual, expected) {
			r.result.AddError(fmt.Sprintf("steps[%d].expect.view.%s: got %s, want %s", idx, key, render(actual), render(expected)))
		}
	}
}

func sameValue(a, b ir.Value) bool {
	x, err1 := ir.MarshalCanonical(a)
	y, err2 := ir.MarshalCanonical(b)
	return err1 == nil && err2 == nil && string(x) == string(y)
}

func render(v ir.Value) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}
