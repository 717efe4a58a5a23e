package harness

import (
	"github.com/roach88/corebridge/internal/bridge"
	"github.com/roach88/corebridge/internal/ir"
)

// TraceEvent is one exchange observed at the boundary.
type TraceEvent struct {
	Seq       int64
	Step      int // 1-based index into Scenario.Steps
	Op        bridge.Op
	RequestID uint32   // set for handle_response only
	Input     ir.Value // nil for view
	Output    ir.Value
}

// Value renders the event as an IR object for canonical output.
func (e TraceEvent) Value() ir.Object {
	obj := ir.Obj(
		ir.O("seq", ir.Int(e.Seq)),
		ir.O("step", ir.Int(int64(e.Step))),
		ir.O("op", ir.String(string(e.Op))),
		ir.O("output", e.Output),
	)
	if e.Op == bridge.OpHandleResponse {
		obj["request_id"] = ir.Int(int64(e.RequestID))
	}
	if e.Input != nil {
		obj["input"] = e.Input
	}
	return obj
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true if every expect clause matched and no step failed.
	Pass bool

	// Trace holds every successful exchange, in order.
	Trace []TraceEvent

	// Errors contains expectation mismatches and the fatal failure, if any.
	Errors []string

	// View is the last view observed, or nil.
	View ir.Object
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
