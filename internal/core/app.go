package core

import "github.com/roach88/corebridge/internal/ir"

// App is the externally supplied state machine the engine drives.
//
// Implementations must treat the model passed in as read-only and return a
// new (or copied) model from Update.
type App interface {
	// Init returns the initial model.
	Init() ir.Object

	// Update applies event to model and returns the next model plus the
	// commands to hand to the host. An error aborts the unit of work.
	Update(model ir.Object, event ir.Event) (ir.Object, []Command, error)

	// View projects the model into the snapshot returned by View.
	View(model ir.Object) ir.Object
}

// Continuation maps the host's response to a follow-up event.
// Returning an Event with an empty Name resolves the request without
// running Update.
type Continuation func(response ir.Value) (ir.Event, error)

// Command is one effect for the host, with an optional continuation.
type Command struct {
	Effect ir.Effect
	Then   Continuation
}

// Notify builds a command that expects no response (render, log, ...).
func Notify(capability string, operation ir.Object) Command {
	return Command{Effect: ir.Effect{Capability: capability, Operation: operation}}
}

// Request builds a command whose response is routed to then.
func Request(capability string, operation ir.Object, then Continuation) Command {
	return Command{Effect: ir.Effect{Capability: capability, Operation: operation}, Then: then}
}
