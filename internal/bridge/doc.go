// Package bridge is the message boundary between a host and the core engine.
//
// Hosts exchange opaque serialized bytes with the engine through exactly three
// operations:
//
//	ProcessEvent(event []byte) []byte
//	HandleResponse(id uint32, response []byte) []byte
//	View() []byte
//
// The package has two layers:
//
//   - Bridge is result-based. It wraps an injected Handler, adds a trace span
//     and a debug log line per call, and tells an optional Recorder about every
//     successful exchange. It returns errors and never panics.
//   - Shell holds the process-wide engine. The Handler is built by a factory
//     on first use (guarded by sync.Once) and reused for the life of the
//     process. Any error from the inner Bridge is fatal: Shell logs it and
//     panics with *FatalError, so a caller either gets a complete batch or
//     nothing at all.
//
// Neither layer adds locking around the Handler. Serializing units of work is
// the Handler's job.
//
// Applications declare one package-level Shell and export thin functions over
// it:
//
//	var shell = bridge.NewShell(func() bridge.Handler { return core.New(App{}) })
//
//	func ProcessEvent(data []byte) []byte { return shell.ProcessEvent(data) }
package bridge
