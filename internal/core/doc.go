// Package core implements a reference engine behind the message boundary.
//
// The engine holds an application model and turns encoded events into
// encoded effect batches. Every effect in a batch carries a correlation ID;
// effects that expect an answer keep a continuation registered under that ID
// until the host calls HandleResponse with it.
//
// ARCHITECTURE:
//
// One unit of work per call:
// Each ProcessEvent or HandleResponse call runs decode, update, ID
// assignment and encode under a single mutex. View takes the read side of the
// same lock. This mutex is the engine's own synchronization; the boundary
// layer above adds none.
//
// Commit on success only:
// The new model and newly registered continuations become visible only after
// the effect batch has been encoded. A failed call leaves the engine exactly
// as it was.
//
// Wire format:
// Canonical JSON from package ir. The engine never interprets event payloads
// or responses; the App does.
package core
