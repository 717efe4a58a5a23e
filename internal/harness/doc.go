// Package harness runs scripted host sessions against the catfacts app.
//
// A scenario plays the host: it sends events, answers requests and asks for
// the view, in order, through a fresh bridge.Shell. Every exchange is captured
// in a trace that can be compared against a golden file.
//
// # Scenario Format
//
//	name: fetch_fact
//	description: "Fetching a fact renders it"
//	steps:
//	  - event:
//	      name: fetch
//	    expect:
//	      effects: [http, http, time]
//	  - respond:
//	      ref: 1
//	      value: { status: 200, body: { fact: "Cats purr" } }
//	  - view: true
//	    expect:
//	      view: { fact: "(1) Cats purr" }
//
// Each step has exactly one of event, respond or view. ref is the
// correlation id of a request issued by an earlier step; ids in a fresh engine
// start at 1 and increase by one per request. expect.effects lists the
// capabilities of the returned batch in order; expect.view is a subset match
// on the view's fields.
//
// Scenarios are checked against an embedded CUE schema before they run.
//
// # Deterministic Testing
//
// Every run builds a new engine, so request ids and the trace's logical seq
// values are identical across runs. Fatal boundary failures are recovered and
// reported as a failed result rather than crashing the caller.
package harness
