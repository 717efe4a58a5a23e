// Package journal provides SQLite-backed durable storage for boundary
// exchanges.
//
// A journal is an append-only log of every successful call that crossed the
// boundary. Each process writes under its own session token, so one database
// can hold many runs side by side.
//
// # Ordering
//
//   - Every exchange carries a logical seq INTEGER, never a timestamp
//   - Reads are ORDER BY seq ASC; the same session always reads back the same
//     way
//
// # Replay
//
// Replay re-drives a fresh Handler with the recorded inputs and compares the
// outputs byte for byte. A deterministic engine reproduces every recorded
// output.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One connection: SQLite has a single writer
package journal
