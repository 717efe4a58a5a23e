// Package instant provides Instant, a validated UTC point in time that can be
// carried inside boundary messages.
//
// An Instant is a pair of an unsigned whole-second count since the Unix epoch
// (1970-01-01T00:00:00Z) and a sub-second nanosecond count. The nanosecond
// field is always below NanosPerSec; an Instant that breaks this can not be
// constructed or decoded.
//
// Wire shape (JSON): {"nanos": <uint32>, "seconds": <uint64>}
// Wire shape (binary): 8 bytes big-endian seconds, 4 bytes big-endian nanos.
//
// Conversions to and from time.Time fail when the value does not fit the
// other side. The two directions report the same overflow condition with
// different codes (INVALID_INSTANT going out, INVALID_TIME coming in); callers
// that only care about "does not fit" should accept either.
package instant
