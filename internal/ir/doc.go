// Package ir provides the constrained value model and canonical encoding used
// by the reference engine's wire messages.
//
// This package contains value types, canonical JSON, digests and message
// envelopes only. It imports nothing internal, so every other package can
// depend on it.
//
// Key design constraints:
//   - NO float types anywhere - use Int (int64) for numbers
//   - NO null in canonical output
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Decoders never return a partially decoded value
package ir
