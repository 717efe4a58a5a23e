package instant

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"
)

// NanosPerSec is the number of nanoseconds in one second.
const NanosPerSec uint32 = 1_000_000_000

// MaxCalendarSeconds is the last second ToTime accepts: 9999-12-31T23:59:59Z,
// the end of the RFC 3339 range time.Time can format and marshal.
const MaxCalendarSeconds uint64 = 253402300799

// binarySize is the length of the MarshalBinary encoding.
const binarySize = 12

// Instant is a point in time (UTC): whole seconds since the Unix epoch plus
// nanoseconds since the last whole second.
//
// The fields are unexported so that nanos < NanosPerSec holds for every value.
// The zero Instant is the Unix epoch. Instants compare with ==.
type Instant struct {
	seconds uint64
	nanos   uint32
}

// New creates an Instant from seconds since the Unix epoch and nanoseconds
// since the last second.
//
// Fails with INVALID_INSTANT if nanos >= NanosPerSec. Seconds are not bounded
// here; see ToTime.
func New(seconds uint64, nanos uint32) (Instant, error) {
	if nanos >= NanosPerSec {
		return Instant{}, invalidInstant("nanos %d out of range [0, %d)", nanos, NanosPerSec)
	}
	return Instant{seconds: seconds, nanos: nanos}, nil
}

// Seconds returns the whole seconds since the Unix epoch.
func (i Instant) Seconds() uint64 { return i.seconds }

// Nanos returns the nanoseconds since the last whole second.
func (i Instant) Nanos() uint32 { return i.nanos }

// Compare returns -1, 0 or +1 depending on whether i is before, equal to, or
// after other.
func (i Instant) Compare(other Instant) int {
	switch {
	case i.seconds < other.seconds:
		return -1
	case i.seconds > other.seconds:
		return 1
	case i.nanos < other.nanos:
		return -1
	case i.nanos > other.nanos:
		return 1
	}
	return 0
}

// Before reports whether i is strictly before other.
func (i Instant) Before(other Instant) bool {
	return i.Compare(other) < 0
}

// ToTime converts the Instant to a UTC time.Time.
//
// Fails with INVALID_INSTANT if seconds exceed MaxCalendarSeconds.
func (i Instant) ToTime() (time.Time, error) {
	if i.seconds > MaxCalendarSeconds {
		return time.Time{}, invalidInstant("seconds %d beyond calendar range (max %d)", i.seconds, MaxCalendarSeconds)
	}
	return time.Unix(int64(i.seconds), int64(i.nanos)).UTC(), nil
}

// FromTime converts a time.Time to an Instant, taking its Unix seconds and
// sub-second nanoseconds.
//
// Fails with INVALID_TIME if t is before the Unix epoch or after
// 9999-12-31T23:59:59Z, so that FromTime and ToTime accept the same range.
func FromTime(t time.Time) (Instant, error) {
	secs := t.Unix()
	if secs < 0 {
		return Instant{}, invalidTime("unix seconds %d before epoch", secs)
	}
	if uint64(secs) > MaxCalendarSeconds {
		return Instant{}, invalidTime("unix seconds %d beyond calendar range (max %d)", secs, MaxCalendarSeconds)
	}
	// Nanosecond is always in [0, 1e9).
	return Instant{seconds: uint64(secs), nanos: uint32(t.Nanosecond())}, nil
}

// String formats the Instant as RFC 3339 with nanoseconds when it fits the
// calendar range, and as "<seconds>.<nanos>s" otherwise.
func (i Instant) String() string {
	t, err := i.ToTime()
	if err != nil {
		return fmt.Sprintf("%d.%09ds", i.seconds, i.nanos)
	}
	return t.Format(time.RFC3339Nano)
}

// wireInstant is the JSON record. Pointers detect missing fields.
type wireInstant struct {
	Nanos   *uint32 `json:"nanos"`
	Seconds *uint64 `json:"seconds"`
}

// MarshalJSON encodes {"nanos":N,"seconds":S} with keys in canonical order.
func (i Instant) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `{"nanos":%d,"seconds":%d}`, i.nanos, i.seconds), nil
}

// UnmarshalJSON decodes the wire record. Both fields are required and nanos
// is validated as in New. A JSON null leaves the receiver unchanged.
func (i *Instant) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var w wireInstant
	if err := json.Unmarshal(data, &w); err != nil {
		return invalidInstant("decode: %v", err)
	}
	if w.Seconds == nil || w.Nanos == nil {
		return invalidInstant("decode: seconds and nanos are required")
	}
	v, err := New(*w.Seconds, *w.Nanos)
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// MarshalBinary encodes seconds then nanos, big-endian.
func (i Instant) MarshalBinary() ([]byte, error) {
	buf := make([]byte, binarySize)
	binary.BigEndian.PutUint64(buf[:8], i.seconds)
	binary.BigEndian.PutUint32(buf[8:], i.nanos)
	return buf, nil
}

// UnmarshalBinary decodes the MarshalBinary form and validates nanos.
func (i *Instant) UnmarshalBinary(data []byte) error {
	if len(data) != binarySize {
		return invalidInstant("binary length %d, want %d", len(data), binarySize)
	}
	v, err := New(binary.BigEndian.Uint64(data[:8]), binary.BigEndian.Uint32(data[8:]))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
