package core

import "sync/atomic"

// Sequence hands out correlation IDs.
//
// IDs increase monotonically and wrap at 2^32; 0 is never returned so hosts
// can use it as "no request". Safe for concurrent use.
type Sequence struct {
	n atomic.Uint32
}

// NewSequence creates a sequence whose first ID is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence whose next ID is start+1.
// Used to resume numbering and to exercise wrap-around.
func NewSequenceAt(start uint32) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

// Next returns the next non-zero ID.
func (s *Sequence) Next() uint32 {
	for {
		if v := s.n.Add(1); v != 0 {
			return v
		}
	}
}

// Current returns the last ID handed out (0 if none).
func (s *Sequence) Current() uint32 {
	return s.n.Load()
}
