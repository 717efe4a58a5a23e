package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
)

var errMalformed = errors.New("malformed")

// fakeHandler counts calls and echoes a step counter. Input "bad" fails and
// input "panic" panics.
// ProcessEvent reports the step counter as its ordinal; the other
// operations report none.
type fakeHandler struct {
	mu    sync.Mutex
	steps int
}

func (h *fakeHandler) ProcessEvent(ctx context.Context, data []byte) ([]byte, error) {
	if bytes.Equal(data, []byte("bad")) {
		return nil, errMalformed
	}
	if bytes.Equal(data, []byte("panic")) {
		panic("kaboom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps++
	ReportOrdinal(ctx, uint64(h.steps))
	return []byte(fmt.Sprintf(`[{"step":%d}]`, h.steps)), nil
}

func (h *fakeHandler) HandleResponse(_ context.Context, id uint32, data []byte) ([]byte, error) {
	if id == 0 || bytes.Equal(data, []byte("bad")) {
		return nil, errMalformed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps++
	return []byte("[]"), nil
}

func (h *fakeHandler) View(context.Context) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.steps < 0 {
		return nil, errors.New("unencodable view")
	}
	return []byte(fmt.Sprintf(`{"steps":%d}`, h.steps)), nil
}

func (h *fakeHandler) Steps() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.steps
}
