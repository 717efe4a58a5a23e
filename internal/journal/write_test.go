package journal

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/corebridge/internal/bridge"
)

func TestRecord_AssignsSequentialSeq(t *testing.T) {
	j, _ := createTestJournal(t, WithSession("s1"))
	ctx := t.Context()

	exchanges := []bridge.Exchange{
		{Op: bridge.OpProcessEvent, Input: []byte(`{"name":"fetch"}`), Output: []byte(`[]`)},
		{Op: bridge.OpHandleResponse, RequestID: 4294967295, Input: []byte(`"x"`), Output: []byte(`[]`)},
		{Op: bridge.OpView, Output: []byte(`{}`)},
	}
	for _, ex := range exchanges {
		if err := j.Record(ctx, ex); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	entries, err := j.ReadSession(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Seq != int64(i+1) {
			t.Errorf("entry %d seq = %d, want %d", i, e.Seq, i+1)
		}
		if e.Session != "s1" {
			t.Errorf("entry %d session = %q", i, e.Session)
		}
		if e.Exchange.Op != exchanges[i].Op || e.Exchange.RequestID != exchanges[i].RequestID {
			t.Errorf("entry %d = %+v, want %+v", i, e.Exchange, exchanges[i])
		}
		if !bytes.Equal(e.Exchange.Input, exchanges[i].Input) || !bytes.Equal(e.Exchange.Output, exchanges[i].Output) {
			t.Errorf("entry %d payload mismatch", i)
		}
		if e.Digest != OutputDigest(e.Exchange.Op, e.Exchange.Output) {
			t.Errorf("entry %d digest mismatch", i)
		}
	}
	if entries[2].Exchange.Input != nil {
		t.Errorf("view input = %q, want nil", entries[2].Exchange.Input)
	}
}

func TestRecord_RejectsUnknownOp(t *testing.T) {
	j, _ := createTestJournal(t)

	err := j.Record(t.Context(), bridge.Exchange{Op: "drop_table", Output: []byte(`[]`)})
	if err == nil || !strings.Contains(err.Error(), "unknown op") {
		t.Errorf("Record() error = %v, want unknown op", err)
	}
}

func TestOpen_RejectsRecordedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := t.Context()

	j1, err := Open(path, WithSession("once"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := j1.Record(ctx, bridge.Exchange{Op: bridge.OpView, Output: []byte(`{}`)}); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	j1.Close()

	j2, err := Open(path, WithSession("once"))
	if !errors.Is(err, ErrSessionExists) {
		if j2 != nil {
			j2.Close()
		}
		t.Fatalf("reopen error = %v, want ErrSessionExists", err)
	}
}

func TestOpen_UnrecordedSessionCanBeReused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path, WithSession("empty"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	j1.Close()

	j2, err := Open(path, WithSession("empty"))
	if err != nil {
		t.Fatalf("reopen of a session with no exchanges failed: %v", err)
	}
	j2.Close()
}

func TestRecord_SessionClaimedByAnotherJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := t.Context()
	view := bridge.Exchange{Op: bridge.OpView, Output: []byte(`{}`)}

	j1, err := Open(path, WithSession("race"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j1.Close()
	j2, err := Open(path, WithSession("race"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j2.Close()

	if err := j1.Record(ctx, view); err != nil {
		t.Fatalf("first Record() failed: %v", err)
	}
	if err := j2.Record(ctx, view); !errors.Is(err, ErrSessionExists) {
		t.Errorf("second journal Record() error = %v, want ErrSessionExists", err)
	}
	if err := j1.Record(ctx, view); err != nil {
		t.Errorf("owner Record() failed: %v", err)
	}

	entries, err := j1.ReadSession(ctx, "race")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestRecord_OrdersByOrdinal(t *testing.T) {
	j, _ := createTestJournal(t, WithSession("ordered"))
	ctx := t.Context()

	// Arrival order differs from engine order.
	for _, ord := range []uint64{2, 1, 3} {
		ex := bridge.Exchange{Op: bridge.OpView, Output: []byte(`{}`), Ordinal: ord}
		if err := j.Record(ctx, ex); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	entries, err := j.ReadSession(ctx, "ordered")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	wantSeq := []int64{2, 1, 3}
	for i, e := range entries {
		if e.Exchange.Ordinal != uint64(i+1) || e.Seq != wantSeq[i] {
			t.Errorf("entry %d = (ordinal %d, seq %d), want (ordinal %d, seq %d)",
				i, e.Exchange.Ordinal, e.Seq, i+1, wantSeq[i])
		}
	}
}

func TestOutputDigest_DomainSeparated(t *testing.T) {
	out := []byte(`{}`)
	if OutputDigest(bridge.OpView, out) == OutputDigest(bridge.OpProcessEvent, out) {
		t.Error("view and effect digests collide for identical bytes")
	}
	if OutputDigest(bridge.OpProcessEvent, out) != OutputDigest(bridge.OpHandleResponse, out) {
		t.Error("effect batches should share a digest domain")
	}
}
