package journal

import (
	"context"
	"fmt"

	"github.com/roach88/corebridge/internal/bridge"
	"github.com/roach88/corebridge/internal/ir"
)

var _ bridge.Recorder = (*Journal)(nil)

// Record appends ex under the next logical seq. It implements
// bridge.Recorder.
//
// seq is arrival order at the recorder. Concurrent host calls may arrive out
// of engine order, so ex.Ordinal is stored as well and reads order by it.
// The first Record of a session registers its token; if another journal
// registered it meanwhile, Record fails with ErrSessionExists.
func (j *Journal) Record(ctx context.Context, ex bridge.Exchange) error {
	if !ex.Op.Valid() {
		return fmt.Errorf("record exchange: unknown op %q", ex.Op)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record exchange: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if !j.registered {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (token) VALUES (?)
			ON CONFLICT(token) DO NOTHING
		`, j.session)
		if err != nil {
			return fmt.Errorf("record exchange: register session: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("record exchange: rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("record exchange: session %q: %w", j.session, ErrSessionExists)
		}
	}

	seq := j.seq + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO exchanges
		(session, seq, ordinal, op, request_id, input, output, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		j.session,
		seq,
		int64(ex.Ordinal),
		string(ex.Op),
		int64(ex.RequestID),
		ex.Input,
		ex.Output,
		OutputDigest(ex.Op, ex.Output),
	)
	if err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record exchange: commit: %w", err)
	}
	j.registered = true
	j.seq = seq
	return nil
}

// OutputDigest is the content digest stored alongside an exchange output.
func OutputDigest(op bridge.Op, output []byte) string {
	if op == bridge.OpView {
		return ir.DigestBytes(ir.DomainView, output)
	}
	return ir.DigestBytes(ir.DomainEffects, output)
}
