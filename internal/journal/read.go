package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/corebridge/internal/bridge"
)

// Entry is one recorded exchange.
type Entry struct {
	Session  string
	Seq      int64
	Exchange bridge.Exchange
	Digest   string
}

// SessionSummary describes one recorded session.
type SessionSummary struct {
	Token     string
	Exchanges int64
	LastSeq   int64
}

// Sessions lists every recorded session, oldest first. Age is the order in
// which sessions recorded their first exchange, whatever their tokens.
func (j *Journal) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.token, COUNT(e.seq), MAX(e.seq)
		FROM sessions s
		JOIN exchanges e ON e.session = s.token
		GROUP BY s.id
		ORDER BY s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.Token, &s.Exchanges, &s.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSession returns every exchange recorded under session in engine order:
// by commit ordinal, then by seq for exchanges that share one.
//
// Returns an empty slice (not nil) if the session has no exchanges.
func (j *Journal) ReadSession(ctx context.Context, session string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, ordinal, op, request_id, input, output, digest
		FROM exchanges
		WHERE session = ?
		ORDER BY ordinal ASC, seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return entries, nil
}

// LatestSession returns the most recently created session token, or
// sql.ErrNoRows if the journal is empty.
func (j *Journal) LatestSession(ctx context.Context) (string, error) {
	var token string
	err := j.db.QueryRowContext(ctx, `
		SELECT token FROM sessions
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&token)
	if err != nil {
		return "", err
	}
	return token, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e         Entry
		op        string
		ordinal   int64
		requestID int64
	)
	if err := rows.Scan(&e.Session, &e.Seq, &ordinal, &op, &requestID, &e.Exchange.Input, &e.Exchange.Output, &e.Digest); err != nil {
		return Entry{}, fmt.Errorf("scan exchange: %w", err)
	}
	e.Exchange.Op = bridge.Op(op)
	e.Exchange.Ordinal = uint64(ordinal)
	e.Exchange.RequestID = uint32(requestID)
	return e, nil
}
