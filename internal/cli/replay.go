package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/corebridge/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - defaults to the latest session
}

// ReplayMismatch is one diverging exchange.
type ReplayMismatch struct {
	Seq   int64  `json:"seq"`
	Op    string `json:"op"`
	Want  string `json:"want"`
	Got   string `json:"got,omitempty"`
	Error string `json:"error,omitempty"`
}

// ReplayResult is the output of the replay command.
type ReplayResult struct {
	Session       string           `json:"session"`
	Exchanges     int              `json:"exchanges"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches"`
}

// Text renders the result for humans.
func (r ReplayResult) Text() string {
	var b strings.Builder
	status := "deterministic"
	if !r.Deterministic {
		status = fmt.Sprintf("%d mismatch(es)", len(r.Mismatches))
	}
	fmt.Fprintf(&b, "session %s: %d exchanges, %s", r.Session, r.Exchanges, status)
	for _, m := range r.Mismatches {
		if m.Error != "" {
			fmt.Fprintf(&b, "\n  seq %d %s: %s", m.Seq, m.Op, m.Error)
			continue
		}
		fmt.Fprintf(&b, "\n  seq %d %s:\n    want %s\n    got  %s", m.Seq, m.Op, m.Want, m.Got)
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a journaled session and verify determinism",
		Long: `Replay a journaled session against a fresh engine and compare every
output byte for byte with the recorded one.

Exit codes:
  0 - Replay reproduced every output
  1 - At least one output differed
  2 - Command error (no database, unknown session)

Examples:
  corebridge replay --db ./journal.db
  corebridge replay --db ./journal.db --session 01890a5d-ac96-774b-bcce-b302099a8057`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database path (default $COREBRIDGE_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to replay (default: latest)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	db := opts.dbPath(opts.Database)
	if db == "" {
		return f.fail(ExitCommandError, ErrCodeInvalidArgs, "no database: pass --db or set COREBRIDGE_DB", nil, nil)
	}

	j, err := journal.Open(db)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "failed to open journal", nil, err)
	}
	defer j.Close()

	session := opts.Session
	if session == "" {
		session, err = j.LatestSession(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return f.fail(ExitCommandError, ErrCodeNoSessions, "journal has no sessions", nil, err)
		}
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeJournal, "failed to find latest session", nil, err)
		}
	}

	entries, err := j.ReadSession(ctx, session)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "failed to read session", nil, err)
	}
	if len(entries) == 0 {
		return f.fail(ExitCommandError, ErrCodeNoSessions, fmt.Sprintf("session %s not found", session), nil, nil)
	}

	opts.Logger.Debug("replaying session", "session", session, "exchanges", len(entries))
	report, err := journal.Replay(ctx, entries, opts.handlerFactory()())
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "replay aborted", nil, err)
	}

	out := ReplayResult{
		Session:       session,
		Exchanges:     report.Total,
		Deterministic: report.Deterministic,
		Mismatches:    make([]ReplayMismatch, 0, len(report.Mismatches)),
	}
	for _, m := range report.Mismatches {
		out.Mismatches = append(out.Mismatches, ReplayMismatch{
			Seq:   m.Seq,
			Op:    string(m.Op),
			Want:  string(m.Want),
			Got:   string(m.Got),
			Error: m.Err,
		})
	}

	if !report.Deterministic {
		return f.fail(ExitFailure, ErrCodeNondeterministic, "replay diverged from the journal", out, nil)
	}
	return f.Success(out)
}
