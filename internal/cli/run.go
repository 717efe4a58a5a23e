package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/corebridge/internal/harness"
	"github.com/roach88/corebridge/internal/ir"
	"github.com/roach88/corebridge/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Session  string
}

// RunResult is the output of the run command.
type RunResult struct {
	Scenario  string    `json:"scenario"`
	Pass      bool      `json:"pass"`
	Exchanges int       `json:"exchanges"`
	Session   string    `json:"session,omitempty"`
	View      ir.Object `json:"view,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

// Text renders the result for humans.
func (r RunResult) Text() string {
	var b strings.Builder
	status := "PASS"
	if !r.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "%s %s (%d exchanges)", status, r.Scenario, r.Exchanges)
	if r.Session != "" {
		fmt.Fprintf(&b, "\nsession: %s", r.Session)
	}
	if r.View != nil {
		if data, err := ir.MarshalCanonical(r.View); err == nil {
			fmt.Fprintf(&b, "\nview: %s", data)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  - %s", e)
	}
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against a fresh engine",
		Long: `Run a host scenario against a fresh catfacts engine.

With --db (or COREBRIDGE_DB) every exchange is journaled so the session can
be replayed later.

Exit codes:
  0 - All expectations matched
  1 - An expectation failed or the boundary aborted
  2 - Command error (unreadable scenario, database error)

Examples:
  corebridge run testdata/fetch_fact.yaml
  corebridge run --db ./journal.db testdata/fetch_fact.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database path (default $COREBRIDGE_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "new session token to record under (default: UUIDv7)")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeInvalidScenario, err.Error(), nil, err)
	}

	runOpts := []harness.RunOption{
		harness.WithLogger(opts.Logger),
		harness.WithHandlerFactory(opts.handlerFactory()),
	}

	var session string
	if db := opts.dbPath(opts.Database); db != "" {
		var jopts []journal.Option
		if opts.Session != "" {
			jopts = append(jopts, journal.WithSession(opts.Session))
		}
		j, err := journal.Open(db, jopts...)
		if errors.Is(err, journal.ErrSessionExists) {
			return f.fail(ExitCommandError, ErrCodeJournal,
				fmt.Sprintf("session %s is already recorded; replay it or pick a new --session", opts.Session), nil, err)
		}
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeJournal, "failed to open journal", nil, err)
		}
		defer j.Close()

		session = j.Session()
		runOpts = append(runOpts, harness.WithRecorder(j))
		opts.Logger.Debug("journaling exchanges", "db", db, "session", session)
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeInvalidScenario, err.Error(), nil, err)
	}

	out := RunResult{
		Scenario:  scenario.Name,
		Pass:      result.Pass,
		Exchanges: len(result.Trace),
		Session:   session,
		View:      result.View,
		Errors:    result.Errors,
	}
	if !result.Pass {
		return f.fail(ExitFailure, ErrCodeScenarioFailed, fmt.Sprintf("scenario %s failed", scenario.Name), out, nil)
	}
	return f.Success(out)
}
