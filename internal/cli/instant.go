package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/corebridge/internal/instant"
)

// InstantResult describes a validated instant.
type InstantResult struct {
	Seconds uint64          `json:"seconds"`
	Nanos   uint32          `json:"nanos"`
	Time    string          `json:"time,omitempty"`
	Wire    json.RawMessage `json:"wire"`
	Note    string          `json:"note,omitempty"`
}

// Text renders the result for humans.
func (r InstantResult) Text() string {
	s := fmt.Sprintf("wire: %s", r.Wire)
	if r.Time != "" {
		s += "\ntime: " + r.Time
	}
	if r.Note != "" {
		s += "\nnote: " + r.Note
	}
	return s
}

// NewInstantCommand creates the instant command.
func NewInstantCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "instant <seconds> [nanos]",
		Short: "Validate an instant and show its calendar time",
		Long: `Validate a (seconds, nanos) pair as an instant and show its wire form and
calendar time.

Exit codes:
  0 - Valid instant
  1 - nanos out of range
  2 - Arguments are not unsigned integers`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstant(rootOpts, args, cmd)
		},
	}
}

func runInstant(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	seconds, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("seconds %q is not an unsigned 64-bit integer", args[0]), nil, err)
	}
	var nanos uint64
	if len(args) == 2 {
		nanos, err = strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("nanos %q is not an unsigned 32-bit integer", args[1]), nil, err)
		}
	}

	i, err := instant.New(seconds, uint32(nanos))
	if err != nil {
		return f.fail(ExitFailure, string(instant.CodeInvalidInstant), err.Error(), nil, err)
	}

	wire, err := json.Marshal(i)
	if err != nil {
		return f.fail(ExitFailure, string(instant.CodeInvalidInstant), err.Error(), nil, err)
	}

	out := InstantResult{Seconds: i.Seconds(), Nanos: i.Nanos(), Wire: wire}
	if t, err := i.ToTime(); err != nil {
		out.Note = err.Error()
	} else {
		out.Time = t.Format(time.RFC3339Nano)
	}
	return f.Success(out)
}
