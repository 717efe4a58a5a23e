package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/corebridge/internal/harness"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Scenario string `json:"scenario"`
	Steps    int    `json:"steps"`
}

// Text renders the result for humans.
func (r ValidationResult) Text() string {
	return fmt.Sprintf("OK %s (%d steps)", r.Scenario, r.Steps)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario without running it",
		Long: `Check a scenario file against the scenario schema without running it.

Exit codes:
  0 - Scenario is valid
  1 - Scenario is invalid`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return f.fail(ExitFailure, ErrCodeInvalidScenario, err.Error(), nil, err)
	}

	return f.Success(ValidationResult{
		Valid:    true,
		Scenario: scenario.Name,
		Steps:    len(scenario.Steps),
	})
}
