package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_FetchFact(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fetch_fact.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}
