package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/corebridge/internal/ir"
)

// Snapshot renders a result's trace as canonical JSON:
//
//	{"scenario":<name>,"trace":[<event>...]}
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make(ir.Array, len(result.Trace))
	for i, ev := range result.Trace {
		trace[i] = ev.Value()
	}
	return ir.MarshalCanonical(ir.Obj(
		ir.O("scenario", ir.String(scenarioName)),
		ir.O("trace", trace),
	))
}

// AssertGolden compares the result's trace against
// testdata/golden/{scenarioName}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}

// RunWithGolden runs the scenario and compares its trace against the golden
// file named after the scenario.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...RunOption) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}
