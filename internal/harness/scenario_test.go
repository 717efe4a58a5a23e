package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fetch_fact.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fetch_fact", scenario.Name)
	require.Len(t, scenario.Steps, 7)
	assert.Equal(t, "get_platform", scenario.Steps[0].Event.Name)
	assert.Equal(t, uint32(1), scenario.Steps[1].Respond.Ref)
	assert.Equal(t, "iOS", scenario.Steps[1].Respond.Value)
	assert.Equal(t, []string{"http", "http", "time"}, scenario.Steps[2].Expect.Effects)
	assert.True(t, scenario.Steps[6].View)
	assert.Equal(t, "Hello iOS", scenario.Steps[6].Expect.View["platform"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing name",
			content: `
description: "x"
steps:
  - view: true
`,
		},
		{
			name: "bad name",
			content: `
name: "Has Spaces"
description: "x"
steps:
  - view: true
`,
		},
		{
			name: "empty steps",
			content: `
name: empty
description: "x"
steps: []
`,
		},
		{
			name: "unknown top-level field",
			content: `
name: typo
description: "x"
step:
  - view: true
`,
		},
		{
			name: "two actions in one step",
			content: `
name: double
description: "x"
steps:
  - event: { name: fetch }
    view: true
`,
		},
		{
			name: "ref zero",
			content: `
name: zero
description: "x"
steps:
  - respond: { ref: 0, value: 1 }
`,
		},
		{
			name: "view expectation on event step",
			content: `
name: misplaced
description: "x"
steps:
  - event: { name: fetch }
    expect:
      view: { fact: "" }
`,
		},
		{
			name: "malformed yaml",
			content: `
name: [unclosed
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidateYAML_Valid(t *testing.T) {
	data, err := os.ReadFile("testdata/scenarios/fetch_fact.yaml")
	require.NoError(t, err)
	assert.NoError(t, ValidateYAML("fetch_fact.yaml", data))
}

func TestValidateScenario_ExactlyOneAction(t *testing.T) {
	s := &Scenario{Name: "x", Steps: []Step{{}}}
	err := validateScenario(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of event, respond or view")
}
