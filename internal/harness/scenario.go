package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted host session.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Steps run in order against one engine.
	Steps []Step `yaml:"steps"`
}

// Step is one host action. Exactly one of Event, Respond or View is set.
type Step struct {
	Event   *EventStep   `yaml:"event,omitempty"`
	Respond *RespondStep `yaml:"respond,omitempty"`
	View    bool         `yaml:"view,omitempty"`

	// Expect is checked against the step's output. Optional.
	Expect *Expect `yaml:"expect,omitempty"`
}

// EventStep sends an event.
type EventStep struct {
	Name    string         `yaml:"name"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

// RespondStep answers an earlier request.
type RespondStep struct {
	// Ref is the correlation id of the request being answered.
	Ref uint32 `yaml:"ref"`

	// Value is the response body. Floats and nulls are rejected.
	Value any `yaml:"value"`
}

// Expect describes the expected output of a step.
type Expect struct {
	// Effects lists the capabilities of the returned batch, in order.
	Effects []string `yaml:"effects,omitempty"`

	// View is a subset match on the view's fields. Only valid on view steps.
	View map[string]any `yaml:"view,omitempty"`
}

// LoadScenario reads, schema-checks and parses a scenario YAML file.
// Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario is LoadScenario over bytes already in memory. filename is
// used in error positions only.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := ValidateYAML(filename, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks what the schema cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		n := 0
		if step.Event != nil {
			n++
			if step.Event.Name == "" {
				return fmt.Errorf("steps[%d].event: name is required", i)
			}
		}
		if step.Respond != nil {
			n++
			if step.Respond.Ref == 0 {
				return fmt.Errorf("steps[%d].respond: ref must be a request id (>= 1)", i)
			}
			if step.Respond.Value == nil {
				return fmt.Errorf("steps[%d].respond: value is required", i)
			}
		}
		if step.View {
			n++
		}
		if n != 1 {
			return fmt.Errorf("steps[%d]: exactly one of event, respond or view is required", i)
		}
		if step.Expect != nil && step.Expect.View != nil && !step.View {
			return fmt.Errorf("steps[%d].expect: view can only be checked on a view step", i)
		}
	}
	return nil
}
