package scenario

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bananas/internal/inventory"
)

// Scenario drives a fresh inventory manager through a list of steps and
// asserts on the resulting action log and final inventory.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are executed in order against one manager.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final log and inventory.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpAdd           = "add"
	OpRemove        = "remove"
	OpDistribute    = "distribute"
	OpSort          = "sort"
	OpRemoveSpoiled = "remove_spoiled"
	OpStats         = "stats"
	OpItems         = "items"
)

var knownOps = map[string]bool{
	OpAdd:           true,
	OpRemove:        true,
	OpDistribute:    true,
	OpSort:          true,
	OpRemoveSpoiled: true,
	OpStats:         true,
	OpItems:         true,
}

// Step is a single manager operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Freshness is the argument to add.
	Freshness *int `yaml:"freshness,omitempty"`

	// ID is the argument to remove.
	ID *int `yaml:"id,omitempty"`

	// Recipients is the argument to distribute.
	Recipients []string `yaml:"recipients,omitempty"`

	// Expect validates the step outcome. If nil the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expected error kinds.
const (
	ErrorValidation            = "validation"
	ErrorInsufficientInventory = "insufficient_inventory"
)

// Expect describes the expected outcome of a step.
// Only the fields that are set are checked.
type Expect struct {
	// Error is the expected error kind; empty means success.
	Error string `yaml:"error,omitempty"`

	// ID is the id of the item created by add.
	ID *int `yaml:"id,omitempty"`

	// Count is the length of the returned slice (distribute, sort,
	// remove_spoiled, items) or the number of items left after remove.
	Count *int `yaml:"count,omitempty"`

	// Recipients are the recipients returned by distribute, in order.
	Recipients []string `yaml:"recipients,omitempty"`

	// Freshness lists the freshness of returned items, in order.
	// For sort it is the inventory after sorting.
	Freshness []int `yaml:"freshness,omitempty"`

	// Total and Average are checked against stats.
	Total   *int     `yaml:"total,omitempty"`
	Average *float64 `yaml:"average,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Actions is the expected relative order of log entry types (log_order).
	Actions []string `yaml:"actions,omitempty"`

	// Action and Count are used by log_count.
	Action string `yaml:"action,omitempty"`
	Count  int    `yaml:"count,omitempty"`

	// Freshness is the expected final inventory, in order (final_items).
	Freshness []int `yaml:"freshness,omitempty"`
}

// Assertion type constants.
const (
	AssertLogOrder    = "log_order"
	AssertLogCount    = "log_count"
	AssertFinalItems  = "final_items"
	AssertLogVerified = "log_verified"
)

// Load reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or fails validation.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario from YAML bytes.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks that required fields are present and consistent.
func Validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	if step.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if !knownOps[step.Op] {
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	switch step.Op {
	case OpAdd:
		if step.Freshness == nil {
			return fmt.Errorf("steps[%d]: freshness is required for add", index)
		}
	case OpRemove:
		if step.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for remove", index)
		}
	case OpDistribute:
		if step.Recipients == nil {
			return fmt.Errorf("steps[%d]: recipients is required for distribute", index)
		}
	}

	if step.Expect != nil {
		switch step.Expect.Error {
		case "", ErrorValidation, ErrorInsufficientInventory:
		default:
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, step.Expect.Error)
		}
		for _, field := range step.Expect.setFields() {
			if !slices.Contains(expectFields[step.Op], field) {
				return fmt.Errorf("steps[%d].expect: %s does not apply to %s", index, field, step.Op)
			}
		}
	}
	return nil
}

// expectFields lists the expect fields each op produces a value for.
// error applies to every op.
var expectFields = map[string][]string{
	OpAdd:           {"id", "freshness"},
	OpRemove:        {"count"},
	OpDistribute:    {"count", "recipients", "freshness"},
	OpSort:          {"count", "freshness"},
	OpRemoveSpoiled: {"count", "freshness"},
	OpStats:         {"total", "average"},
	OpItems:         {"count", "freshness"},
}

// setFields returns the names of the non-error fields that are set.
func (e *Expect) setFields() []string {
	var fields []string
	if e.ID != nil {
		fields = append(fields, "id")
	}
	if e.Count != nil {
		fields = append(fields, "count")
	}
	if e.Recipients != nil {
		fields = append(fields, "recipients")
	}
	if e.Freshness != nil {
		fields = append(fields, "freshness")
	}
	if e.Total != nil {
		fields = append(fields, "total")
	}
	if e.Average != nil {
		fields = append(fields, "average")
	}
	return fields
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertLogOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for log_order", index)
		}
		for _, action := range a.Actions {
			if !inventory.ActionType(action).Valid() {
				return fmt.Errorf("assertions[%d]: unknown action %q", index, action)
			}
		}
	case AssertLogCount:
		if !inventory.ActionType(a.Action).Valid() {
			return fmt.Errorf("assertions[%d]: unknown action %q", index, a.Action)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFinalItems, AssertLogVerified:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
