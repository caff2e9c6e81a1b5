package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bananas/internal/inventory"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

func evaluateAssertion(a Assertion, result *Result) error {
	switch a.Type {
	case AssertLogOrder:
		return assertLogOrder(result.Log, a.Actions)
	case AssertLogCount:
		return assertLogCount(result.Log, a.Action, a.Count)
	case AssertFinalItems:
		return assertFinalItems(result.Items, a.Freshness)
	case AssertLogVerified:
		return inventory.VerifyLog(result.Log)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertLogOrder checks that actions appear in the log in the given relative
// order. Other entries may appear in between.
func assertLogOrder(log []inventory.Entry, actions []string) error {
	next := 0
	for _, e := range log {
		if next < len(actions) && string(e.Type) == actions[next] {
			next++
		}
	}
	if next == len(actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogOrder,
		Expected: "[" + strings.Join(actions, " ") + "] in order",
		Actual:   fmt.Sprintf("%v", logTypes(log)),
	}
}

func assertLogCount(log []inventory.Entry, action string, count int) error {
	n := 0
	for _, e := range log {
		if string(e.Type) == action {
			n++
		}
	}
	if n == count {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogCount,
		Expected: fmt.Sprintf("%d %s entries", count, action),
		Actual:   fmt.Sprintf("%d", n),
	}
}

func assertFinalItems(items []inventory.Item, freshness []int) error {
	got := freshnessOf(items)
	if len(got) == 0 && len(freshness) == 0 {
		return nil
	}
	if slices.Equal(got, freshness) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalItems,
		Expected: fmt.Sprintf("freshness %v", freshness),
		Actual:   fmt.Sprintf("%v", got),
	}
}

func logTypes(log []inventory.Entry) []string {
	out := make([]string, len(log))
	for i, e := range log {
		out[i] = string(e.Type)
	}
	return out
}
