package scenario

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/bananas/internal/inventory"
)

// RunOption configures Run.
type RunOption func(*runner)

// WithRunIDGenerator sets the run id source. Tests use a fixed generator.
func WithRunIDGenerator(gen RunIDGenerator) RunOption {
	return func(r *runner) {
		if gen != nil {
			r.ids = gen
		}
	}
}

// WithLogger sets the logger passed to the manager and used for step logs.
func WithLogger(logger *slog.Logger) RunOption {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type runner struct {
	ids    RunIDGenerator
	logger *slog.Logger
}

// Run executes the scenario against a fresh manager.
//
// Failed expectations and assertions are reported in Result.Errors; the
// returned error is only for scenarios that cannot run at all.
func Run(s *Scenario, opts ...RunOption) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("scenario is nil")
	}
	if err := Validate(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	r := &runner{
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	result := NewResult(r.ids.Generate(), s.Name)
	logger := r.logger.With("scenario", s.Name, "run_id", result.RunID)
	m := inventory.New(inventory.WithLogger(logger))

	for i, step := range s.Steps {
		sr, err := executeStep(m, i, step)
		result.Steps = append(result.Steps, sr)
		for _, msg := range checkExpect(m, step, sr, err) {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Op, msg))
		}
		logger.Debug("step executed", "index", i, "op", step.Op, "error", sr.Error)
	}

	result.Items = m.Items()
	result.Stats = m.Statistics()
	result.Log = m.ActionsLog()

	for i, a := range s.Assertions {
		if err := evaluateAssertion(a, result); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	logger.Info("scenario finished", "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// executeStep runs one operation. The returned error is the manager's error,
// which is also recorded in StepResult.Error.
func executeStep(m *inventory.Manager, index int, step Step) (StepResult, error) {
	sr := StepResult{Index: index, Op: step.Op}

	var err error
	switch step.Op {
	case OpAdd:
		var item inventory.Item
		item, err = m.AddItem(*step.Freshness)
		if err == nil {
			sr.Output = item
		}
	case OpRemove:
		m.RemoveItem(*step.ID)
	case OpDistribute:
		var allocs []inventory.Allocation
		allocs, err = m.Distribute(step.Recipients)
		if err == nil {
			sr.Output = allocs
		}
	case OpSort:
		m.SortByFreshness()
		sr.Output = m.Items()
	case OpRemoveSpoiled:
		sr.Output = m.RemoveSpoiled()
	case OpStats:
		sr.Output = m.Statistics()
	case OpItems:
		sr.Output = m.Items()
	}

	if err != nil {
		sr.Error = err.Error()
	}
	return sr, err
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case inventory.IsValidationError(err):
		return ErrorValidation
	case inventory.IsInsufficientInventory(err):
		return ErrorInsufficientInventory
	default:
		return "unknown"
	}
}

// checkExpect returns one message per mismatch between the step outcome and
// its expectation.
func checkExpect(m *inventory.Manager, step Step, sr StepResult, stepErr error) []string {
	want := step.Expect
	if want == nil {
		want = &Expect{}
	}

	gotKind := errorKind(stepErr)
	if gotKind != want.Error {
		if want.Error == "" {
			return []string{fmt.Sprintf("unexpected error: %v", stepErr)}
		}
		return []string{fmt.Sprintf("expected %s error, got %q", want.Error, gotKind)}
	}
	if stepErr != nil {
		return nil
	}

	var msgs []string
	switch out := sr.Output.(type) {
	case inventory.Item:
		if want.ID != nil && out.ID != *want.ID {
			msgs = append(msgs, fmt.Sprintf("expected id %d, got %d", *want.ID, out.ID))
		}
		if want.Freshness != nil && !slices.Equal(want.Freshness, []int{out.Freshness}) {
			msgs = append(msgs, fmt.Sprintf("expected freshness %v, got [%d]", want.Freshness, out.Freshness))
		}
	case []inventory.Allocation:
		items := make([]inventory.Item, len(out))
		recipients := make([]string, len(out))
		for i, a := range out {
			items[i] = a.Item
			recipients[i] = a.Recipient
		}
		msgs = append(msgs, checkItems(want, items)...)
		if want.Recipients != nil && !slices.Equal(want.Recipients, recipients) {
			msgs = append(msgs, fmt.Sprintf("expected recipients %v, got %v", want.Recipients, recipients))
		}
	case []inventory.Item:
		msgs = append(msgs, checkItems(want, out)...)
	case inventory.Statistics:
		if want.Total != nil && out.Total != *want.Total {
			msgs = append(msgs, fmt.Sprintf("expected total %d, got %d", *want.Total, out.Total))
		}
		if want.Average != nil && out.AverageFreshness != *want.Average {
			msgs = append(msgs, fmt.Sprintf("expected average %v, got %v", *want.Average, out.AverageFreshness))
		}
	case nil:
		// remove returns nothing; report item count if asked.
		if want.Count != nil {
			if n := len(m.Items()); n != *want.Count {
				msgs = append(msgs, fmt.Sprintf("expected %d items remaining, got %d", *want.Count, n))
			}
		}
	}
	return msgs
}

func checkItems(want *Expect, items []inventory.Item) []string {
	var msgs []string
	if want.Count != nil && len(items) != *want.Count {
		msgs = append(msgs, fmt.Sprintf("expected count %d, got %d", *want.Count, len(items)))
	}
	if want.Freshness != nil {
		got := freshnessOf(items)
		if !slices.Equal(want.Freshness, got) {
			msgs = append(msgs, fmt.Sprintf("expected freshness %v, got %v", want.Freshness, got))
		}
	}
	return msgs
}

func freshnessOf(items []inventory.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Freshness
	}
	return out
}
