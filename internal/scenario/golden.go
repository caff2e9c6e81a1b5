package scenario

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bananas/internal/canon"
	"github.com/roach88/bananas/internal/inventory"
)

// LogSnapshot is the canonical JSON form of a run's action log without hash
// fields. Hashes are covered by log_verified; the snapshot pins content.
func LogSnapshot(name string, log []inventory.Entry) ([]byte, error) {
	entries := make([]any, len(log))
	for i, e := range log {
		entries[i] = e.Canonical()
	}
	return canon.MarshalCanonical(map[string]any{
		"scenario_name": name,
		"log":           entries,
	})
}

// AssertGolden compares the result's log against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func AssertGolden(t *testing.T, result *Result) error {
	t.Helper()

	snapshot, err := LogSnapshot(result.Name, result.Log)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, result.Name, snapshot)
	return nil
}

// RunWithGolden runs the scenario and compares its log against the golden file.
func RunWithGolden(t *testing.T, s *Scenario, opts ...RunOption) (*Result, error) {
	t.Helper()

	result, err := Run(s, opts...)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, result)
}
