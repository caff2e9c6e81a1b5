package scenario

import "github.com/roach88/bananas/internal/inventory"

// Result is the outcome of a scenario run.
type Result struct {
	// RunID correlates this run in CLI output.
	RunID string `json:"run_id"`

	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// Steps records what each step returned.
	Steps []StepResult `json:"steps"`

	// Items and Stats describe the final inventory.
	Items []inventory.Item     `json:"items"`
	Stats inventory.Statistics `json:"stats"`

	// Log is the final action log.
	Log []inventory.Entry `json:"log"`
}

// StepResult captures the outcome of one step.
type StepResult struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Error  string `json:"error,omitempty"`
	Output any    `json:"output,omitempty"`
}

// NewResult creates a passing result.
func NewResult(runID, name string) *Result {
	return &Result{
		RunID:  runID,
		Name:   name,
		Pass:   true,
		Errors: []string{},
		Steps:  []StepResult{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
