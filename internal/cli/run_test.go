package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bananas/internal/testutil"
)

const passingScenario = `name: pass
steps:
  - op: add
    freshness: 8
  - op: add
    freshness: 0
  - op: remove_spoiled
    expect:
      count: 1
assertions:
  - type: log_verified
`

const failingScenario = `name: fail
steps:
  - op: add
    freshness: 3
    expect:
      id: 2
assertions:
  - type: final_items
    freshness: [4]
`

// execute runs a subcommand with a fixed run id and returns stdout.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, error) {
	t.Helper()

	out, _, err := executeWith(t, newCmd, &RootOptions{Format: format}, nil, args...)
	return out, err
}

// executeWith runs a subcommand with the given options and stdin and returns
// stdout and stderr. A nil RunIDs gets the fixed "run-1" generator.
func executeWith(t *testing.T, newCmd func(*RootOptions) *cobra.Command, rootOpts *RootOptions, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	if rootOpts.RunIDs == nil {
		rootOpts.RunIDs = testutil.NewFixedRunIDGenerator("run-1")
	}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := newCmd(rootOpts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewRunCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunCommandText(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "pass.yaml", passingScenario)

	out, err := execute(t, NewRunCommand, "text", path)
	require.NoError(t, err)

	assert.Contains(t, out, "pass")
	assert.Contains(t, out, "(run run-1)")
	assert.Contains(t, out, "#1 freshness 8")
	assert.Contains(t, out, "Statistics: total=1 average=8.00")
	assert.Contains(t, out, `{"id":1,"freshness":8}`)
	assert.Contains(t, out, "REMOVE_SPOILED")
	assert.Contains(t, out, "✓ pass")
}

func TestRunCommandJSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "pass.yaml", passingScenario)

	out, err := execute(t, NewRunCommand, "json", path)
	require.NoError(t, err)

	var resp struct {
		Status  string `json:"status"`
		TraceID string `json:"trace_id"`
		Data    struct {
			Name  string           `json:"name"`
			Pass  bool             `json:"pass"`
			Items []map[string]int `json:"items"`
			Log   []map[string]any `json:"log"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.TraceID)
	assert.Equal(t, "pass", resp.Data.Name)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, []map[string]int{{"id": 1, "freshness": 8}}, resp.Data.Items)
	require.Len(t, resp.Data.Log, 3)
	assert.Equal(t, "REMOVE_SPOILED", resp.Data.Log[2]["type"])
	assert.NotEmpty(t, resp.Data.Log[2]["hash"])
}

func TestRunCommandFailingScenario(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "fail.yaml", failingScenario)

	out, err := execute(t, NewRunCommand, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "expected id 2, got 1")
	assert.Contains(t, out, "expected freshness [4], got [3]")
}

func TestRunCommandFailingScenarioJSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "fail.yaml", failingScenario)

	out, err := execute(t, NewRunCommand, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "run-1", resp.TraceID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeScenario, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 2)
}

func TestRunCommandMissingFile(t *testing.T) {
	_, err := execute(t, NewRunCommand, "text", "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRunCommandMalformedJSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.yaml", "name: bad\nsteps:\n  - op: eat\n")

	out, err := execute(t, NewRunCommand, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeLoad, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `unknown op "eat"`)
}

func TestRunCommandLogOut(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "pass.yaml", passingScenario)
	logPath := filepath.Join(dir, "pass.log.json")

	_, err := execute(t, NewRunCommand, "text", path, "--log-out", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "ADD", entries[0]["type"])
	assert.Equal(t, "", entries[0]["prev_hash"])
	assert.Equal(t, entries[0]["hash"], entries[1]["prev_hash"])
}

func TestRunCommandLogOutUnwritable(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "pass.yaml", passingScenario)

	_, err := execute(t, NewRunCommand, "text", path, "--log-out", filepath.Join(t.TempDir(), "missing", "log.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to export action log")
}
