package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bananas/internal/testutil"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, NewTestCommand, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestTestCommandMixedResults(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)
	testutil.WriteFile(t, dir, "fail.yaml", failingScenario)
	testutil.WriteFile(t, dir, "notes.txt", "ignored")

	out, err := execute(t, NewTestCommand, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "expected id 2, got 1")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandMixedResultsJSON(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)
	testutil.WriteFile(t, dir, "fail.yaml", failingScenario)

	out, err := execute(t, NewTestCommand, "json", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Total)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)
	testutil.WriteFile(t, dir, "fail.yaml", failingScenario)

	out, err := execute(t, NewTestCommand, "text", dir, "--filter", "pa*")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "✗ fail")
}

func TestTestCommandInvalidFilter(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)

	_, err := execute(t, NewTestCommand, "text", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "broken.yaml", "name: broken\n")

	out, err := execute(t, NewTestCommand, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)
	goldenPath := filepath.Join(dir, "golden", "pass.golden")

	_, err := execute(t, NewTestCommand, "text", dir, "--update")
	require.NoError(t, err)

	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Equal(t,
		`{"log":[{"payload":{"freshness":8,"id":1},"seq":1,"type":"ADD"},{"payload":{"freshness":0,"id":2},"seq":2,"type":"ADD"},{"payload":{"items":[{"freshness":0,"id":2}]},"seq":3,"type":"REMOVE_SPOILED"}],"scenario_name":"pass"}`,
		string(data))

	out, err := execute(t, NewTestCommand, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"log":[],"scenario_name":"pass"}`), 0644))
	out, err = execute(t, NewTestCommand, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "action log does not match golden file")
}

func TestTestCommandGoldenDirFlag(t *testing.T) {
	dir := t.TempDir()
	goldenDir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)

	_, err := execute(t, NewTestCommand, "text", dir, "--update", "--golden", goldenDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(goldenDir, "pass.golden"))
	assert.NoFileExists(t, filepath.Join(dir, "golden", "pass.golden"))
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.yaml", "x")
	testutil.WriteFile(t, dir, "b.yml", "x")
	testutil.WriteFile(t, dir, "c.json", "x")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	testutil.WriteFile(t, filepath.Join(dir, "nested"), "d.yaml", "x")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yml")}, files)
}

func TestTestCommandSiblingGoldenDir(t *testing.T) {
	root := t.TempDir()
	scenariosDir := filepath.Join(root, "scenarios")
	goldenDir := filepath.Join(root, "golden")
	require.NoError(t, os.MkdirAll(scenariosDir, 0755))
	require.NoError(t, os.MkdirAll(goldenDir, 0755))
	testutil.WriteFile(t, scenariosDir, "pass.yaml", passingScenario)
	testutil.WriteFile(t, goldenDir, "pass.golden", `{"log":[],"scenario_name":"pass"}`)

	out, err := execute(t, NewTestCommand, "text", scenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "action log does not match golden file")
}

func TestTestCommandRepositoryScenarios(t *testing.T) {
	out, errOut, err := executeWith(t, NewTestCommand, &RootOptions{Format: "text", Verbose: true}, nil,
		filepath.Join("..", "scenario", "testdata", "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, errOut, "golden directory: "+filepath.Join("..", "scenario", "testdata", "golden"))
	assert.NotContains(t, errOut, "no golden file")
}

func TestTestCommandVerboseNotesMissingGolden(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pass.yaml", passingScenario)

	_, errOut, err := executeWith(t, NewTestCommand, &RootOptions{Format: "text", Verbose: true}, nil, dir)
	require.NoError(t, err)
	assert.Contains(t, errOut, "pass: no golden file at "+filepath.Join(dir, "golden", "pass.golden"))
}

func TestDefaultGoldenDir(t *testing.T) {
	root := t.TempDir()
	scenariosDir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenariosDir, 0755))

	assert.Equal(t, filepath.Join(scenariosDir, "golden"), defaultGoldenDir(scenariosDir))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "golden"), 0755))
	assert.Equal(t, filepath.Join(root, "golden"), defaultGoldenDir(scenariosDir))
	assert.Equal(t, filepath.Join(root, "golden"), defaultGoldenDir(scenariosDir+string(filepath.Separator)))

	require.NoError(t, os.MkdirAll(filepath.Join(scenariosDir, "golden"), 0755))
	assert.Equal(t, filepath.Join(scenariosDir, "golden"), defaultGoldenDir(scenariosDir))
}
