package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bananas/internal/inventory"
	"github.com/roach88/bananas/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	LogOut string // write the action log as a JSON array to this path
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one scenario and show the resulting inventory",
		Long: `Run a scenario against a fresh inventory manager.

Prints the final items, statistics and the action log, then whether every
step expectation and assertion held.

Exit codes:
  0 - Scenario passed
  1 - Scenario failed
  2 - Command error (missing or malformed scenario)

Examples:
  bananas run ./scenarios/distribute.yaml
  bananas run ./scenarios/distribute.yaml --format json
  bananas run ./scenarios/distribute.yaml --log-out distribute.log.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LogOut, "log-out", "", "write the action log as JSON to this file (input for verify)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	s, err := scenario.Load(path)
	if err != nil {
		_ = out.Error(CodeLoad, err.Error(), map[string]string{"path": path})
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := scenario.Run(s, opts.runOptions(cmd)...)
	if err != nil {
		_ = out.Error(CodeLoad, err.Error(), map[string]string{"path": path})
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if opts.LogOut != "" {
		if err := writeLog(opts.LogOut, result.Log); err != nil {
			_ = out.Error(CodeLoad, err.Error(), map[string]string{"path": opts.LogOut})
			return WrapExitError(ExitCommandError, "failed to export action log", err)
		}
		out.VerboseLog("wrote %d log entries to %s", len(result.Log), opts.LogOut)
	}

	if out.IsJSON() {
		if result.Pass {
			return out.SuccessWithTrace(result, result.RunID)
		}
		if err := out.ErrorWithTrace(CodeScenario, "scenario failed", result.Errors, result.RunID, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "scenario failed: "+s.Name)
	}

	renderRun(cmd.OutOrStdout(), result)
	if !result.Pass {
		return NewExitError(ExitFailure, "scenario failed: "+s.Name)
	}
	return nil
}

func writeLog(path string, log []inventory.Entry) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
