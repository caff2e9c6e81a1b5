package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bananas/internal/inventory"
)

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	Source   string `json:"source"`
	Entries  int    `json:"entries"`
	Head     string `json:"head,omitempty"`
	Verified bool   `json:"verified"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <log.json|->",
		Short: "Verify the hash chain of an exported action log",
		Long: `Recompute the hash chain of an exported action log.

The input is either the JSON array written by "bananas run --log-out" or the
JSON output of "bananas run --format json". Use - to read standard input.
Every entry's hash covers its seq, type, payload and the previous hash, so a
verified log has not been reordered, truncated in the middle or edited.

Exit codes:
  0 - Log verified
  1 - Hash chain broken
  2 - Command error (missing or unreadable log)

Examples:
  bananas run ./scenarios/spoilage.yaml --log-out spoilage.log.json
  bananas verify spoilage.log.json
  bananas run ./scenarios/spoilage.yaml --format json | bananas verify -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyLogFile(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func verifyLogFile(opts *RootOptions, source string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	log, err := loadLog(source, cmd.InOrStdin())
	if err != nil {
		_ = out.Error(CodeLoad, err.Error(), map[string]string{"source": source})
		return WrapExitError(ExitCommandError, "failed to load action log", err)
	}
	out.VerboseLog("loaded %d entries from %s", len(log), source)

	return reportVerification(out, source, log)
}

// loadLog reads an exported action log. A bare array of entries and a run
// response (with the log under data.log or log) are both accepted.
func loadLog(source string, stdin io.Reader) ([]inventory.Entry, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var log []inventory.Entry
		if err := json.Unmarshal(data, &log); err != nil {
			return nil, fmt.Errorf("failed to parse log: %w", err)
		}
		return log, nil
	}

	var doc struct {
		Log  []inventory.Entry `json:"log"`
		Data *struct {
			Log []inventory.Entry `json:"log"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}
	switch {
	case doc.Data != nil && doc.Data.Log != nil:
		return doc.Data.Log, nil
	case doc.Log != nil:
		return doc.Log, nil
	default:
		return nil, fmt.Errorf("no action log found in %s", source)
	}
}

// reportVerification verifies log and writes the outcome.
func reportVerification(out *OutputFormatter, source string, log []inventory.Entry) error {
	vr := VerifyResult{Source: source, Entries: len(log)}
	if n := len(log); n > 0 {
		vr.Head = log[n-1].Hash
	}

	if err := inventory.VerifyLog(log); err != nil {
		code, exit := CodeLoad, ExitCommandError
		if inventory.IsIntegrityError(err) {
			code, exit = CodeIntegrity, ExitFailure
		}
		if out.IsJSON() {
			if encErr := out.ErrorWithTrace(code, err.Error(), nil, "", vr); encErr != nil {
				return encErr
			}
		} else {
			renderVerdict(out.Writer, source, false, []string{err.Error()})
		}
		return WrapExitError(exit, "action log did not verify", err)
	}

	vr.Verified = true
	if out.IsJSON() {
		return out.Success(vr)
	}
	renderVerdict(out.Writer, fmt.Sprintf("%s: %d entries verified, head %s", source, vr.Entries, shortHash(vr.Head)), true, nil)
	return nil
}
