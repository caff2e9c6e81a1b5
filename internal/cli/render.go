package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/bananas/internal/inventory"
	"github.com/roach88/bananas/internal/scenario"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// hashPrefix is how much of an entry hash text output shows.
const hashPrefix = 12

func renderRun(w io.Writer, result *scenario.Result) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(result.Name), dimStyle.Render("(run "+result.RunID+")"))

	fmt.Fprintln(w, headingStyle.Render("Items:"))
	if len(result.Items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
	}
	for _, it := range result.Items {
		fmt.Fprintf(w, "  #%d freshness %d\n", it.ID, it.Freshness)
	}

	fmt.Fprintf(w, "%s total=%d average=%.2f\n",
		headingStyle.Render("Statistics:"), result.Stats.Total, result.Stats.AverageFreshness)

	fmt.Fprintln(w, headingStyle.Render("Action log:"))
	renderLog(w, result.Log)

	renderVerdict(w, result.Name, result.Pass, result.Errors)
}

func renderLog(w io.Writer, log []inventory.Entry) {
	if len(log) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (empty)"))
	}
	for _, e := range log {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			payload = []byte(fmt.Sprintf("<%v>", err))
		}
		fmt.Fprintf(w, "  [%d] %-14s %s %s\n", e.Seq, e.Type, payload, dimStyle.Render(shortHash(e.Hash)))
	}
}

func renderVerdict(w io.Writer, name string, pass bool, errs []string) {
	if pass {
		fmt.Fprintln(w, passStyle.Render("✓ "+name))
		return
	}
	fmt.Fprintln(w, failStyle.Render("✗ "+name))
	for _, e := range errs {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func shortHash(h string) string {
	if len(h) > hashPrefix {
		return h[:hashPrefix]
	}
	return h
}
