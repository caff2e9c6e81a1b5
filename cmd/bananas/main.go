// Command bananas runs inventory scenarios and verifies their action logs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bananas/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
