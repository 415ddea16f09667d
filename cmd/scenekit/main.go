// Command scenekit compiles, validates, renders and serves scene manifests.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/scenekit/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
