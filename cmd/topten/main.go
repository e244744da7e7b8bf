// Command topten serves and manages a personal ranked list of movies.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/topten/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "topten: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
