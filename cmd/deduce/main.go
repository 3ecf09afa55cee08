// Command deduce derives goal facts from given facts with a rulebook.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/deduce/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
