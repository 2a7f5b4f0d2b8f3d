// Command kuiper is the reference CLI for the Kuiper expression language:
// lex, parse, build, run, and infer subcommands over a single expression.
package main

import (
	"fmt"
	"os"

	"github.com/cognitedata/kuiper/cmd/kuiper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
