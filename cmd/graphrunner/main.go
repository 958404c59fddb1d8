// Command graphrunner loads a stage-graph manifest, assembles it
// through the Graph Assembler, and either validates or executes it via
// the Transition Runner.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
