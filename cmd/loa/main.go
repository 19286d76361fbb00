// loa is the learning-outcome analysis backend: HTTP API, job worker, and
// operator commands.
//
// Usage:
//
//	loa serve
//	loa worker
//	loa migrate
//	loa seed -f taxonomy.yaml
//	loa analyze --curriculum <id> --taxonomy <id> [--title <t>]
//	loa overlap --taxonomy <id>
//	loa watch
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
