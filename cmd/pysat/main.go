// Command pysat manages local satellite data products: it indexes files,
// loads and cleans daily data, iterates orbits, and runs seasonal
// analyses from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
