// Command rreport is the command-line front end of the EDA console: it
// serves the web UI and runs reports, tests and table pages on local files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
