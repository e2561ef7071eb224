// Command tpsdump is a CLI over the tpsread package: a thin wrapper
// around Open/SetCurrentTable/iterate, plus table listing, manifest
// driven CSV export, and scheduled re-export.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
