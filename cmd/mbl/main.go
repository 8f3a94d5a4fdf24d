// Command mbl is a CLI front end for the memory-based classifier engine:
// `mbl learn` builds and saves an instance base, `mbl classify` loads one
// and predicts over a file of test instances.
package main

import (
	"fmt"
	"os"

	"github.com/wlattner/mbl/cmd/mbl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
