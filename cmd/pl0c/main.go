// Command pl0c compiles PL/0 source files to native executables via
// LLVM IR, llc, and the system linker.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/skx/pl0c/cmd/pl0c/cmd"
	"github.com/skx/pl0c/internal/diag"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var d *diag.Error
		if errors.As(err, &d) {
			fmt.Fprint(os.Stderr, d.Format())
		} else {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		os.Exit(1)
	}
}
