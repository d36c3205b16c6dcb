package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pl0c",
	Short: "A PL/0 compiler",
	Long: `pl0c compiles PL/0 source to a native executable.

It lexes and parses the source, lowers it to LLVM IR, then shells out
to llc and the system linker to produce a binary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command; the caller is responsible for
// printing any returned error and choosing an exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(tokensCmd)
}
