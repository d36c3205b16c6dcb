package cmd

import (
	"fmt"

	"github.com/skx/pl0c/internal/driver"
	"github.com/spf13/cobra"
)

var (
	buildOutput  string
	buildLLCPath string
	buildVerbose bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a PL/0 source file to a native executable",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output executable path (default: source basename)")
	buildCmd.Flags().StringVar(&buildLLCPath, "llc", "", "path to the llc binary (default: llc on PATH)")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "print tokens, AST, and IR before compiling")
}

func runBuild(cmd *cobra.Command, args []string) error {
	out, err := driver.Run(driver.Options{
		Source:  args[0],
		Output:  buildOutput,
		LLC:     buildLLCPath,
		Verbose: buildVerbose,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
	return nil
}
