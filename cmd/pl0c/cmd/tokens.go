package cmd

import (
	"fmt"
	"os"

	"github.com/skx/pl0c/internal/lexer"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Lex a PL/0 source file and print its token stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("tokens: reading %s: %w", args[0], err)
	}
	for _, tok := range lexer.Tokenize(string(src)) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tok.String())
	}
	return nil
}
