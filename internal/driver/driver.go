// Package driver sequences the compiler pipeline: lex, parse,
// generate, verify, write the IR to disk, then shell out to llc and
// the system linker to produce an executable.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/skx/pl0c/internal/ast"
	"github.com/skx/pl0c/internal/ir"
	"github.com/skx/pl0c/internal/lexer"
	"github.com/skx/pl0c/internal/parser"
)

// Options configures a single compilation run.
type Options struct {
	// Source is the path to the PL/0 source file.
	Source string
	// Output is the path of the linked executable. Defaults to
	// Source's basename with its extension stripped.
	Output string
	// LLC is the path to the llc binary, resolved on PATH if empty.
	LLC string
	// Verbose, when true, writes the token stream, the AST and the
	// generated IR to Log before invoking llc/the linker.
	Verbose bool
	// Log receives verbose output. Defaults to os.Stdout.
	Log io.Writer
}

// Run executes the full pipeline for opts and returns the path of the
// linked executable on success.
func Run(opts Options) (string, error) {
	if opts.Log == nil {
		opts.Log = os.Stdout
	}
	llc := opts.LLC
	if llc == "" {
		llc = "llc"
	}

	src, err := os.ReadFile(opts.Source)
	if err != nil {
		return "", fmt.Errorf("driver: reading %s: %w", opts.Source, err)
	}

	tokens := lexer.Tokenize(string(src))
	if opts.Verbose {
		for _, tok := range tokens {
			fmt.Fprintf(opts.Log, "%s\n", tok.String())
		}
	}

	prog, err := parser.Parse(tokens)
	if err != nil {
		// The legacy one-line TokenError message is the documented
		// exit contract and ships to stderr as-is. -v mode upgrades
		// it to the caret-annotated long form instead.
		var tokErr *parser.TokenError
		if opts.Verbose && errors.As(err, &tokErr) {
			return "", tokErr.Diag(string(src))
		}
		return "", err
	}
	if opts.Verbose {
		fmt.Fprint(opts.Log, ast.Dump(prog))
	}

	module, err := ir.Generate(prog)
	if err != nil {
		return "", err
	}
	if opts.Verbose {
		fmt.Fprint(opts.Log, module)
	}

	base := strings.TrimSuffix(opts.Source, filepath.Ext(opts.Source))
	bcPath := base + ".bc"
	objPath := base + ".o"
	outPath := opts.Output
	if outPath == "" {
		outPath = base
	}

	if err := os.WriteFile(bcPath, []byte(module), 0o644); err != nil {
		return "", fmt.Errorf("driver: writing %s: %w", bcPath, err)
	}

	if err := runTool(llc, "-filetype=obj", "-o", objPath, bcPath); err != nil {
		return "", err
	}

	if err := runTool("gcc", objPath, "-o", outPath); err != nil {
		return "", err
	}

	return outPath, nil
}

func runTool(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("driver: %s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
