// Package diag provides the positioned-diagnostic type the parser's
// TokenError converts to, plus source-context rendering: a
// header line, the offending source line, and a caret under the
// column.
package diag

import (
	"fmt"
	"strings"

	"github.com/skx/pl0c/internal/token"
)

// Position is a 0-based line/column pair, matching token.Token.
type Position struct {
	Line   int
	Column int
}

// PositionOf extracts a Position from a token.
func PositionOf(t token.Token) Position {
	return Position{Line: t.Line, Column: t.Column}
}

// Error is a compiler diagnostic anchored at a source position.
type Error struct {
	Pos     Position
	Message string
	Source  string
}

// New creates a diagnostic at pos with the given formatted message.
func New(pos Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface with the short, single-line
// form. Callers that want the caret-annotated long form should call
// Format directly once Source has been set.
func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line+1, e.Pos.Column+1, e.Message)
}

// WithSource attaches the original source text, enabling Format to
// render a source line and a caret under the offending column.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// Format renders a header line, the offending source line, and a
// caret pointing at the column, 1-based for humans.
func (e *Error) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "line %d, column %d: %s\n", e.Pos.Line+1, e.Pos.Column+1, e.Message)

	line := e.sourceLine(e.Pos.Line)
	if line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", e.Pos.Column))
		sb.WriteString("^\n")
	}
	return sb.String()
}

// sourceLine returns the 0-indexed line from e.Source, or "" if it is
// unavailable or out of range.
func (e *Error) sourceLine(n int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return lines[n]
}
