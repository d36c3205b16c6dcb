// Package lexer turns PL/0 source text into a slice of tokens.
//
// The algorithm is the classic hand-rolled scanner: at each step skip
// whitespace, try the longest operator match first, then fall back to
// reading a maximal alphanumeric run and classifying it. There is no
// comment syntax in PL/0, and an unrecognised character silently ends
// tokenization rather than producing an error token - the caller sees
// a short token list and the parser will fail on the missing trailing
// punctuation.
package lexer

import (
	"strconv"
	"strings"

	"github.com/skx/pl0c/internal/token"
)

// Lexer holds scanning state over a single source string.
type Lexer struct {
	src    []byte
	pos    int // index of the next unread byte
	line   int // 0-based line of l.pos
	column int // 0-based column of l.pos
}

// New creates a Lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: []byte(src)}
}

// Tokenize runs the lexer to completion and returns every token it
// recognised, in order. It never returns an error: an unrecognised
// character simply ends the stream early, per the lexer's contract.
func Tokenize(src string) []token.Token {
	l := New(src)
	return l.Tokenize()
}

// Tokenize drives the scan loop described in the package doc.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token

	for {
		l.skipWhitespace()
		if l.atEOF() {
			return toks
		}

		line, column := l.line, l.column

		if op, ok := l.matchTwoCharOperator(); ok {
			toks = append(toks, token.New(token.Operator, op, line, column))
			continue
		}

		if tok, ok := l.matchOneChar(line, column); ok {
			toks = append(toks, tok)
			continue
		}

		if isAlnum(l.current()) {
			toks = append(toks, l.readAlnumRun(line, column))
			continue
		}

		// An unrecognised character: stop silently, dropping it.
		return toks
	}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) current() byte {
	if l.atEOF() {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one byte, updating line/column bookkeeping.
func (l *Lexer) advance() {
	if l.atEOF() {
		return
	}
	if l.src[l.pos] == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && isWhitespace(l.current()) {
		l.advance()
	}
}

// matchTwoCharOperator tries "<=", ">=" and ":=" at the cursor.
func (l *Lexer) matchTwoCharOperator() (string, bool) {
	if l.pos+1 >= len(l.src) {
		return "", false
	}
	candidate := string(l.src[l.pos : l.pos+2])
	for _, op := range token.TwoCharOperators {
		if candidate == op {
			l.advance()
			l.advance()
			return op, true
		}
	}
	return "", false
}

// matchOneChar tries the fixed signs and single-character operators.
func (l *Lexer) matchOneChar(line, column int) (token.Token, bool) {
	ch := l.current()

	if strings.IndexByte(token.Signs, ch) >= 0 {
		l.advance()
		return token.New(token.Sign, string(ch), line, column), true
	}
	if strings.IndexByte(token.OneCharOperators, ch) >= 0 {
		l.advance()
		return token.New(token.Operator, string(ch), line, column), true
	}
	return token.Token{}, false
}

// readAlnumRun reads the maximal run of ASCII alphanumerics starting
// at the cursor, lowercases it, and classifies the result: an
// all-digits run that fits in 64 bits is a Number, a digit run that
// overflows falls through to the keyword/identifier check just like
// any other non-numeric spelling, a reserved word is a Word, and
// anything else is an Identifier.
func (l *Lexer) readAlnumRun(line, column int) token.Token {
	start := l.pos
	for !l.atEOF() && isAlnum(l.current()) {
		l.advance()
	}
	run := strings.ToLower(string(l.src[start:l.pos]))

	if isAllDigits(run) {
		if _, err := strconv.ParseInt(run, 10, 64); err == nil {
			return token.New(token.Number, run, line, column)
		}
	}
	if token.IsKeyword(run) {
		return token.New(token.Word, run, line, column)
	}
	return token.New(token.Identifier, run, line, column)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlnum(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
