// Package parser builds a PL/0 ast.Program from a flat token.Token
// slice using recursive descent, a shunting-yard algorithm for
// arithmetic expressions, and a relational-operator split for
// conditions. See the grammar notes below.
//
// There is no error recovery: the first grammar violation returns a
// *TokenError and parsing stops. There are no partial ASTs.
package parser

import (
	"fmt"
	"strconv"

	"github.com/skx/pl0c/internal/ast"
	"github.com/skx/pl0c/internal/diag"
	"github.com/skx/pl0c/internal/token"
	"github.com/skx/pl0c/stack"
)

// eofToken is the sentinel token returned by peek once the real token
// stream is exhausted. Its Sign value never matches any expectation,
// so running off the end of the input surfaces as a normal TokenError
// rather than a panic.
var eofToken = token.Token{Class: token.Sign, Value: "<eof>"}

// TokenError is raised on any unexpected token. It carries the
// offending token and, optionally, a description of what was expected.
type TokenError struct {
	Tok      token.Token
	Expected string
}

// Error renders the message in the exact legacy form the driver's
// exit-code contract documents: "Unexpected token '<value>' in line
// <L+1>, at <C+1>".
func (e *TokenError) Error() string {
	return fmt.Sprintf("Unexpected token '%s' in line %d, at %d", e.Tok.Value, e.Tok.Line+1, e.Tok.Column+1)
}

// Diag renders e as a caret-annotated diagnostic against source, for
// callers that have the original source text on hand (the build
// driver, primarily).
func (e *TokenError) Diag(source string) *diag.Error {
	msg := "unexpected token"
	if e.Expected != "" {
		msg = fmt.Sprintf("unexpected token, expected %s", e.Expected)
	}
	return diag.New(diag.PositionOf(e.Tok), "%s %q", msg, e.Tok.Value).WithSource(source)
}

// Parser holds parsing state over a fixed token slice.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a Parser over the given tokens.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the entire token stream and returns the resulting
// Program, or the first *TokenError encountered.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).Parse()
}

// Parse implements Program := Subprogram '.'.
func (p *Parser) Parse() (*ast.Program, error) {
	sub, err := p.parseSubprogram()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, "."); err != nil {
		return nil, err
	}
	return &ast.Program{Main: sub}, nil
}

// --- token stream helpers -------------------------------------------------

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i < 0 || i >= len(p.tokens) {
		return eofToken
	}
	return p.tokens[i]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) is(class token.Class, value string) bool {
	t := p.peek()
	return t.Class == class && t.Value == value
}

// expect consumes the next token if it matches class/value, else
// returns a *TokenError describing what was wanted.
func (p *Parser) expect(class token.Class, value string) (token.Token, error) {
	t := p.peek()
	if t.Class != class || t.Value != value {
		return t, &TokenError{Tok: t, Expected: fmt.Sprintf("%s %q", class, value)}
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier() (string, error) {
	t := p.peek()
	if t.Class != token.Identifier {
		return "", &TokenError{Tok: t, Expected: "an identifier"}
	}
	p.advance()
	return t.Value, nil
}

func (p *Parser) expectNumber() (int64, error) {
	t := p.peek()
	if t.Class != token.Number {
		return 0, &TokenError{Tok: t, Expected: "a number"}
	}
	p.advance()
	return parseLiteral(t.Value), nil
}

// parseLiteral converts a Number token's spelling to its value. The
// lexer only ever emits digit runs that already fit in 64 bits, so
// the conversion cannot fail here.
func parseLiteral(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// --- declarations ----------------------------------------------------------

// parseSubprogram implements Subprogram := [Consts] [Vars] {Procedure} Statement.
func (p *Parser) parseSubprogram() (*ast.Subprogram, error) {
	sub := &ast.Subprogram{}

	if p.is(token.Word, "const") {
		consts, err := p.parseConsts()
		if err != nil {
			return nil, err
		}
		sub.Consts = consts
	}

	if p.is(token.Word, "var") {
		vars, err := p.parseVars()
		if err != nil {
			return nil, err
		}
		sub.Vars = vars
	}

	for p.is(token.Word, "procedure") {
		proc, err := p.parseProcedure()
		if err != nil {
			return nil, err
		}
		sub.Procedures = append(sub.Procedures, *proc)
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	sub.Body = stmt

	return sub, nil
}

// parseConsts implements Consts := 'const' Ident '=' Number (',' Ident '=' Number)* ';'.
func (p *Parser) parseConsts() ([]ast.Const, error) {
	if _, err := p.expect(token.Word, "const"); err != nil {
		return nil, err
	}

	var consts []ast.Const
	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Operator, "="); err != nil {
			return nil, err
		}
		val, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		consts = append(consts, ast.Const{Name: name, Value: val})

		if p.is(token.Sign, ",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	return consts, nil
}

// parseVars implements Vars := 'var' Ident (',' Ident)* ';'.
func (p *Parser) parseVars() ([]string, error) {
	if _, err := p.expect(token.Word, "var"); err != nil {
		return nil, err
	}

	var vars []string
	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		vars = append(vars, name)

		if p.is(token.Sign, ",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	return vars, nil
}

// parseProcedure implements Procedure := 'procedure' Ident ';' Subprogram.
// A procedure body is not followed by a
// mandatory ';' - it is delimited by the next 'procedure' keyword or
// by the start of the outer body's statement.
func (p *Parser) parseProcedure() (*ast.Procedure, error) {
	if _, err := p.expect(token.Word, "procedure"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	body, err := p.parseSubprogram()
	if err != nil {
		return nil, err
	}
	return &ast.Procedure{Name: name, Body: body}, nil
}

// --- statements --------------------------------------------------------------

// parseStatement dispatches on the leading token(s), trying each
// alternative in the order the grammar lists them. It returns a nil
// Statement (no error) for the empty-statement production. A stray
// ';' is absorbed here, in the shared dispatch point, so the
// tolerant trailing-semicolon policy (e.g. "if a<=b then ;") applies
// everywhere a Statement is parsed - the top-level body, an if-then,
// a while-do - not only between statements inside a compound.
func (p *Parser) parseStatement() (ast.Statement, error) {
	t := p.peek()

	switch {
	case t.Class == token.Identifier && p.peekAt(1).Class == token.Operator && p.peekAt(1).Value == ":=":
		return p.parseAssign()
	case t.Class == token.Word && t.Value == "if":
		return p.parseIf()
	case t.Class == token.Word && t.Value == "while":
		return p.parseWhile()
	case t.Class == token.Word && t.Value == "call":
		return p.parseCall()
	case t.Class == token.Word && t.Value == "begin":
		return p.parseCompound()
	case t.Class == token.Word && t.Value == "read":
		return p.parseRead()
	case t.Class == token.Word && t.Value == "write":
		return p.parseWrite()
	case t.Class == token.Sign && t.Value == ";":
		p.advance()
		return nil, nil
	default:
		// The empty statement: nothing to consume.
		return nil, nil
	}
}

// parseAssign implements Assign := Ident ':=' Expression ';'.
func (p *Parser) parseAssign() (ast.Statement, error) {
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Operator, ":="); err != nil {
		return nil, err
	}
	expr, err := p.parseExpressionUntil(isSign(";"), isSign(")"), isSign(","))
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	return ast.Assign{Target: name, Value: expr}, nil
}

// parseCall implements Call := 'call' Ident ';'.
func (p *Parser) parseCall() (ast.Statement, error) {
	if _, err := p.expect(token.Word, "call"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	return ast.Call{Name: name}, nil
}

// parseIf implements If := 'if' Condition 'then' Statement.
func (p *Parser) parseIf() (ast.Statement, error) {
	if _, err := p.expect(token.Word, "if"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("then")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Word, "then"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.If{Cond: cond, Then: then}, nil
}

// parseWhile implements While := 'while' Condition 'do' Statement.
func (p *Parser) parseWhile() (ast.Statement, error) {
	if _, err := p.expect(token.Word, "while"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("do")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Word, "do"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.While{Cond: cond, Body: body}, nil
}

// parseCompound implements Compound := 'begin' Statement {';' Statement} 'end'.
// Each leaf statement (Assign, Call, Read, Write) consumes its own
// trailing ';' as part of its own production, so by the time control
// returns here the separator is already gone; this loop simply keeps
// parsing statements until it reaches 'end'.
func (p *Parser) parseCompound() (ast.Statement, error) {
	if _, err := p.expect(token.Word, "begin"); err != nil {
		return nil, err
	}

	var stmts []ast.Statement
	for !p.is(token.Word, "end") {
		pos := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.pos == pos {
			// No token was consumed: whatever remains isn't a
			// Statement at all. Let the expect below report it.
			break
		}
	}

	if _, err := p.expect(token.Word, "end"); err != nil {
		return nil, err
	}
	return ast.Compound{Statements: stmts}, nil
}

// parseRead implements Read := 'read' '(' Ident (',' Ident)* ')' ';'.
func (p *Parser) parseRead() (ast.Statement, error) {
	if _, err := p.expect(token.Word, "read"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, "("); err != nil {
		return nil, err
	}

	var targets []string
	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		targets = append(targets, name)

		if p.is(token.Sign, ",") {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(token.Sign, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	return ast.Read{Targets: targets}, nil
}

// parseWrite implements Write := 'write' '(' Expression (',' Expression)* ')' ';'.
func (p *Parser) parseWrite() (ast.Statement, error) {
	if _, err := p.expect(token.Word, "write"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, "("); err != nil {
		return nil, err
	}

	var values []ast.Expression
	for {
		expr, err := p.parseExpressionUntil(isSign(")"), isSign(","))
		if err != nil {
			return nil, err
		}
		values = append(values, expr)

		if p.is(token.Sign, ",") {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(token.Sign, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Sign, ";"); err != nil {
		return nil, err
	}
	return ast.Write{Values: values}, nil
}

// --- conditions --------------------------------------------------------------

var relOps = map[string]ast.RelOp{
	"=":  ast.Eq,
	"#":  ast.Neq,
	"<":  ast.Lt,
	"<=": ast.Lte,
	">":  ast.Gt,
	">=": ast.Gte,
}

// parseCondition implements Condition := 'odd' Expression | Expression RelOp Expression.
// stopWord is the keyword ('then' or 'do') that terminates the
// condition's token span.
func (p *Parser) parseCondition(stopWord string) (ast.Condition, error) {
	span, err := p.collectUntilWord(stopWord)
	if err != nil {
		return nil, err
	}
	if len(span) == 0 {
		return nil, &TokenError{Tok: p.peek(), Expected: "a condition"}
	}

	if span[0].Class == token.Word && span[0].Value == "odd" {
		expr, err := parseExpressionSpan(span[1:])
		if err != nil {
			return nil, err
		}
		return ast.Odd{Value: expr}, nil
	}

	idx, rel, err := findTopLevelRelOp(span)
	if err != nil {
		return nil, err
	}
	left, err := parseExpressionSpan(span[:idx])
	if err != nil {
		return nil, err
	}
	right, err := parseExpressionSpan(span[idx+1:])
	if err != nil {
		return nil, err
	}
	return ast.Compare{Left: left, Op: rel, Right: right}, nil
}

// findTopLevelRelOp locates the first relational operator at
// parenthesis depth zero.
func findTopLevelRelOp(span []token.Token) (int, ast.RelOp, error) {
	depth := 0
	for i, t := range span {
		if t.Class == token.Sign && t.Value == "(" {
			depth++
		}
		if t.Class == token.Sign && t.Value == ")" {
			depth--
		}
		if depth == 0 && t.Class == token.Operator {
			if rel, ok := relOps[t.Value]; ok {
				return i, rel, nil
			}
		}
	}
	tok := eofToken
	if len(span) > 0 {
		tok = span[0]
	}
	return 0, "", &TokenError{Tok: tok, Expected: "a relational operator"}
}

// collectUntilWord consumes tokens up to, but not including, the next
// occurrence of word at parenthesis depth zero.
func (p *Parser) collectUntilWord(word string) ([]token.Token, error) {
	start := p.pos
	depth := 0
	for {
		t := p.peek()
		if t == eofToken {
			return nil, &TokenError{Tok: t, Expected: fmt.Sprintf("%q", word)}
		}
		if t.Class == token.Sign && t.Value == "(" {
			depth++
		}
		if t.Class == token.Sign && t.Value == ")" {
			depth--
		}
		if depth == 0 && t.Class == token.Word && t.Value == word {
			break
		}
		p.advance()
	}
	return p.tokens[start:p.pos], nil
}

// --- expressions ---------------------------------------------------------

// delimPredicate reports whether a token ends an expression span.
type delimPredicate func(token.Token) bool

func isSign(value string) delimPredicate {
	return func(t token.Token) bool { return t.Class == token.Sign && t.Value == value }
}

// parseExpressionUntil collects tokens up to (not including) the next
// occurrence, at parenthesis depth zero, of any of the given
// delimiters, and runs the shunting-yard algorithm over the result.
func (p *Parser) parseExpressionUntil(delims ...delimPredicate) (ast.Expression, error) {
	matches := func(t token.Token) bool {
		for _, d := range delims {
			if d(t) {
				return true
			}
		}
		return false
	}

	start := p.pos
	depth := 0
	for {
		t := p.peek()
		if t == eofToken {
			return nil, &TokenError{Tok: t, Expected: "an expression"}
		}

		if t.Class == token.Sign && t.Value == "(" {
			depth++
			p.advance()
			continue
		}
		if t.Class == token.Sign && t.Value == ")" {
			if depth > 0 {
				// Closes a '(' opened within this very expression.
				depth--
				p.advance()
				continue
			}
			// Unmatched from here: it belongs to an enclosing
			// construct (a write(...)/read(...) argument list, or a
			// grouping paren we're nested inside), not to us.
			break
		}

		if depth == 0 && matches(t) {
			break
		}
		p.advance()
	}
	return parseExpressionSpan(p.tokens[start:p.pos])
}

// parseExpressionSpan runs Dijkstra's shunting-yard algorithm over a
// fixed slice of tokens already known to contain exactly one
// expression; see precedence() below for the operator precedence table.
func parseExpressionSpan(span []token.Token) (ast.Expression, error) {
	if len(span) == 0 {
		return nil, &TokenError{Tok: eofToken, Expected: "an expression"}
	}

	operands := stack.New[ast.Expression]()
	operators := stack.New[token.Token]()

	apply := func() error {
		if operands.Len() < 2 || operators.Empty() {
			return &TokenError{Tok: span[0], Expected: "a complete expression"}
		}
		op, _ := operators.Pop()
		right, _ := operands.Pop()
		left, _ := operands.Pop()
		operands.Push(ast.Binary{Left: left, Op: ast.BinaryOp(op.Value), Right: right})
		return nil
	}

	for _, t := range span {
		switch {
		case t.Class == token.Number:
			operands.Push(ast.Number{Value: parseLiteral(t.Value)})

		case t.Class == token.Identifier:
			operands.Push(ast.Ident{Name: t.Value})

		case t.Class == token.Sign && t.Value == "(":
			operators.Push(t)

		case t.Class == token.Sign && t.Value == ")":
			for {
				top, err := operators.Peek()
				if err != nil || (top.Class == token.Sign && top.Value == "(") {
					break
				}
				if err := apply(); err != nil {
					return nil, err
				}
			}
			if operators.Empty() {
				return nil, &TokenError{Tok: t, Expected: "a matching '('"}
			}
			operators.Pop()

		case t.Class == token.Operator && isArithmeticOp(t.Value):
			for {
				top, err := operators.Peek()
				if err != nil || (top.Class == token.Sign && top.Value == "(") {
					break
				}
				if precedence(top.Value) < precedence(t.Value) {
					break
				}
				if err := apply(); err != nil {
					return nil, err
				}
			}
			operators.Push(t)

		default:
			return nil, &TokenError{Tok: t, Expected: "a number, identifier, or arithmetic operator"}
		}
	}

	for !operators.Empty() {
		if err := apply(); err != nil {
			return nil, err
		}
	}

	if operands.Len() != 1 {
		return nil, &TokenError{Tok: span[0], Expected: "a single expression"}
	}
	result, _ := operands.Pop()
	return result, nil
}

func isArithmeticOp(v string) bool {
	switch v {
	case "+", "-", "*", "/":
		return true
	default:
		return false
	}
}

func precedence(op string) int {
	switch op {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	default:
		return 0
	}
}
