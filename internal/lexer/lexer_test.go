package lexer

import (
	"strings"
	"testing"

	"github.com/skx/pl0c/internal/token"
)

func TestNumbersAndOperators(t *testing.T) {
	input := `12 + 34 * (5 - 6) / 7`

	want := []token.Token{
		token.New(token.Number, "12", 0, 0),
		token.New(token.Operator, "+", 0, 3),
		token.New(token.Number, "34", 0, 5),
		token.New(token.Operator, "*", 0, 8),
		token.New(token.Sign, "(", 0, 10),
		token.New(token.Number, "5", 0, 11),
		token.New(token.Operator, "-", 0, 13),
		token.New(token.Number, "6", 0, 15),
		token.New(token.Sign, ")", 0, 16),
		token.New(token.Operator, "/", 0, 18),
		token.New(token.Number, "7", 0, 20),
	}

	got := Tokenize(input)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("token[%d] = %+v, want %+v", i, got[i], want[i])
		}
		if got[i].Line != want[i].Line || got[i].Column != want[i].Column {
			t.Errorf("token[%d] position = %d:%d, want %d:%d", i, got[i].Line, got[i].Column, want[i].Line, want[i].Column)
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	input := `<= >= :=`
	want := []string{"<=", ">=", ":="}

	got := Tokenize(input)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i, op := range want {
		if got[i].Class != token.Operator || got[i].Value != op {
			t.Errorf("token[%d] = %+v, want operator %q", i, got[i], op)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `BEGIN beginner CALL foo123`
	got := Tokenize(input)

	want := []token.Token{
		token.New(token.Word, "begin", 0, 0),
		token.New(token.Identifier, "beginner", 0, 6),
		token.New(token.Word, "call", 0, 15),
		token.New(token.Identifier, "foo123", 0, 20),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("token[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEmptyWhitespaceInput(t *testing.T) {
	for _, input := range []string{"   ", "\n\n\t  \r\n", " \t \n "} {
		got := Tokenize(input)
		if len(got) != 0 {
			t.Errorf("Tokenize(%q) = %+v, want empty", input, got)
		}
	}
}

func TestUnrecognisedCharacterEndsStream(t *testing.T) {
	got := Tokenize(`1 + 2 @ 3`)
	want := []token.Token{
		token.New(token.Number, "1", 0, 0),
		token.New(token.Operator, "+", 0, 2),
		token.New(token.Number, "2", 0, 4),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("token[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOverflowingLiteralBecomesIdentifier(t *testing.T) {
	got := Tokenize(`1 + 99999999999999999999999999`)
	want := []token.Token{
		token.New(token.Number, "1", 0, 0),
		token.New(token.Operator, "+", 0, 2),
		token.New(token.Identifier, "99999999999999999999999999", 0, 4),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("token[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPositionTracking(t *testing.T) {
	input := "a := 1;\n"
	got := Tokenize(input)

	// a(0,0) :=(0,2) 1(0,5) ;(0,6)
	want := []struct {
		line, col int
	}{
		{0, 0}, {0, 2}, {0, 5}, {0, 6},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Line != w.line || got[i].Column != w.col {
			t.Errorf("token[%d] position = %d:%d, want %d:%d", i, got[i].Line, got[i].Column, w.line, w.col)
		}
	}
}

// Round-trip: re-concatenating each token's spelling with single
// spaces lexes back to the same sequence (modulo identifier/keyword
// case, which is normalized away by the lexer itself).
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"const max = 100; var i; begin i := 0; while i <= max do i := i + 1; end.",
		"if a # b then call foo;",
		"read(a, b); write(a, b, 1);",
	}
	for _, input := range inputs {
		toks := Tokenize(input)

		var spellings []string
		for _, tok := range toks {
			spellings = append(spellings, tok.Value)
		}
		respelled := strings.Join(spellings, " ")

		again := Tokenize(respelled)
		if len(again) != len(toks) {
			t.Fatalf("round trip of %q produced %d tokens, want %d", input, len(again), len(toks))
		}
		for i := range toks {
			if !again[i].Equal(toks[i]) {
				t.Errorf("round trip token[%d] = %+v, want %+v", i, again[i], toks[i])
			}
		}
	}
}
