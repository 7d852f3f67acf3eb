package lexer

import (
	"testing"

	"github.com/afnanksalal/frag/token"
)

// TestNextTokenCoversTheSurface walks a program touching every token
// kind named in spec.md's §3 token set.
func TestNextTokenCoversTheSurface(t *testing.T) {
	input := `let x = 10;
x + 1 - 2 * 3 / 4 % 5;
x == 1 != 2 < 3 <= 4 > 5 >= 6;
true && false || !x;
print(x, 1);
// a line comment
# another comment
(x)`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENTIFIER, "x"},
		{token.EQUAL, "="},
		{token.NUMBER, "10"},
		{token.SEMICOLON, ";"},
		{token.IDENTIFIER, "x"},
		{token.PLUS, "+"},
		{token.NUMBER, "1"},
		{token.MINUS, "-"},
		{token.NUMBER, "2"},
		{token.STAR, "*"},
		{token.NUMBER, "3"},
		{token.SLASH, "/"},
		{token.NUMBER, "4"},
		{token.PERCENT, "%"},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.IDENTIFIER, "x"},
		{token.EQUALEQUAL, "=="},
		{token.NUMBER, "1"},
		{token.NOTEQUAL, "!="},
		{token.NUMBER, "2"},
		{token.LESS, "<"},
		{token.NUMBER, "3"},
		{token.LESSEQUAL, "<="},
		{token.NUMBER, "4"},
		{token.GREATER, ">"},
		{token.NUMBER, "5"},
		{token.GREATEREQUAL, ">="},
		{token.NUMBER, "6"},
		{token.SEMICOLON, ";"},
		{token.BOOL, "true"},
		{token.ANDAND, "&&"},
		{token.BOOL, "false"},
		{token.OROR, "||"},
		{token.NOT, "!"},
		{token.IDENTIFIER, "x"},
		{token.SEMICOLON, ";"},
		{token.IDENTIFIER, "print"},
		{token.LEFTPAREN, "("},
		{token.IDENTIFIER, "x"},
		{token.COMMA, ","},
		{token.NUMBER, "1"},
		{token.RIGHTPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.LEFTPAREN, "("},
		{token.IDENTIFIER, "x"},
		{token.RIGHTPAREN, ")"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong, expected=%q, got=%q (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestEofIsSticky ensures NextToken keeps returning EOF past the end.
func TestEofIsSticky(t *testing.T) {
	l := New("")
	for i := 0; i < 3; i++ {
		tok := l.NextToken()
		if tok.Type != token.EOF {
			t.Fatalf("expected EOF repeatedly, got %q on call %d", tok.Type, i)
		}
	}
}

// TestNumberOverflowIsFatal checks the one lexer error condition.
func TestNumberOverflowIsFatal(t *testing.T) {
	l := New("99999999999999999999999999")
	tok := l.NextToken()
	if tok.Type != token.ERROR {
		t.Fatalf("expected ERROR for an out-of-range literal, got %q", tok.Type)
	}
}

// TestInt64MaxLexes checks the boundary value lexes correctly.
func TestInt64MaxLexes(t *testing.T) {
	l := New("9223372036854775807")
	tok := l.NextToken()
	if tok.Type != token.NUMBER || tok.Num != 9223372036854775807 {
		t.Fatalf("expected NUMBER 9223372036854775807, got %q %d", tok.Type, tok.Num)
	}
}

// TestUnpairedAmpersandAndPipeAreDropped documents the preserved
// (if dubious) behavior called out in spec.md §9.
func TestUnpairedAmpersandAndPipeAreDropped(t *testing.T) {
	l := New("1 & 2 | 3")
	var got []token.Type
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		got = append(got, tok.Type)
	}
	want := []token.Type{token.NUMBER, token.NUMBER, token.NUMBER}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// TestUnknownCharacterIsDropped documents silent-drop of junk input.
func TestUnknownCharacterIsDropped(t *testing.T) {
	l := New("1 @ 2")
	first := l.NextToken()
	second := l.NextToken()
	if first.Type != token.NUMBER || second.Type != token.NUMBER {
		t.Fatalf("expected two numbers either side of the junk character, got %q and %q", first.Type, second.Type)
	}
}
