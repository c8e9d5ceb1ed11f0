package lox

import (
	"strings"
	"testing"
)

func TestTokenizePunctuationAndOperators(t *testing.T) {
	tokens, errs := Tokenize("(){};,+-*/. ! != = == < <= > >=")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}

	want := []TokenType{
		tokenLeftParen, tokenRightParen, tokenLeftBrace, tokenRightBrace,
		tokenSemicolon, tokenComma, tokenPlus, tokenMinus, tokenStar,
		tokenSlash, tokenDot, tokenBang, tokenBangEqual, tokenEqual,
		tokenEqualEqual, tokenLess, tokenLessEqual, tokenGreater,
		tokenGreaterEqual, tokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
}

func TestTokenDumpFormat(t *testing.T) {
	tokens, errs := Tokenize("var answer = 1234;\nprint \"hi\";")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}

	want := []string{
		"VAR var null",
		"IDENTIFIER answer null",
		"EQUAL = null",
		"NUMBER 1234 1234.0",
		"SEMICOLON ; null",
		"PRINT print null",
		`STRING "hi" hi`,
		"SEMICOLON ; null",
		"EOF  null",
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, line := range want {
		if got := tokens[i].String(); got != line {
			t.Fatalf("token %d: expected %q, got %q", i, line, got)
		}
	}
}

func TestTokenizeNumberLiterals(t *testing.T) {
	cases := []struct {
		source string
		value  float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"0.5", 0.5},
		{"1e3", 1000},
		{"2.5e-2", 0.025},
		{"1E+2", 100},
	}
	for _, tc := range cases {
		tokens, errs := Tokenize(tc.source)
		if len(errs) != 0 {
			t.Fatalf("%s: unexpected lex errors: %v", tc.source, errs)
		}
		if tokens[0].Type != tokenNumber {
			t.Fatalf("%s: expected NUMBER, got %s", tc.source, tokens[0].Type)
		}
		if got := tokens[0].Literal.(float64); got != tc.value {
			t.Fatalf("%s: expected literal %v, got %v", tc.source, tc.value, got)
		}
	}
}

func TestTokenizeDotAfterNumberIsNotDecimal(t *testing.T) {
	tokens, errs := Tokenize("42.sqrt")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := []TokenType{tokenNumber, tokenDot, tokenIdent, tokenEOF}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
	if tokens[0].Literal.(float64) != 42 {
		t.Fatalf("expected 42, got %v", tokens[0].Literal)
	}
}

func TestTokenizeSkipsLineComments(t *testing.T) {
	tokens, errs := Tokenize("1 // the rest is ignored != ==\n2")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].Literal.(float64) != 1 || tokens[1].Literal.(float64) != 2 {
		t.Fatalf("unexpected literals: %v, %v", tokens[0].Literal, tokens[1].Literal)
	}
}

func TestTokenizeKeywordsVersusIdentifiers(t *testing.T) {
	tokens, errs := Tokenize("class classy for forth nil nildo")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := []TokenType{tokenClass, tokenIdent, tokenFor, tokenIdent, tokenNil, tokenIdent, tokenEOF}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
}

func TestTokenizeCollectsEveryError(t *testing.T) {
	tokens, errs := Tokenize("@ $ #")
	if len(errs) != 3 {
		t.Fatalf("expected 3 lex errors, got %d: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !strings.Contains(err.Error(), "unexpected character") {
			t.Fatalf("unexpected error message: %v", err)
		}
	}
	if len(tokens) != 1 || tokens[0].Type != tokenEOF {
		t.Fatalf("expected a lone EOF token, got %v", tokens)
	}
}

func TestTokenizeKeepsGoingPastErrors(t *testing.T) {
	tokens, errs := Tokenize("var @ x")
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %d: %v", len(errs), errs)
	}
	want := []TokenType{tokenVar, tokenIdent, tokenEOF}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
}

func TestTokenizeLongInvalidRun(t *testing.T) {
	const n = 1 << 16
	tokens, errs := Tokenize(strings.Repeat("@", n))
	if len(errs) != n {
		t.Fatalf("expected %d lex errors, got %d", n, len(errs))
	}
	if len(tokens) != 1 || tokens[0].Type != tokenEOF {
		t.Fatalf("expected a lone EOF token, got %d tokens", len(tokens))
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, errs := Tokenize(`"abc`)
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "unterminated string") {
		t.Fatalf("unexpected error message: %v", errs[0])
	}
}

func TestTokenizeStringKeepsRawText(t *testing.T) {
	tokens, errs := Tokenize(`"a\nb"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	if got := tokens[0].Literal.(string); got != `a\nb` {
		t.Fatalf("expected raw literal, got %q", got)
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, errs := Tokenize("ab\n cd")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	if got := tokens[0].Pos; got != (Position{Line: 1, Column: 1}) {
		t.Fatalf("unexpected first position: %+v", got)
	}
	if got := tokens[1].Pos; got != (Position{Line: 2, Column: 2}) {
		t.Fatalf("unexpected second position: %+v", got)
	}
}
