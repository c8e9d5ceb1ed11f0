package lox

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type lexError struct {
	pos Position
	msg string
}

func (e *lexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune

	start    int
	startPos Position

	errors []error
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

// Tokenize scans the whole source, returning the token sequence terminated
// by an EOF sentinel. Scanning is error-tolerant: every lexical error is
// collected and returned alongside the tokens that could be produced.
func Tokenize(source string) ([]Token, []error) {
	l := newLexer(source)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens, l.errors
		}
	}
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}

	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) peekRuneN(n int) rune {
	idx := l.offset
	var r rune
	var w int
	for i := 0; i <= n; i++ {
		if idx >= len(l.input) {
			return 0
		}
		r, w = utf8.DecodeRuneInString(l.input[idx:])
		if i == n {
			return r
		}
		idx += w
	}
	return 0
}

// nextToken loops rather than recursing after an error, so a long run of
// invalid input consumes no stack.
func (l *lexer) nextToken() Token {
	for {
		l.skipWhitespaceAndComments()

		l.start = l.currentOffset()
		l.startPos = Position{Line: l.line, Column: l.column}

		switch l.ch {
		case 0:
			return Token{Type: tokenEOF, Lexeme: "", Pos: l.startPos}
		case '(':
			return l.makeToken(tokenLeftParen)
		case ')':
			return l.makeToken(tokenRightParen)
		case '{':
			return l.makeToken(tokenLeftBrace)
		case '}':
			return l.makeToken(tokenRightBrace)
		case ',':
			return l.makeToken(tokenComma)
		case '.':
			return l.makeToken(tokenDot)
		case '-':
			return l.makeToken(tokenMinus)
		case '+':
			return l.makeToken(tokenPlus)
		case ';':
			return l.makeToken(tokenSemicolon)
		case '*':
			return l.makeToken(tokenStar)
		case '/':
			return l.makeToken(tokenSlash)
		case '!':
			return l.makeEitherToken('=', tokenBangEqual, tokenBang)
		case '=':
			return l.makeEitherToken('=', tokenEqualEqual, tokenEqual)
		case '<':
			return l.makeEitherToken('=', tokenLessEqual, tokenLess)
		case '>':
			return l.makeEitherToken('=', tokenGreaterEqual, tokenGreater)
		case '"':
			tok, ok := l.readString()
			if !ok {
				continue
			}
			return tok
		default:
			switch {
			case unicode.IsDigit(l.ch):
				return l.readNumber()
			case isIdentifierStart(l.ch):
				return l.readIdentifier()
			default:
				l.errorf("unexpected character %q", l.ch)
				l.readRune()
			}
		}
	}
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

// makeToken finishes a token whose final rune is the current one.
func (l *lexer) makeToken(tt TokenType) Token {
	tok := Token{Type: tt, Lexeme: l.input[l.start:l.offset], Pos: l.startPos}
	l.readRune()
	return tok
}

func (l *lexer) makeEitherToken(next rune, matched, unmatched TokenType) Token {
	if l.peekRune() == next {
		l.readRune()
		return l.makeToken(matched)
	}
	return l.makeToken(unmatched)
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readRune()
			continue
		case '/':
			if l.peekRune() == '/' {
				for l.ch != 0 && l.ch != '\n' {
					l.readRune()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (l *lexer) readIdentifier() Token {
	for isIdentifierRune(l.peekRune()) {
		l.readRune()
	}
	tok := Token{Type: lookupIdent(l.input[l.start:l.offset]), Lexeme: l.input[l.start:l.offset], Pos: l.startPos}
	l.readRune()
	return tok
}

// readNumber scans integer, decimal, and scientific-exponent forms. Every
// numeric literal evaluates to a float64.
func (l *lexer) readNumber() Token {
	for unicode.IsDigit(l.peekRune()) {
		l.readRune()
	}
	if l.peekRune() == '.' && unicode.IsDigit(l.peekRuneN(1)) {
		l.readRune()
		for unicode.IsDigit(l.peekRune()) {
			l.readRune()
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		after := l.peekRuneN(1)
		if unicode.IsDigit(after) {
			l.readRune()
			for unicode.IsDigit(l.peekRune()) {
				l.readRune()
			}
		} else if (after == '+' || after == '-') && unicode.IsDigit(l.peekRuneN(2)) {
			l.readRune()
			l.readRune()
			for unicode.IsDigit(l.peekRune()) {
				l.readRune()
			}
		}
	}

	lexeme := l.input[l.start:l.offset]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		l.errorf("invalid number literal %s", lexeme)
	}
	tok := Token{Type: tokenNumber, Lexeme: lexeme, Literal: value, Pos: l.startPos}
	l.readRune()
	return tok
}

// readString scans a double-quoted string. Escape sequences are not part of
// the language; the literal is the raw text between the quotes. Reports
// false when the string never terminates, leaving the caller to resume.
func (l *lexer) readString() (Token, bool) {
	for {
		l.readRune()
		switch l.ch {
		case 0:
			l.errorAt(l.startPos, "unterminated string")
			return Token{}, false
		case '"':
			lexeme := l.input[l.start:l.offset]
			tok := Token{Type: tokenString, Lexeme: lexeme, Literal: lexeme[1 : len(lexeme)-1], Pos: l.startPos}
			l.readRune()
			return tok, true
		}
	}
}

func (l *lexer) errorf(format string, args ...any) {
	l.errorAt(l.startPos, fmt.Sprintf(format, args...))
}

func (l *lexer) errorAt(pos Position, msg string) {
	l.errors = append(l.errors, &lexError{pos: pos, msg: msg})
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
