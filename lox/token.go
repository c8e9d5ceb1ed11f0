package lox

import "strings"

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenEOF TokenType = "EOF"

	tokenLeftParen  TokenType = "LEFT_PAREN"
	tokenRightParen TokenType = "RIGHT_PAREN"
	tokenLeftBrace  TokenType = "LEFT_BRACE"
	tokenRightBrace TokenType = "RIGHT_BRACE"
	tokenComma      TokenType = "COMMA"
	tokenDot        TokenType = "DOT"
	tokenMinus      TokenType = "MINUS"
	tokenPlus       TokenType = "PLUS"
	tokenSemicolon  TokenType = "SEMICOLON"
	tokenSlash      TokenType = "SLASH"
	tokenStar       TokenType = "STAR"

	tokenBang         TokenType = "BANG"
	tokenBangEqual    TokenType = "BANG_EQUAL"
	tokenEqual        TokenType = "EQUAL"
	tokenEqualEqual   TokenType = "EQUAL_EQUAL"
	tokenGreater      TokenType = "GREATER"
	tokenGreaterEqual TokenType = "GREATER_EQUAL"
	tokenLess         TokenType = "LESS"
	tokenLessEqual    TokenType = "LESS_EQUAL"

	tokenIdent  TokenType = "IDENTIFIER"
	tokenString TokenType = "STRING"
	tokenNumber TokenType = "NUMBER"

	tokenAnd    TokenType = "AND"
	tokenClass  TokenType = "CLASS"
	tokenElse   TokenType = "ELSE"
	tokenFalse  TokenType = "FALSE"
	tokenFun    TokenType = "FUN"
	tokenFor    TokenType = "FOR"
	tokenIf     TokenType = "IF"
	tokenNil    TokenType = "NIL"
	tokenOr     TokenType = "OR"
	tokenPrint  TokenType = "PRINT"
	tokenReturn TokenType = "RETURN"
	tokenSuper  TokenType = "SUPER"
	tokenThis   TokenType = "THIS"
	tokenTrue   TokenType = "TRUE"
	tokenVar    TokenType = "VAR"
	tokenWhile  TokenType = "WHILE"
)

// Token captures lexical information for the parser. Literal is a float64
// for number tokens, a string for string tokens, and nil otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Pos     Position
}

// Position identifies a location in the source text.
type Position struct {
	Line   int
	Column int
}

// String renders the token in the dump format consumed by the tokenize
// command: `<TYPE> <lexeme> <literal-or-null>`.
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(string(t.Type))
	b.WriteByte(' ')
	b.WriteString(t.Lexeme)
	b.WriteByte(' ')
	switch lit := t.Literal.(type) {
	case float64:
		b.WriteString(formatNumberLiteral(lit))
	case string:
		b.WriteString(lit)
	default:
		b.WriteString("null")
	}
	return b.String()
}

func lookupIdent(ident string) TokenType {
	switch ident {
	case "and":
		return tokenAnd
	case "class":
		return tokenClass
	case "else":
		return tokenElse
	case "false":
		return tokenFalse
	case "fun":
		return tokenFun
	case "for":
		return tokenFor
	case "if":
		return tokenIf
	case "nil":
		return tokenNil
	case "or":
		return tokenOr
	case "print":
		return tokenPrint
	case "return":
		return tokenReturn
	case "super":
		return tokenSuper
	case "this":
		return tokenThis
	case "true":
		return tokenTrue
	case "var":
		return tokenVar
	case "while":
		return tokenWhile
	}
	return tokenIdent
}
