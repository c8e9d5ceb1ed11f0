package lox

import "fmt"

type parseError struct {
	pos Position
	msg string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type parser struct {
	l *lexer

	curToken  Token
	peekToken Token

	errors []error

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

func newParser(input string) *parser {
	l := newLexer(input)
	p := &parser{l: l}

	p.prefixFns = make(map[TokenType]prefixParseFn)
	p.infixFns = make(map[TokenType]infixParseFn)

	p.registerPrefix(tokenNumber, p.parseNumberLiteral)
	p.registerPrefix(tokenString, p.parseStringLiteral)
	p.registerPrefix(tokenTrue, p.parseBooleanLiteral)
	p.registerPrefix(tokenFalse, p.parseBooleanLiteral)
	p.registerPrefix(tokenNil, p.parseNilLiteral)
	p.registerPrefix(tokenIdent, p.parseIdentifier)
	p.registerPrefix(tokenThis, p.parseThisExpression)
	p.registerPrefix(tokenSuper, p.parseSuperExpression)
	p.registerPrefix(tokenLeftParen, p.parseGroupedExpression)
	p.registerPrefix(tokenBang, p.parsePrefixExpression)
	p.registerPrefix(tokenMinus, p.parsePrefixExpression)

	p.infixFns[tokenEqual] = p.parseAssignExpression
	p.infixFns[tokenOr] = p.parseLogicalExpression
	p.infixFns[tokenAnd] = p.parseLogicalExpression
	p.infixFns[tokenEqualEqual] = p.parseInfixExpression
	p.infixFns[tokenBangEqual] = p.parseInfixExpression
	p.infixFns[tokenLess] = p.parseInfixExpression
	p.infixFns[tokenLessEqual] = p.parseInfixExpression
	p.infixFns[tokenGreater] = p.parseInfixExpression
	p.infixFns[tokenGreaterEqual] = p.parseInfixExpression
	p.infixFns[tokenPlus] = p.parseInfixExpression
	p.infixFns[tokenMinus] = p.parseInfixExpression
	p.infixFns[tokenStar] = p.parseInfixExpression
	p.infixFns[tokenSlash] = p.parseInfixExpression
	p.infixFns[tokenLeftParen] = p.parseCallExpression
	p.infixFns[tokenDot] = p.parseGetExpression

	p.nextToken()
	p.nextToken()

	return p
}

func (p *parser) registerPrefix(tt TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.nextToken()
}

// ParseProgram parses every declaration in the source. After a syntax
// error the parser synchronizes to the next statement boundary and keeps
// going, so one run surfaces multiple independent errors.
func (p *parser) ParseProgram() (*Program, []error) {
	program := &Program{}

	for p.curToken.Type != tokenEOF {
		before := len(p.errors)
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.errors) > before {
			p.synchronize()
			continue
		}
		p.nextToken()
	}

	return program, append(p.l.errors, p.errors...)
}

// synchronize discards tokens until a statement boundary: just past a
// semicolon, or right before a statement-introducing keyword.
func (p *parser) synchronize() {
	for p.curToken.Type != tokenEOF {
		if p.curToken.Type == tokenSemicolon {
			p.nextToken()
			return
		}
		switch p.peekToken.Type {
		case tokenClass, tokenFun, tokenVar, tokenFor, tokenIf, tokenWhile, tokenPrint, tokenReturn:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

func (p *parser) parseDeclaration() Statement {
	switch p.curToken.Type {
	case tokenVar:
		return p.parseVarDeclaration()
	case tokenFun:
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		return p.parseFunction()
	case tokenClass:
		return p.parseClassDeclaration()
	default:
		return p.parseStatement()
	}
}

func (p *parser) parseStatement() Statement {
	switch p.curToken.Type {
	case tokenPrint:
		return p.parsePrintStatement()
	case tokenLeftBrace:
		return p.parseBlockStatement()
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenFor:
		return p.parseForStatement()
	case tokenReturn:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseVarDeclaration() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	name := p.curToken.Lexeme

	var init Expression
	if p.peekToken.Type == tokenEqual {
		p.nextToken()
		p.nextToken()
		init = p.parseExpression(lowestPrec)
		if init == nil {
			return nil
		}
	}

	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &VarStmt{Name: name, Initializer: init, position: pos}
}

// parseFunction parses a function from its name token onward; fun
// declarations and class methods share it.
func (p *parser) parseFunction() *FunctionStmt {
	pos := p.curToken.Pos
	name := p.curToken.Lexeme

	if !p.expectPeek(tokenLeftParen) {
		return nil
	}

	params := []string{}
	if p.peekToken.Type == tokenRightParen {
		p.nextToken()
	} else {
		p.nextToken()
		if p.curToken.Type != tokenIdent {
			p.errorExpected(p.curToken, "parameter name")
			return nil
		}
		params = append(params, p.curToken.Lexeme)
		for p.peekToken.Type == tokenComma {
			p.nextToken()
			p.nextToken()
			if p.curToken.Type != tokenIdent {
				p.errorExpected(p.curToken, "parameter name")
				return nil
			}
			params = append(params, p.curToken.Lexeme)
		}
		if !p.expectPeek(tokenRightParen) {
			return nil
		}
	}

	if !p.expectPeek(tokenLeftBrace) {
		return nil
	}
	body := p.parseBlock()

	return &FunctionStmt{Name: name, Params: params, Body: body, position: pos}
}

func (p *parser) parseClassDeclaration() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	name := p.curToken.Lexeme

	var superclass *VariableExpr
	if p.peekToken.Type == tokenLess {
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		superclass = &VariableExpr{Name: p.curToken.Lexeme, position: p.curToken.Pos}
	}

	if !p.expectPeek(tokenLeftBrace) {
		return nil
	}

	methods := []*FunctionStmt{}
	for p.peekToken.Type != tokenRightBrace && p.peekToken.Type != tokenEOF {
		p.nextToken()
		if p.curToken.Type != tokenIdent {
			p.errorExpected(p.curToken, "method name")
			return nil
		}
		method := p.parseFunction()
		if method == nil {
			return nil
		}
		methods = append(methods, method)
	}

	if !p.expectPeek(tokenRightBrace) {
		return nil
	}
	return &ClassStmt{Name: name, Superclass: superclass, Methods: methods, position: pos}
}

func (p *parser) parsePrintStatement() Statement {
	pos := p.curToken.Pos
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &PrintStmt{Expr: expr, position: pos}
}

func (p *parser) parseBlockStatement() Statement {
	pos := p.curToken.Pos
	stmts := p.parseBlock()
	return &BlockStmt{Statements: stmts, position: pos}
}

// parseBlock parses statements between braces; the current token is the
// opening brace on entry and the closing brace on exit.
func (p *parser) parseBlock() []Statement {
	stmts := []Statement{}
	for p.peekToken.Type != tokenRightBrace && p.peekToken.Type != tokenEOF {
		p.nextToken()
		before := len(p.errors)
		stmt := p.parseDeclaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if len(p.errors) > before {
			return stmts
		}
	}
	p.expectPeek(tokenRightBrace)
	return stmts
}

func (p *parser) parseIfStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenLeftParen) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(lowestPrec)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(tokenRightParen) {
		return nil
	}

	p.nextToken()
	consequent := p.parseStatement()
	if consequent == nil {
		return nil
	}

	var alternate Statement
	if p.peekToken.Type == tokenElse {
		p.nextToken()
		p.nextToken()
		alternate = p.parseStatement()
		if alternate == nil {
			return nil
		}
	}

	return &IfStmt{Condition: condition, Consequent: consequent, Alternate: alternate, position: pos}
}

func (p *parser) parseWhileStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenLeftParen) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(lowestPrec)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(tokenRightParen) {
		return nil
	}

	p.nextToken()
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &WhileStmt{Condition: condition, Body: body, position: pos}
}

// parseForStatement desugars the for loop into a block holding the
// initializer and a while loop whose body ends with the increment.
func (p *parser) parseForStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenLeftParen) {
		return nil
	}

	var initializer Statement
	switch p.peekToken.Type {
	case tokenSemicolon:
		p.nextToken()
	case tokenVar:
		p.nextToken()
		initializer = p.parseVarDeclaration()
		if initializer == nil {
			return nil
		}
	default:
		p.nextToken()
		initializer = p.parseExpressionStatement()
		if initializer == nil {
			return nil
		}
	}

	var condition Expression
	if p.peekToken.Type != tokenSemicolon {
		p.nextToken()
		condition = p.parseExpression(lowestPrec)
		if condition == nil {
			return nil
		}
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}

	var increment Expression
	if p.peekToken.Type != tokenRightParen {
		p.nextToken()
		increment = p.parseExpression(lowestPrec)
		if increment == nil {
			return nil
		}
	}
	if !p.expectPeek(tokenRightParen) {
		return nil
	}

	p.nextToken()
	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		body = &BlockStmt{
			Statements: []Statement{body, &ExprStmt{Expr: increment, position: increment.Pos()}},
			position:   body.Pos(),
		}
	}
	if condition == nil {
		condition = &LiteralExpr{Value: true, position: pos}
	}
	var loop Statement = &WhileStmt{Condition: condition, Body: body, position: pos}
	if initializer != nil {
		loop = &BlockStmt{Statements: []Statement{initializer, loop}, position: pos}
	}
	return loop
}

func (p *parser) parseReturnStatement() Statement {
	pos := p.curToken.Pos
	var value Expression
	if p.peekToken.Type != tokenSemicolon {
		p.nextToken()
		value = p.parseExpression(lowestPrec)
		if value == nil {
			return nil
		}
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &ReturnStmt{Value: value, position: pos}
}

func (p *parser) parseExpressionStatement() Statement {
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &ExprStmt{Expr: expr, position: expr.Pos()}
}

const (
	lowestPrec = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precCall
)

var precedences = map[TokenType]int{
	tokenEqual:        precAssign,
	tokenOr:           precOr,
	tokenAnd:          precAnd,
	tokenEqualEqual:   precEquality,
	tokenBangEqual:    precEquality,
	tokenLess:         precComparison,
	tokenLessEqual:    precComparison,
	tokenGreater:      precComparison,
	tokenGreaterEqual: precComparison,
	tokenPlus:         precSum,
	tokenMinus:        precSum,
	tokenStar:         precProduct,
	tokenSlash:        precProduct,
	tokenLeftParen:    precCall,
	tokenDot:          precCall,
}

func (p *parser) parseExpression(precedence int) Expression {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected(p.curToken)
		return nil
	}

	left := prefix()

	for left != nil && p.peekToken.Type != tokenEOF && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *parser) parseNumberLiteral() Expression {
	return &LiteralExpr{Value: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseStringLiteral() Expression {
	return &LiteralExpr{Value: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseBooleanLiteral() Expression {
	return &LiteralExpr{Value: p.curToken.Type == tokenTrue, position: p.curToken.Pos}
}

func (p *parser) parseNilLiteral() Expression {
	return &LiteralExpr{Value: nil, position: p.curToken.Pos}
}

func (p *parser) parseIdentifier() Expression {
	return &VariableExpr{Name: p.curToken.Lexeme, position: p.curToken.Pos}
}

func (p *parser) parseThisExpression() Expression {
	return &ThisExpr{position: p.curToken.Pos}
}

func (p *parser) parseSuperExpression() Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenDot) {
		return nil
	}
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	return &SuperExpr{Method: p.curToken.Lexeme, position: pos}
}

func (p *parser) parseGroupedExpression() Expression {
	pos := p.curToken.Pos
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenRightParen) {
		return nil
	}
	return &GroupingExpr{Expr: expr, position: pos}
}

func (p *parser) parsePrefixExpression() Expression {
	pos := p.curToken.Pos
	operator := p.curToken
	p.nextToken()
	right := p.parseExpression(precPrefix)
	if right == nil {
		return nil
	}
	return &UnaryExpr{Operator: operator, Right: right, position: pos}
}

func (p *parser) parseInfixExpression(left Expression) Expression {
	pos := p.curToken.Pos
	operator := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Left: left, Operator: operator, Right: right, position: pos}
}

func (p *parser) parseLogicalExpression(left Expression) Expression {
	pos := p.curToken.Pos
	operator := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &LogicalExpr{Left: left, Operator: operator, Right: right, position: pos}
}

// parseAssignExpression handles `target = value`. Assignment is
// right-associative and only variable references and property accesses
// are valid targets.
func (p *parser) parseAssignExpression(left Expression) Expression {
	pos := p.curToken.Pos
	p.nextToken()
	value := p.parseExpression(precAssign - 1)
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *VariableExpr:
		return &AssignExpr{Name: target.Name, Value: value, position: target.Pos()}
	case *GetExpr:
		return &SetExpr{Object: target.Object, Property: target.Property, Value: value, position: target.Pos()}
	default:
		p.errors = append(p.errors, &parseError{pos: pos, msg: "invalid assignment target"})
		return nil
	}
}

func (p *parser) parseCallExpression(callee Expression) Expression {
	expr := &CallExpr{Callee: callee, Args: []Expression{}, position: callee.Pos()}

	if p.peekToken.Type == tokenRightParen {
		p.nextToken()
		return expr
	}

	p.nextToken()
	arg := p.parseExpression(lowestPrec)
	if arg == nil {
		return nil
	}
	expr.Args = append(expr.Args, arg)

	for p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(lowestPrec)
		if arg == nil {
			return nil
		}
		expr.Args = append(expr.Args, arg)
	}

	if !p.expectPeek(tokenRightParen) {
		return nil
	}
	return expr
}

func (p *parser) parseGetExpression(object Expression) Expression {
	p.nextToken()
	if p.curToken.Type != tokenIdent {
		p.errorExpected(p.curToken, "property name after .")
		return nil
	}
	return &GetExpr{Object: object, Property: p.curToken.Lexeme, position: object.Pos()}
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.peekToken, string(tt))
	return false
}

func (p *parser) errorExpected(tok Token, expected string) {
	p.errors = append(p.errors, &parseError{pos: tok.Pos, msg: fmt.Sprintf("expected %s, got %s", expected, tok.Type)})
}

func (p *parser) errorUnexpected(tok Token) {
	p.errors = append(p.errors, &parseError{pos: tok.Pos, msg: fmt.Sprintf("unexpected token %s", tok.Type)})
}
