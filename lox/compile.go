package lox

// Compile runs the front half of the pipeline: lex, parse, resolve. Any
// accumulated error suppresses execution entirely; the program is only
// returned when the error slice is empty.
func Compile(source string) (*Program, []error) {
	p := newParser(source)
	program, errs := p.ParseProgram()
	if len(errs) > 0 {
		return nil, errs
	}
	if errs := Resolve(program); len(errs) > 0 {
		return nil, errs
	}
	program.source = source
	return program, nil
}

// ParseExpression parses the source as a single expression, for the
// parse and evaluate modes. The expression must span the whole source;
// trailing tokens are a syntax error.
func ParseExpression(source string) (Expression, []error) {
	p := newParser(source)
	expr := p.parseExpression(lowestPrec)
	if expr != nil && p.peekToken.Type != tokenEOF {
		p.errorUnexpected(p.peekToken)
	}
	errs := append(p.l.errors, p.errors...)
	if len(errs) > 0 {
		return nil, errs
	}
	return expr, nil
}
