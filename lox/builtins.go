package lox

func registerDefaultBuiltins(in *Interpreter) {
	in.RegisterBuiltin("clock", 0, builtinClock)
}

// builtinClock returns seconds since the Unix epoch as a number.
func builtinClock(in *Interpreter, args []Value) (Value, error) {
	now := in.config.Clock()
	return NewNumber(float64(now.UnixNano()) / 1e9), nil
}
