package lox

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindBuiltin
	KindClass
	KindInstance
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "native fn"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Value is the closed runtime value union: nil, booleans, double-precision
// numbers, strings, functions, natives, classes, and instances.
type Value struct {
	kind ValueKind
	data any
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNil() bool     { return v.kind == KindNil }

// Truthy reports language truthiness: nil and false are falsy, every
// other value is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.data.(bool)
	default:
		return true
	}
}

// Equal implements language equality: values of different kinds are never
// equal and there is no coercion. Functions, classes, and instances
// compare by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.data.(bool) == other.data.(bool)
	case KindNumber:
		return v.data.(float64) == other.data.(float64)
	case KindString:
		return v.data.(string) == other.data.(string)
	default:
		return v.data == other.data
	}
}

// String renders the value the way `print` displays it.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.data.(bool) {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.data.(float64))
	case KindString:
		return v.data.(string)
	case KindFunction:
		return "<fn " + v.Fn().Declaration.Name + ">"
	case KindBuiltin:
		return "<native fn>"
	case KindClass:
		return v.Class().Name
	case KindInstance:
		return v.Instance().Class.Name + " instance"
	default:
		return "<unknown>"
	}
}

func (v Value) Bool() bool          { return v.data.(bool) }
func (v Value) Num() float64        { return v.data.(float64) }
func (v Value) Str() string         { return v.data.(string) }
func (v Value) Fn() *Function       { return v.data.(*Function) }
func (v Value) Builtin() *Builtin   { return v.data.(*Builtin) }
func (v Value) Class() *Class       { return v.data.(*Class) }
func (v Value) Instance() *Instance { return v.data.(*Instance) }
