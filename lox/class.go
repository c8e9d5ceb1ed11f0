package lox

// Class is shared, read-only after declaration, by every instance and
// subclass.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

// findMethod walks the class chain, nearest first.
func (c *Class) findMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

func (c *Class) initializer() (*Function, bool) {
	return c.findMethod("init")
}

// Instance fields are created lazily on first assignment.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func newInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}
