package lox

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

// Program is a parsed and resolved source unit. Locals carries the
// resolver's hop counts, keyed by variable-reference node identity.
type Program struct {
	Statements []Statement
	Locals     map[Expression]int

	source string
}

type LiteralExpr struct {
	// Value is a float64, string, bool, or nil.
	Value    any
	position Position
}

func (e *LiteralExpr) exprNode()     {}
func (e *LiteralExpr) Pos() Position { return e.position }

type GroupingExpr struct {
	Expr     Expression
	position Position
}

func (e *GroupingExpr) exprNode()     {}
func (e *GroupingExpr) Pos() Position { return e.position }

type UnaryExpr struct {
	Operator Token
	Right    Expression
	position Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.position }

type BinaryExpr struct {
	Left     Expression
	Operator Token
	Right    Expression
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }

// LogicalExpr is kept apart from BinaryExpr because and/or short-circuit:
// the right operand must not be evaluated when the left one decides.
type LogicalExpr struct {
	Left     Expression
	Operator Token
	Right    Expression
	position Position
}

func (e *LogicalExpr) exprNode()     {}
func (e *LogicalExpr) Pos() Position { return e.position }

type VariableExpr struct {
	Name     string
	position Position
}

func (e *VariableExpr) exprNode()     {}
func (e *VariableExpr) Pos() Position { return e.position }

type AssignExpr struct {
	Name     string
	Value    Expression
	position Position
}

func (e *AssignExpr) exprNode()     {}
func (e *AssignExpr) Pos() Position { return e.position }

type CallExpr struct {
	Callee   Expression
	Args     []Expression
	position Position
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.position }

type GetExpr struct {
	Object   Expression
	Property string
	position Position
}

func (e *GetExpr) exprNode()     {}
func (e *GetExpr) Pos() Position { return e.position }

type SetExpr struct {
	Object   Expression
	Property string
	Value    Expression
	position Position
}

func (e *SetExpr) exprNode()     {}
func (e *SetExpr) Pos() Position { return e.position }

type ThisExpr struct {
	position Position
}

func (e *ThisExpr) exprNode()     {}
func (e *ThisExpr) Pos() Position { return e.position }

type SuperExpr struct {
	Method   string
	position Position
}

func (e *SuperExpr) exprNode()     {}
func (e *SuperExpr) Pos() Position { return e.position }

type ExprStmt struct {
	Expr     Expression
	position Position
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.position }

type PrintStmt struct {
	Expr     Expression
	position Position
}

func (s *PrintStmt) stmtNode()     {}
func (s *PrintStmt) Pos() Position { return s.position }

type VarStmt struct {
	Name        string
	Initializer Expression
	position    Position
}

func (s *VarStmt) stmtNode()     {}
func (s *VarStmt) Pos() Position { return s.position }

type BlockStmt struct {
	Statements []Statement
	position   Position
}

func (s *BlockStmt) stmtNode()     {}
func (s *BlockStmt) Pos() Position { return s.position }

type IfStmt struct {
	Condition  Expression
	Consequent Statement
	Alternate  Statement
	position   Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.position }

type WhileStmt struct {
	Condition Expression
	Body      Statement
	position  Position
}

func (s *WhileStmt) stmtNode()     {}
func (s *WhileStmt) Pos() Position { return s.position }

type FunctionStmt struct {
	Name     string
	Params   []string
	Body     []Statement
	position Position
}

func (s *FunctionStmt) stmtNode()     {}
func (s *FunctionStmt) Pos() Position { return s.position }

type ReturnStmt struct {
	// Value is nil for a bare `return;`.
	Value    Expression
	position Position
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.position }

type ClassStmt struct {
	Name       string
	Superclass *VariableExpr
	Methods    []*FunctionStmt
	position   Position
}

func (s *ClassStmt) stmtNode()     {}
func (s *ClassStmt) Pos() Position { return s.position }
