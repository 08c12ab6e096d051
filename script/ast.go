package script

// Stmt is a statement node.
type Stmt interface {
	stmtPos() Pos
}

// Expr is an expression node.
type Expr interface {
	exprPos() Pos
}

type (
	ImportStmt struct {
		Pos    Pos
		Module string
		Alias  string
	}

	// AssignStmt binds one name, or unpacks a sequence into several.
	AssignStmt struct {
		Pos     Pos
		Targets []string
		Value   Expr
	}

	ExprStmt struct {
		Pos Pos
		X   Expr
	}

	ForStmt struct {
		Pos     Pos
		Targets []string
		Iter    Expr
		Body    []Stmt
	}

	PassStmt struct {
		Pos Pos
	}
)

func (s *ImportStmt) stmtPos() Pos { return s.Pos }
func (s *AssignStmt) stmtPos() Pos { return s.Pos }
func (s *ExprStmt) stmtPos() Pos   { return s.Pos }
func (s *ForStmt) stmtPos() Pos    { return s.Pos }
func (s *PassStmt) stmtPos() Pos   { return s.Pos }

type (
	Name struct {
		Pos  Pos
		Name string
	}

	NumberLit struct {
		Pos   Pos
		Value float64
	}

	StringLit struct {
		Pos   Pos
		Value string
	}

	BoolLit struct {
		Pos   Pos
		Value bool
	}

	NoneLit struct {
		Pos Pos
	}

	ListLit struct {
		Pos   Pos
		Elems []Expr
	}

	TupleLit struct {
		Pos   Pos
		Elems []Expr
	}

	Attr struct {
		Pos  Pos
		X    Expr
		Name string
	}

	Index struct {
		Pos   Pos
		X     Expr
		Index Expr
	}

	Keyword struct {
		Name  string
		Value Expr
	}

	Call struct {
		Pos    Pos
		Fn     Expr
		Args   []Expr
		Kwargs []Keyword
	}

	Unary struct {
		Pos Pos
		Op  string
		X   Expr
	}

	Binary struct {
		Pos  Pos
		Op   string
		X, Y Expr
	}
)

func (e *Name) exprPos() Pos      { return e.Pos }
func (e *NumberLit) exprPos() Pos { return e.Pos }
func (e *StringLit) exprPos() Pos { return e.Pos }
func (e *BoolLit) exprPos() Pos   { return e.Pos }
func (e *NoneLit) exprPos() Pos   { return e.Pos }
func (e *ListLit) exprPos() Pos   { return e.Pos }
func (e *TupleLit) exprPos() Pos  { return e.Pos }
func (e *Attr) exprPos() Pos      { return e.Pos }
func (e *Index) exprPos() Pos     { return e.Pos }
func (e *Call) exprPos() Pos      { return e.Pos }
func (e *Unary) exprPos() Pos     { return e.Pos }
func (e *Binary) exprPos() Pos    { return e.Pos }
