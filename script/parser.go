package script

// Program is a parsed playground script.
type Program struct {
	Stmts []Stmt
}

// unsupported statements get a clearer message than a generic syntax
// error.
var unsupported = map[string]bool{
	"while": true, "def": true, "class": true, "if": true, "elif": true, "else": true,
	"return": true, "lambda": true, "with": true, "try": true, "except": true,
	"global": true, "yield": true, "async": true, "await": true,
}

type parser struct {
	toks []token
	i    int
}

// Parse tokenizes and parses src.
func Parse(src string) (*Program, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := &Program{}
	for p.peek().kind != tokEOF {
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) isName(text string) bool {
	t := p.peek()
	return t.kind == tokName && t.text == text
}

func (p *parser) expectOp(text string) (token, error) {
	t := p.next()
	if t.kind != tokOp || t.text != text {
		return t, syntaxErrorf(t.pos, "expected %q, found %s", text, t)
	}
	return t, nil
}

func (p *parser) expectName() (token, error) {
	t := p.next()
	if t.kind != tokName || isKeyword(t.text) {
		return t, syntaxErrorf(t.pos, "expected a name, found %s", t)
	}
	return t, nil
}

func (p *parser) expectNewline() error {
	t := p.next()
	if t.kind != tokNewline {
		return syntaxErrorf(t.pos, "expected end of line, found %s", t)
	}
	return nil
}

func isKeyword(s string) bool {
	switch s {
	case "import", "as", "for", "in", "pass", "True", "False", "None", "from":
		return true
	}
	return unsupported[s]
}

func (p *parser) stmt() (Stmt, error) {
	t := p.peek()
	if t.kind == tokIndent {
		return nil, syntaxErrorf(t.pos, "unexpected indent")
	}
	if t.kind == tokName {
		switch {
		case t.text == "for":
			return p.forStmt()
		case t.text == "from":
			return nil, syntaxErrorf(t.pos, "only 'import sprechstimme' style imports are supported")
		case unsupported[t.text]:
			return nil, syntaxErrorf(t.pos, "%q statements are not supported in the playground", t.text)
		}
	}
	stmt, err := p.simpleStmt()
	if err != nil {
		return nil, err
	}
	return stmt, p.expectNewline()
}

func (p *parser) simpleStmt() (Stmt, error) {
	t := p.peek()
	switch {
	case p.isName("import"):
		return p.importStmt()
	case p.isName("pass"):
		p.next()
		return &PassStmt{Pos: t.pos}, nil
	}

	x, err := p.exprList()
	if err != nil {
		return nil, err
	}
	if !p.isOp("=") {
		return &ExprStmt{Pos: t.pos, X: x}, nil
	}
	eq := p.next()
	targets, err := assignTargets(x)
	if err != nil {
		return nil, err
	}
	value, err := p.exprList()
	if err != nil {
		return nil, err
	}
	if p.isOp("=") {
		return nil, syntaxErrorf(eq.pos, "chained assignment is not supported")
	}
	return &AssignStmt{Pos: t.pos, Targets: targets, Value: value}, nil
}

func assignTargets(x Expr) ([]string, error) {
	switch x := x.(type) {
	case *Name:
		return []string{x.Name}, nil
	case *TupleLit:
		return nameList(x.Elems)
	case *ListLit:
		return nameList(x.Elems)
	}
	return nil, syntaxErrorf(x.exprPos(), "can only assign to names")
}

func nameList(elems []Expr) ([]string, error) {
	names := make([]string, len(elems))
	for i, e := range elems {
		n, ok := e.(*Name)
		if !ok {
			return nil, syntaxErrorf(e.exprPos(), "can only assign to names")
		}
		names[i] = n.Name
	}
	return names, nil
}

func (p *parser) importStmt() (Stmt, error) {
	t := p.next()
	mod, err := p.expectName()
	if err != nil {
		return nil, err
	}
	module := mod.text
	for p.isOp(".") {
		p.next()
		part, err := p.expectName()
		if err != nil {
			return nil, err
		}
		module += "." + part.text
	}
	alias := module
	if p.isName("as") {
		p.next()
		a, err := p.expectName()
		if err != nil {
			return nil, err
		}
		alias = a.text
	}
	return &ImportStmt{Pos: t.pos, Module: module, Alias: alias}, nil
}

func (p *parser) forStmt() (Stmt, error) {
	t := p.next()
	var targets []string
	for {
		n, err := p.expectName()
		if err != nil {
			return nil, err
		}
		targets = append(targets, n.text)
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	if !p.isName("in") {
		return nil, syntaxErrorf(p.peek().pos, "expected 'in', found %s", p.peek())
	}
	p.next()
	iter, err := p.exprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Pos: t.pos, Targets: targets, Iter: iter, Body: body}, nil
}

// block parses an indented suite, or a single simple statement on the
// same line as the colon.
func (p *parser) block() ([]Stmt, error) {
	if p.peek().kind != tokNewline {
		stmt, err := p.simpleStmt()
		if err != nil {
			return nil, err
		}
		return []Stmt{stmt}, p.expectNewline()
	}
	p.next()
	if t := p.next(); t.kind != tokIndent {
		return nil, syntaxErrorf(t.pos, "expected an indented block")
	}
	var body []Stmt
	for p.peek().kind != tokDedent && p.peek().kind != tokEOF {
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()
	return body, nil
}

// exprList parses "a" or "a, b, ..." (a tuple).
func (p *parser) exprList() (Expr, error) {
	start := p.peek().pos
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.isOp(",") {
		return x, nil
	}
	elems := []Expr{x}
	for p.isOp(",") {
		p.next()
		if !p.startsExpr() {
			break
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &TupleLit{Pos: start, Elems: elems}, nil
}

func (p *parser) startsExpr() bool {
	t := p.peek()
	switch t.kind {
	case tokName:
		return !isKeyword(t.text) || t.text == "True" || t.text == "False" || t.text == "None"
	case tokNumber, tokString:
		return true
	case tokOp:
		return t.text == "(" || t.text == "[" || t.text == "-" || t.text == "+"
	}
	return false
}

func (p *parser) expr() (Expr, error) {
	return p.binary(0)
}

var precedence = map[string]int{
	"+": 1, "-": 1,
	"*": 2, "/": 2, "%": 2,
}

func (p *parser) binary(min int) (Expr, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		prec, ok := precedence[t.text]
		if t.kind != tokOp || !ok || prec <= min {
			return x, nil
		}
		p.next()
		y, err := p.binary(prec)
		if err != nil {
			return nil, err
		}
		x = &Binary{Pos: t.pos, Op: t.text, X: x, Y: y}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.isOp("-") || p.isOp("+") {
		t := p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Pos: t.pos, Op: t.text, X: x}, nil
	}
	x, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.isOp("**") {
		t := p.next()
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Binary{Pos: t.pos, Op: "**", X: x, Y: y}, nil
	}
	return x, nil
}

func (p *parser) postfix() (Expr, error) {
	x, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case p.isOp("("):
			p.next()
			call, err := p.callArgs(t.pos, x)
			if err != nil {
				return nil, err
			}
			x = call
		case p.isOp("."):
			p.next()
			n, err := p.expectName()
			if err != nil {
				return nil, err
			}
			x = &Attr{Pos: n.pos, X: x, Name: n.text}
		case p.isOp("["):
			p.next()
			idx, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp("]"); err != nil {
				return nil, err
			}
			x = &Index{Pos: t.pos, X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *parser) callArgs(pos Pos, fn Expr) (Expr, error) {
	call := &Call{Pos: pos, Fn: fn}
	for !p.isOp(")") {
		t := p.peek()
		if t.kind == tokName && p.toks[p.i+1].kind == tokOp && p.toks[p.i+1].text == "=" {
			p.next()
			p.next()
			v, err := p.expr()
			if err != nil {
				return nil, err
			}
			call.Kwargs = append(call.Kwargs, Keyword{Name: t.text, Value: v})
		} else {
			if len(call.Kwargs) > 0 {
				return nil, syntaxErrorf(t.pos, "positional argument follows keyword argument")
			}
			v, err := p.expr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, v)
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *parser) atom() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &NumberLit{Pos: t.pos, Value: t.num}, nil
	case tokString:
		s := t.text
		for p.peek().kind == tokString {
			s += p.next().text
		}
		return &StringLit{Pos: t.pos, Value: s}, nil
	case tokName:
		switch t.text {
		case "True":
			return &BoolLit{Pos: t.pos, Value: true}, nil
		case "False":
			return &BoolLit{Pos: t.pos, Value: false}, nil
		case "None":
			return &NoneLit{Pos: t.pos}, nil
		}
		if isKeyword(t.text) {
			return nil, syntaxErrorf(t.pos, "unexpected keyword %q", t.text)
		}
		return &Name{Pos: t.pos, Name: t.text}, nil
	case tokOp:
		switch t.text {
		case "(":
			return p.parenthesized(t.pos)
		case "[":
			elems, err := p.elems("]")
			if err != nil {
				return nil, err
			}
			return &ListLit{Pos: t.pos, Elems: elems}, nil
		case "{":
			return nil, syntaxErrorf(t.pos, "dictionaries are not supported")
		}
	}
	return nil, syntaxErrorf(t.pos, "unexpected %s", t)
}

// parenthesized handles grouping, the empty tuple and tuple literals.
func (p *parser) parenthesized(pos Pos) (Expr, error) {
	if p.isOp(")") {
		p.next()
		return &TupleLit{Pos: pos}, nil
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.isOp(")") {
		p.next()
		return x, nil
	}
	if _, err := p.expectOp(","); err != nil {
		return nil, err
	}
	rest, err := p.elems(")")
	if err != nil {
		return nil, err
	}
	return &TupleLit{Pos: pos, Elems: append([]Expr{x}, rest...)}, nil
}

// elems parses comma separated expressions up to and including close.
// A trailing comma is allowed.
func (p *parser) elems(close string) ([]Expr, error) {
	var elems []Expr
	for !p.isOp(close) {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	if _, err := p.expectOp(close); err != nil {
		return nil, err
	}
	return elems, nil
}
