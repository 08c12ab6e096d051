package script

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/simukka/sprechstimme-playground/audio"
)

// Limits bound the work a program may do.
type Limits struct {
	// MaxSteps caps executed statements, loop iterations included.
	MaxSteps int
	// MaxEvents caps the number of pattern steps a program may produce.
	MaxEvents int
}

var DefaultLimits = Limits{
	MaxSteps:  100000,
	MaxEvents: 4096,
}

// Result is what a program produced: one sequential pattern plus printed
// lines and mixer settings.
type Result struct {
	Events []audio.Event
	Output []string
	Tempo  float64
	// Volume is nil unless the program called set_volume.
	Volume *float64
	// WaveShape is empty unless the program called set_wave.
	WaveShape audio.WaveShape
}

// Duration is the total length of the pattern in seconds.
func (r *Result) Duration() float64 {
	d := 0.0
	for _, ev := range r.Events {
		d += ev.Duration
	}
	return d
}

// Run parses and runs src with DefaultLimits.
func Run(src string) (*Result, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return prog.Run(DefaultLimits)
}

type interp struct {
	limits  Limits
	globals map[string]Value
	synths  map[string]audio.WaveShape
	shape   audio.WaveShape
	steps   int
	res     *Result
}

// Run evaluates the program. Play calls append to the result's pattern in
// program order; nothing is played.
func (p *Program) Run(limits Limits) (*Result, error) {
	in := &interp{
		limits:  limits,
		globals: make(map[string]Value),
		synths:  make(map[string]audio.WaveShape),
		res:     &Result{Tempo: audio.DefaultTempo},
	}
	for name, b := range builtins {
		in.globals[name] = b
	}
	if err := in.exec(p.Stmts); err != nil {
		return in.res, err
	}
	return in.res, nil
}

func (in *interp) step(pos Pos) error {
	in.steps++
	if in.limits.MaxSteps > 0 && in.steps > in.limits.MaxSteps {
		return &Error{Pos: pos, Msg: fmt.Sprintf("more than %d steps", in.limits.MaxSteps), Err: ErrLimit}
	}
	return nil
}

func (in *interp) emit(pos Pos, ev audio.Event) error {
	if in.limits.MaxEvents > 0 && len(in.res.Events) >= in.limits.MaxEvents {
		return &Error{Pos: pos, Msg: fmt.Sprintf("more than %d notes", in.limits.MaxEvents), Err: ErrLimit}
	}
	if ev.Shape == "" {
		ev.Shape = in.shape
	}
	in.res.Events = append(in.res.Events, ev)
	return nil
}

func (in *interp) exec(stmts []Stmt) error {
	for _, s := range stmts {
		if err := in.step(s.stmtPos()); err != nil {
			return err
		}
		if err := in.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *interp) execStmt(s Stmt) error {
	switch s := s.(type) {
	case *PassStmt:
		return nil
	case *ImportStmt:
		mod, ok := modules[s.Module]
		if !ok {
			return errorf(s.Pos, "module %q is not available in the playground", s.Module)
		}
		in.globals[s.Alias] = mod()
		return nil
	case *ExprStmt:
		_, err := in.eval(s.X)
		return err
	case *AssignStmt:
		v, err := in.eval(s.Value)
		if err != nil {
			return err
		}
		return in.assign(s.Pos, s.Targets, v)
	case *ForStmt:
		iter, err := in.eval(s.Iter)
		if err != nil {
			return err
		}
		items, err := iterate(s.Iter.exprPos(), iter)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := in.step(s.Pos); err != nil {
				return err
			}
			if err := in.assign(s.Pos, s.Targets, item); err != nil {
				return err
			}
			if err := in.exec(s.Body); err != nil {
				return err
			}
		}
		return nil
	}
	return errorf(s.stmtPos(), "unsupported statement")
}

func (in *interp) assign(pos Pos, targets []string, v Value) error {
	if len(targets) == 1 {
		in.globals[targets[0]] = v
		return nil
	}
	items, err := iterate(pos, v)
	if err != nil {
		return err
	}
	if len(items) != len(targets) {
		return errorf(pos, "cannot unpack %d values into %d names", len(items), len(targets))
	}
	for i, name := range targets {
		in.globals[name] = items[i]
	}
	return nil
}

func iterate(pos Pos, v Value) ([]Value, error) {
	switch v := v.(type) {
	case *list:
		return v.elems, nil
	case string:
		items := make([]Value, 0, len(v))
		for _, r := range v {
			items = append(items, string(r))
		}
		return items, nil
	}
	return nil, errorf(pos, "%s is not iterable", typeName(v))
}

func (in *interp) eval(e Expr) (Value, error) {
	switch e := e.(type) {
	case *NumberLit:
		return e.Value, nil
	case *StringLit:
		return e.Value, nil
	case *BoolLit:
		return e.Value, nil
	case *NoneLit:
		return nil, nil
	case *Name:
		v, ok := in.globals[e.Name]
		if !ok {
			return nil, errorf(e.Pos, "name %q is not defined", e.Name)
		}
		return v, nil
	case *ListLit:
		elems, err := in.evalAll(e.Elems)
		if err != nil {
			return nil, err
		}
		return &list{elems: elems}, nil
	case *TupleLit:
		elems, err := in.evalAll(e.Elems)
		if err != nil {
			return nil, err
		}
		return &list{elems: elems, tuple: true}, nil
	case *Attr:
		x, err := in.eval(e.X)
		if err != nil {
			return nil, err
		}
		mod, ok := x.(*module)
		if !ok {
			return nil, errorf(e.Pos, "%s has no attribute %q", typeName(x), e.Name)
		}
		v, ok := mod.attrs[e.Name]
		if !ok {
			return nil, errorf(e.Pos, "module %q has no attribute %q", mod.name, e.Name)
		}
		return v, nil
	case *Index:
		return in.index(e)
	case *Unary:
		x, err := in.eval(e.X)
		if err != nil {
			return nil, err
		}
		f, ok := x.(float64)
		if !ok {
			return nil, errorf(e.Pos, "bad operand type for unary %s: %s", e.Op, typeName(x))
		}
		if e.Op == "-" {
			return -f, nil
		}
		return f, nil
	case *Binary:
		return in.binary(e)
	case *Call:
		return in.call(e)
	}
	return nil, errorf(e.exprPos(), "unsupported expression")
}

func (in *interp) evalAll(exprs []Expr) ([]Value, error) {
	vals := make([]Value, len(exprs))
	for i, x := range exprs {
		v, err := in.eval(x)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (in *interp) index(e *Index) (Value, error) {
	x, err := in.eval(e.X)
	if err != nil {
		return nil, err
	}
	iv, err := in.eval(e.Index)
	if err != nil {
		return nil, err
	}
	i, err := toInt(e.Index.exprPos(), iv)
	if err != nil {
		return nil, err
	}
	var items []Value
	switch x := x.(type) {
	case *list:
		items = x.elems
	case string:
		items, _ = iterate(e.Pos, x)
	default:
		return nil, errorf(e.Pos, "%s is not subscriptable", typeName(x))
	}
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return nil, errorf(e.Pos, "index out of range")
	}
	return items[i], nil
}

func (in *interp) binary(e *Binary) (Value, error) {
	x, err := in.eval(e.X)
	if err != nil {
		return nil, err
	}
	y, err := in.eval(e.Y)
	if err != nil {
		return nil, err
	}

	if a, ok := x.(float64); ok {
		if b, ok := y.(float64); ok {
			return arith(e.Pos, e.Op, a, b)
		}
	}
	switch e.Op {
	case "+":
		if a, ok := x.(string); ok {
			if b, ok := y.(string); ok {
				if err := in.checkLen(e.Pos, "string", float64(len(a)+len(b))); err != nil {
					return nil, err
				}
				return a + b, nil
			}
		}
		if a, ok := x.(*list); ok {
			if b, ok := y.(*list); ok && a.tuple == b.tuple {
				if err := in.checkLen(e.Pos, "list", float64(len(a.elems)+len(b.elems))); err != nil {
					return nil, err
				}
				elems := append(append([]Value(nil), a.elems...), b.elems...)
				return &list{elems: elems, tuple: a.tuple}, nil
			}
		}
	case "*":
		seq, n := x, y
		if _, ok := x.(float64); ok {
			seq, n = y, x
		}
		if count, ok := n.(float64); ok {
			return in.repeat(e.Pos, seq, count)
		}
	}
	return nil, errorf(e.Pos, "unsupported operand types for %s: %s and %s", e.Op, typeName(x), typeName(y))
}

func arith(pos Pos, op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "**":
		return math.Pow(a, b), nil
	case "/", "%":
		if b == 0 {
			return nil, errorf(pos, "division by zero")
		}
		if op == "/" {
			return a / b, nil
		}
		return a - b*math.Floor(a/b), nil
	}
	return nil, errorf(pos, "unsupported operator %s", op)
}

func (in *interp) repeat(pos Pos, seq Value, count float64) (Value, error) {
	if count < 0 {
		count = 0
	}
	switch s := seq.(type) {
	case string:
		if err := in.checkLen(pos, "string", float64(len(s))*count); err != nil {
			return nil, err
		}
		n, err := toInt(pos, count)
		if err != nil {
			return nil, err
		}
		return strings.Repeat(s, n), nil
	case *list:
		if err := in.checkLen(pos, "list", float64(len(s.elems))*count); err != nil {
			return nil, err
		}
		n, err := toInt(pos, count)
		if err != nil {
			return nil, err
		}
		elems := make([]Value, 0, len(s.elems)*n)
		for i := 0; i < n; i++ {
			elems = append(elems, s.elems...)
		}
		return &list{elems: elems, tuple: s.tuple}, nil
	}
	return nil, errorf(pos, "can't multiply %s by a number", typeName(seq))
}

// checkLen rejects strings and lists longer than MaxSteps. The size is a
// float so that huge repeat counts cannot overflow.
func (in *interp) checkLen(pos Pos, kind string, size float64) error {
	if in.limits.MaxSteps > 0 && size > float64(in.limits.MaxSteps) {
		return &Error{Pos: pos, Msg: fmt.Sprintf("%s longer than %d", kind, in.limits.MaxSteps), Err: ErrLimit}
	}
	return nil
}

// call is an evaluated call site handed to builtins.
type call struct {
	pos    Pos
	name   string
	args   []Value
	kwargs map[string]Value
}

func (in *interp) call(e *Call) (Value, error) {
	fv, err := in.eval(e.Fn)
	if err != nil {
		return nil, err
	}
	b, ok := fv.(*builtin)
	if !ok {
		return nil, errorf(e.Pos, "%s object is not callable", typeName(fv))
	}
	args, err := in.evalAll(e.Args)
	if err != nil {
		return nil, err
	}
	c := &call{pos: e.Pos, name: b.name, args: args, kwargs: make(map[string]Value)}
	for _, kw := range e.Kwargs {
		v, err := in.eval(kw.Value)
		if err != nil {
			return nil, err
		}
		c.kwargs[kw.Name] = v
	}
	v, err := b.fn(in, c)
	if err != nil {
		var serr *Error
		if errors.As(err, &serr) {
			return nil, err
		}
		return nil, &Error{Pos: e.Pos, Msg: b.name + "()", Err: err}
	}
	return v, nil
}

func toInt(pos Pos, v Value) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, errorf(pos, "expected an integer, got %s", repr(v))
	}
	return int(f), nil
}
