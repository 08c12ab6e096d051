package script

import (
	"errors"
	"strings"
	"testing"
)

// TestTokenize_Indentation tests indent and dedent tokens
func TestTokenize_Indentation(t *testing.T) {
	src := "for n in x:\n    a(n)\n\n    # comment\n    b()\nc()\n"
	toks, err := tokenize(src)
	if err != nil {
		t.Fatalf("tokenize returned error: %v", err)
	}
	var indents, dedents int
	for _, tk := range toks {
		switch tk.kind {
		case tokIndent:
			indents++
		case tokDedent:
			dedents++
		}
	}
	if indents != 1 || dedents != 1 {
		t.Errorf("Expected 1 indent and 1 dedent, got %d and %d", indents, dedents)
	}
	if last := toks[len(toks)-1]; last.kind != tokEOF {
		t.Errorf("Expected EOF last, got %s", last)
	}
}

// TestTokenize_Brackets tests that newlines inside brackets are joined
func TestTokenize_Brackets(t *testing.T) {
	toks, err := tokenize("x = [\n  'C4',\n  \"E4\",\n]\n")
	if err != nil {
		t.Fatalf("tokenize returned error: %v", err)
	}
	newlines := 0
	for _, tk := range toks {
		if tk.kind == tokNewline {
			newlines++
		}
	}
	if newlines != 1 {
		t.Errorf("Expected a single logical line, got %d", newlines)
	}
}

// TestParse_Statements tests the statement forms
func TestParse_Statements(t *testing.T) {
	src := `import sprechstimme as sp
notes = ["C4", "E4"]
a, b = 1, 2
for note, d in [("C4", 0.5)]:
    sp.play("lead", note, duration=d)
for i in range(3): pass
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(prog.Stmts) != 5 {
		t.Fatalf("Expected 5 statements, got %d", len(prog.Stmts))
	}
	imp, ok := prog.Stmts[0].(*ImportStmt)
	if !ok || imp.Module != "sprechstimme" || imp.Alias != "sp" {
		t.Errorf("Unexpected import %+v", prog.Stmts[0])
	}
	if as, ok := prog.Stmts[2].(*AssignStmt); !ok || len(as.Targets) != 2 {
		t.Errorf("Expected tuple assignment, got %+v", prog.Stmts[2])
	}
	loop, ok := prog.Stmts[3].(*ForStmt)
	if !ok || len(loop.Targets) != 2 || len(loop.Body) != 1 {
		t.Fatalf("Unexpected for loop %+v", prog.Stmts[3])
	}
	call, ok := loop.Body[0].(*ExprStmt).X.(*Call)
	if !ok || len(call.Args) != 2 || len(call.Kwargs) != 1 || call.Kwargs[0].Name != "duration" {
		t.Errorf("Unexpected call %+v", loop.Body[0])
	}
}

// TestParse_Precedence tests arithmetic grouping
func TestParse_Precedence(t *testing.T) {
	res, err := Run("print(1 + 2 * 3, (1 + 2) * 3, -2 ** 2, 7 % 3, 1 / 4)")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := res.Output[0]; got != "7 9 -4 1 0.25" {
		t.Errorf("Got %q", got)
	}
}

// TestParse_Errors tests positioned syntax errors
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"while", "x = 1\nwhile x:\n    pass\n", 2, "not supported"},
		{"def", "def f():\n    pass\n", 1, "not supported"},
		{"unterminated string", "print('abc)\n", 1, "unterminated string"},
		{"bad indent", "for x in y:\n        a()\n    b()\n", 3, "unindent"},
		{"missing block", "for x in y:\nb()\n", 2, "indented block"},
		{"unclosed bracket", "x = [1, 2\n", 2, "inside brackets"},
		{"f-string", "print(f'{x}')\n", 1, "f-strings"},
		{"dict", "x = {}\n", 1, "dictionaries"},
		{"assign to call", "f() = 3\n", 1, "assign"},
		{"from import", "from sprechstimme import play\n", 1, "imports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var serr *Error
			if !errors.As(err, &serr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Expected ErrSyntax, got %v", err)
			}
			if serr.Pos.Line != tt.line {
				t.Errorf("Expected line %d, got %d (%v)", tt.line, serr.Pos.Line, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Expected %q in %q", tt.msg, err.Error())
			}
		})
	}
}
