package script

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIndent
	tokDedent
	tokName
	tokNumber
	tokString
	tokOp
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "end of line"
	case tokIndent:
		return "indent"
	case tokDedent:
		return "dedent"
	case tokName:
		return "name"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	}
	return "operator"
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  Pos
}

func (t token) String() string {
	switch t.kind {
	case tokName, tokOp:
		return strconv.Quote(t.text)
	case tokNumber:
		return t.text
	case tokString:
		return "string " + strconv.Quote(t.text)
	}
	return t.kind.String()
}

// lexer turns source into tokens, emitting indent and dedent tokens from
// leading whitespace the way Python does. Newlines inside brackets are
// ignored.
type lexer struct {
	src     []rune
	i       int
	line    int
	col     int
	depth   int
	indents []int
	toks    []token
}

// tabWidth is the column width of a tab in indentation.
const tabWidth = 4

func tokenize(src string) ([]token, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lx := &lexer{src: []rune(src), line: 1, col: 1, indents: []int{0}}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.toks, nil
}

func (lx *lexer) pos() Pos { return Pos{Line: lx.line, Col: lx.col} }

func (lx *lexer) peek(off int) rune {
	if lx.i+off < len(lx.src) {
		return lx.src[lx.i+off]
	}
	return 0
}

func (lx *lexer) advance() rune {
	r := lx.src[lx.i]
	lx.i++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) emit(kind tokenKind, text string, pos Pos) {
	lx.toks = append(lx.toks, token{kind: kind, text: text, pos: pos})
}

func (lx *lexer) run() error {
	atLineStart := true
	for {
		if atLineStart && lx.depth == 0 {
			blank, err := lx.indentation()
			if err != nil {
				return err
			}
			if blank {
				continue
			}
			atLineStart = false
		}
		if lx.i >= len(lx.src) {
			break
		}
		r := lx.peek(0)
		pos := lx.pos()
		switch {
		case r == '\n':
			lx.advance()
			if lx.depth == 0 {
				lx.emit(tokNewline, "", pos)
				atLineStart = true
			}
		case r == ' ' || r == '\t':
			lx.advance()
		case r == '\\' && lx.peek(1) == '\n':
			lx.advance()
			lx.advance()
		case r == '#':
			for lx.i < len(lx.src) && lx.peek(0) != '\n' {
				lx.advance()
			}
		case r == '"' || r == '\'':
			if err := lx.str(); err != nil {
				return err
			}
		case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(lx.peek(1))):
			if err := lx.number(); err != nil {
				return err
			}
		case r == '_' || unicode.IsLetter(r):
			start := lx.i
			for lx.i < len(lx.src) && (lx.peek(0) == '_' || unicode.IsLetter(lx.peek(0)) || unicode.IsDigit(lx.peek(0))) {
				lx.advance()
			}
			name := string(lx.src[start:lx.i])
			if (name == "f" || name == "b" || name == "r") && (lx.peek(0) == '"' || lx.peek(0) == '\'') {
				return syntaxErrorf(pos, "%s-strings are not supported", name)
			}
			lx.emit(tokName, name, pos)
		default:
			if err := lx.op(); err != nil {
				return err
			}
		}
	}

	end := lx.pos()
	if lx.depth > 0 {
		return syntaxErrorf(end, "unexpected end of input inside brackets")
	}
	if n := len(lx.toks); n > 0 && lx.toks[n-1].kind != tokNewline {
		lx.emit(tokNewline, "", end)
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(tokDedent, "", end)
	}
	lx.emit(tokEOF, "", end)
	return nil
}

// indentation measures the leading whitespace of a line. Blank and
// comment-only lines are consumed and reported as blank.
func (lx *lexer) indentation() (bool, error) {
	width := 0
scan:
	for lx.i < len(lx.src) {
		switch lx.peek(0) {
		case ' ':
			width++
		case '\t':
			width += tabWidth - width%tabWidth
		default:
			break scan
		}
		lx.advance()
	}
	if lx.i >= len(lx.src) {
		return false, nil
	}
	switch lx.peek(0) {
	case '\n':
		lx.advance()
		return true, nil
	case '#':
		for lx.i < len(lx.src) && lx.peek(0) != '\n' {
			lx.advance()
		}
		if lx.i < len(lx.src) {
			lx.advance()
		}
		return true, nil
	}

	pos := lx.pos()
	top := lx.indents[len(lx.indents)-1]
	switch {
	case width > top:
		lx.indents = append(lx.indents, width)
		lx.emit(tokIndent, "", pos)
	case width < top:
		for width < lx.indents[len(lx.indents)-1] {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.emit(tokDedent, "", pos)
		}
		if width != lx.indents[len(lx.indents)-1] {
			return false, syntaxErrorf(pos, "unindent does not match any outer indentation level")
		}
	}
	return false, nil
}

func (lx *lexer) str() error {
	pos := lx.pos()
	quote := lx.advance()
	var b strings.Builder
	for {
		if lx.i >= len(lx.src) || lx.peek(0) == '\n' {
			return syntaxErrorf(pos, "unterminated string")
		}
		r := lx.advance()
		if r == quote {
			break
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if lx.i >= len(lx.src) {
			return syntaxErrorf(pos, "unterminated string")
		}
		switch esc := lx.advance(); esc {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case '\\', '\'', '"':
			b.WriteRune(esc)
		default:
			b.WriteRune('\\')
			b.WriteRune(esc)
		}
	}
	lx.emit(tokString, b.String(), pos)
	return nil
}

func (lx *lexer) number() error {
	pos := lx.pos()
	start := lx.i
	for lx.i < len(lx.src) {
		r := lx.peek(0)
		if unicode.IsDigit(r) || r == '.' || r == '_' {
			lx.advance()
			continue
		}
		if (r == 'e' || r == 'E') && (unicode.IsDigit(lx.peek(1)) || ((lx.peek(1) == '-' || lx.peek(1) == '+') && unicode.IsDigit(lx.peek(2)))) {
			lx.advance()
			lx.advance()
			continue
		}
		break
	}
	text := string(lx.src[start:lx.i])
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return syntaxErrorf(pos, "invalid number %q", text)
	}
	lx.toks = append(lx.toks, token{kind: tokNumber, text: text, num: v, pos: pos})
	return nil
}

func (lx *lexer) op() error {
	pos := lx.pos()
	r := lx.advance()
	switch r {
	case '(', '[', '{':
		lx.depth++
	case ')', ']', '}':
		if lx.depth == 0 {
			return syntaxErrorf(pos, "unmatched %q", r)
		}
		lx.depth--
	case ',', '.', ':', '=', '+', '-', '*', '/', '%':
	default:
		return syntaxErrorf(pos, "unexpected character %q", r)
	}
	if r == '*' && lx.peek(0) == '*' {
		lx.advance()
		lx.emit(tokOp, "**", pos)
		return nil
	}
	lx.emit(tokOp, string(r), pos)
	return nil
}
