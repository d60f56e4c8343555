package internal

/*
This file is the parser. There is no separate lexing pass: the parser reads
characters directly from the source, skipping whitespace and comments before
each decision.

	statement  := expression ';'
	expression := primary call* ( '=' expression )?
	call       := '(' ( expression ( ',' expression )* )? ')'
	primary    := number | string | char | '.' dotted | function | dotted
	function   := '(' ( param ( ',' param )* )? ')' '{' statement* '}'
	param      := '...'? ident
	dotted     := ident ( '.' ident )*
*/

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// eof is returned by the parser's peek at the end of the source.
const eof = -1

type parser struct {
	src string
	off int
	pos Pos
}

// Parse parses an entire source chunk into its statements. Either the whole
// chunk parses or nothing is returned.
func Parse(src string) ([]Node, error) {
	p := &parser{src: src, pos: Pos{Line: 1, Col: 1}}
	var stmts []Node
	for {
		p.skipSpace()
		if p.peek() == eof {
			return stmts, nil
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// peek returns the next rune without consuming it.
func (p *parser) peek() rune {
	if p.off >= len(p.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.off:])
	return r
}

// next consumes and returns the next rune.
func (p *parser) next() rune {
	if p.off >= len(p.src) {
		return eof
	}
	r, n := utf8.DecodeRuneInString(p.src[p.off:])
	p.off += n
	if r == '\n' {
		p.pos.Line++
		p.pos.Col = 1
	} else {
		p.pos.Col++
	}
	return r
}

// accept consumes the next rune if it is r.
func (p *parser) accept(r rune) bool {
	if p.peek() == r {
		p.next()
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...), Incomplete: p.peek() == eof}
}

// unexpected creates an error describing the next rune.
func (p *parser) unexpected(want string) *ParseError {
	r := p.peek()
	if r == eof {
		return p.errorf("unexpected end of input, expected %s", want)
	}
	return p.errorf("unexpected character %q, expected %s", r, want)
}

// skipSpace skips whitespace and // comments.
func (p *parser) skipSpace() {
	for {
		r := p.peek()
		switch {
		case unicode.IsSpace(r):
			p.next()
		case r == '/' && strings.HasPrefix(p.src[p.off:], "//"):
			for r != '\n' && r != eof {
				p.next()
				r = p.peek()
			}
		default:
			return
		}
	}
}

func (p *parser) statement() (Node, error) {
	n, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.accept(';') {
		return nil, p.unexpected("';'")
	}
	return n, nil
}

func (p *parser) expression() (Node, error) {
	p.skipSpace()
	start := p.pos
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '(':
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			n = &FunctionCall{Callee: n, Args: args}
		case '=':
			target, ok := n.(*Access)
			if !ok {
				return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("cannot assign to %s", n)}
			}
			p.next()
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			return &Assignment{Target: target, Value: v}, nil
		default:
			return n, nil
		}
	}
}

// arguments parses a parenthesized argument list.
func (p *parser) arguments() ([]Node, error) {
	p.next()
	p.skipSpace()
	if p.accept(')') {
		return nil, nil
	}
	var args []Node
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.accept(')') {
			return args, nil
		}
		if !p.accept(',') {
			return nil, p.unexpected("',' or ')'")
		}
		p.skipSpace()
	}
}

func (p *parser) primary() (Node, error) {
	r := p.peek()
	switch {
	case r == '-' || isDigit(r):
		return p.number()
	case r == '"' || r == '\'':
		return p.quoted()
	case r == '.':
		p.next()
		path, err := p.dotted()
		if err != nil {
			return nil, err
		}
		return &TypeResolution{Name: strings.Join(path, ".")}, nil
	case r == '(':
		return p.function()
	case isIdentStart(r):
		path, err := p.dotted()
		if err != nil {
			return nil, err
		}
		return &Access{Path: path}, nil
	}
	return nil, p.unexpected("expression")
}

// number parses a numeric literal. The suffix l makes an int64 and d makes a
// float64; otherwise a literal with a fraction is a float32 and one without is
// an int32.
func (p *parser) number() (Node, error) {
	start := p.off
	p.accept('-')
	if !isDigit(p.peek()) {
		return nil, p.unexpected("digit")
	}
	for isDigit(p.peek()) {
		p.next()
	}
	frac := false
	if p.accept('.') {
		if !isDigit(p.peek()) {
			return nil, p.unexpected("digit after '.'")
		}
		for isDigit(p.peek()) {
			p.next()
		}
		frac = true
	}
	digits := p.src[start:p.off]
	var (
		v   Value
		err error
	)
	switch p.peek() {
	case 'l', 'L':
		if frac {
			return nil, p.errorf("long literal %s has a fraction", digits)
		}
		p.next()
		v, err = strconv.ParseInt(digits, 10, 64)
	case 'd', 'D':
		p.next()
		v, err = strconv.ParseFloat(digits, 64)
	default:
		if frac {
			var f float64
			f, err = strconv.ParseFloat(digits, 32)
			v = float32(f)
		} else {
			var i int64
			i, err = strconv.ParseInt(digits, 10, 32)
			v = int32(i)
		}
	}
	if err != nil {
		return nil, p.errorf("malformed number %s: %v", p.src[start:p.off], err.(*strconv.NumError).Err)
	}
	return &Constant{Value: v, Text: p.src[start:p.off]}, nil
}

// quoted parses a string or character literal. There are no escapes; the
// content runs to the next matching quote.
func (p *parser) quoted() (Node, error) {
	start := p.pos
	q := p.next()
	from := p.off
	for p.peek() != q {
		if p.next() == eof {
			return nil, &ParseError{Pos: start, Msg: "unterminated " + literalKind(q) + " literal", Incomplete: true}
		}
	}
	s := p.src[from:p.off]
	p.next()
	text := p.src[from-1 : p.off]
	if q == '"' {
		return &Constant{Value: s, Text: text}, nil
	}
	c, n := utf8.DecodeRuneInString(s)
	if n == 0 || n != len(s) {
		return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("character literal %s must contain exactly one character", text)}
	}
	return &Constant{Value: Char(c), Text: text}, nil
}

func literalKind(q rune) string {
	if q == '"' {
		return "string"
	}
	return "character"
}

// function parses a function literal.
func (p *parser) function() (Node, error) {
	p.next()
	f := &FunctionLiteral{Variadic: -1}
	p.skipSpace()
	if !p.accept(')') {
		for {
			p.skipSpace()
			if f.Variadic >= 0 {
				return nil, p.errorf("variadic parameter %s must be last", f.Params[f.Variadic])
			}
			if strings.HasPrefix(p.src[p.off:], "...") {
				p.next()
				p.next()
				p.next()
				f.Variadic = len(f.Params)
			}
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			f.Params = append(f.Params, name)
			p.skipSpace()
			if p.accept(')') {
				break
			}
			if !p.accept(',') {
				return nil, p.unexpected("',' or ')' in parameter list")
			}
		}
	}
	p.skipSpace()
	if !p.accept('{') {
		return nil, p.unexpected("'{' to begin function body")
	}
	for {
		p.skipSpace()
		if p.accept('}') {
			return f, nil
		}
		if p.peek() == eof {
			return nil, p.unexpected("'}' to end function body")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		f.Body = append(f.Body, stmt)
	}
}

// dotted parses one or more identifiers joined by dots.
func (p *parser) dotted() ([]string, error) {
	var path []string
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		path = append(path, name)
		if !p.accept('.') {
			return path, nil
		}
	}
}

func (p *parser) ident() (string, error) {
	if !isIdentStart(p.peek()) {
		return "", p.unexpected("name")
	}
	start := p.off
	for isIdentPart(p.peek()) {
		p.next()
	}
	return p.src[start:p.off], nil
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
