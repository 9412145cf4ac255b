package parse

import (
	"bytes"
	"context"
	"unicode/utf8"

	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/ast"
)

type (
	Const []byte

	// Keyword is a Const which must not be followed by an ident char.
	Keyword string

	Ident struct{}

	// String is a double quoted string with backslash escapes.
	String struct{}
)

func (p Const) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Keyword) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st + len(p)

	if !bytes.HasPrefix(b[st:], []byte(p)) || i < len(b) && isIdentChar(b[i]) {
		return nil, st, errors.New("%q expected", string(p))
	}

	return p, i, nil
}

func (p Ident) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if st == len(b) {
		return nil, st, errors.New("Ident expected")
	}

	i = st

	c := b[i]

	switch {
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		i++
	default:
		return nil, st, errors.New("Ident expected")
	}

loop:
	for i < len(b) {
		c := b[i]

		switch {
		case isIdentChar(c):
			i++
		case c >= utf8.RuneSelf:
			if r, w := utf8.DecodeRune(b[i:]); r == utf8.RuneError {
				return nil, i, errors.New("bad rune")
			} else {
				i += w
			}
		default:
			break loop
		}
	}

	return ast.Ident{Base: ast.Base{Pos: st, End: i}}, i, nil
}

func (p String) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if st == len(b) || b[st] != '"' {
		return nil, st, errors.New("String expected")
	}

	for i = st + 1; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '\n':
			return nil, i, errors.New("newline in string")
		case '"':
			return ast.String{Base: ast.Base{Pos: st, End: i + 1}}, i + 1, nil
		}
	}

	return nil, len(b), errors.New("unterminated string")
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
