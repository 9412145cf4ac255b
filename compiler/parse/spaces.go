package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/ast"
)

type (
	Spaces uint64

	Spacer struct {
		Spaces Spaces
		Of     Parser
	}

	// EOL is the end of a line: trailing spaces, an optional
	// comment and a newline or the end of text.
	EOL struct{}
)

var (
	SpaceTab = NewSpaces(' ', '\t')
	SpaceEOL = NewSpaces(' ', '\t', '\r')
	SpaceAll = NewSpaces(' ', '\t', '\r', '\n')
)

const CommentChar = '#'

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}

func Spaced(p Parser, ss Spaces) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	vst := p.Spaces.Skip(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		err = errors.Wrap(err, "%T", p.Of)
	}

	return
}

// SkipBlank skips spaces, empty lines and comments.
func SkipBlank(b []byte, st int) (i int) {
	i = st

	for {
		i = SpaceAll.Skip(b, i)

		if i == len(b) || b[i] != CommentChar {
			return i
		}

		i = skipComment(b, i)
	}
}

func skipComment(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}

func (EOL) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = SpaceEOL.Skip(b, st)

	if i < len(b) && b[i] == CommentChar {
		i = skipComment(b, i)
	}

	switch {
	case i == len(b):
		return None{}, i, nil
	case b[i] == '\n':
		return None{}, i + 1, nil
	}

	return nil, st, errors.New("end of line expected")
}
