package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/ast"
)

type (
	// Int is an optionally signed integer literal.
	// Base prefixes 0x, 0o and 0b are accepted, value is checked by analyze.
	Int struct{}
)

func (p Int) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st

	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		i++
	}

	if i == len(b) || b[i] < '0' || b[i] > '9' {
		return nil, st, errors.New("Int expected")
	}

	for i < len(b) && isIdentChar(b[i]) {
		i++
	}

	return ast.Int{
		Base: ast.Base{
			Pos: st,
			End: i,
		},
	}, i, nil
}
