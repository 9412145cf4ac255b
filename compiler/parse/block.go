package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/ast"
)

type (
	// File is the top level grammar: a sequence of blocks.
	File struct{}

	Block struct{}

	// Stmt is one block line without its line end.
	Stmt struct{}

	Instr struct{}

	Live struct{}

	Out struct{}

	Arg struct{}
)

var (
	blockKeyword = Keyword("block")

	argParser = AnyOf{Ident{}, Int{}, String{}}
	stmtLine  = AllOf{Stmt{}, EOL{}}

	tempList = Many{Of: Spaced(Ident{}, SpaceTab)}
)

func (File) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	res := ast.File{Base: ast.Base{Pos: st}}

	i = SkipBlank(b, st)

	for i < len(b) {
		x, i, err = Block{}.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "block %d", len(res.Blocks))
		}

		res.Blocks = append(res.Blocks, x.(ast.Block))

		i = SkipBlank(b, i)
	}

	res.End = i

	return res, i, nil
}

func (Block) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		blockKeyword,
		Spaced(Ident{}, SpaceTab),
		EOL{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	res := ast.Block{
		Base: ast.Base{Pos: st},
		Name: x.([]ast.Node)[1].(ast.Ident),
	}

	res.End = i

	for {
		j := SkipBlank(b, i)
		if j == len(b) {
			i = j
			break
		}

		if _, _, err := blockKeyword.Parse(ctx, b, j); err == nil {
			break
		}

		x, i, err = stmtLine.Parse(ctx, b, j)
		if err != nil {
			return nil, i, errors.Wrap(err, "line %d", len(res.Stmts))
		}

		res.Stmts = append(res.Stmts, x.([]ast.Node)[0])
		res.End = i
	}

	return res, i, nil
}

func (Stmt) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	return AnyOf{Live{}, Out{}, Instr{}}.Parse(ctx, b, st)
}

func (Live) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	temps, i, err := directive(ctx, b, st, "live")
	if err != nil {
		return nil, i, err
	}

	return ast.Live{Base: ast.Base{Pos: st, End: i}, Temps: temps}, i, nil
}

func (Out) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	temps, i, err := directive(ctx, b, st, "out")
	if err != nil {
		return nil, i, err
	}

	return ast.Out{Base: ast.Base{Pos: st, End: i}, Temps: temps}, i, nil
}

func directive(ctx context.Context, b []byte, st int, kw Keyword) (temps []ast.Ident, i int, err error) {
	_, i, err = kw.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	x, i, err := tempList.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "%s", kw)
	}

	for _, t := range x.([]ast.Node) {
		temps = append(temps, t.(ast.Ident))
	}

	return temps, i, nil
}

func (Instr) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, errors.New("instruction expected")
	}

	res := ast.Instr{
		Base: ast.Base{Pos: st},
		Op:   x.(ast.Ident),
	}

	r := Context{
		Pre: Spaced(Const("="), SpaceTab),
		Of:  Spaced(Ident{}, SpaceTab),
	}

	x, j, err := r.Parse(ctx, b, i)
	switch {
	case err == nil:
		dst := res.Op
		res.Dst = &dst
		res.Op = x.(ast.Ident)
		i = j
	case j != i:
		return nil, j, errors.Wrap(err, "op")
	}

	x, i, err = Many{Of: Spaced(Arg{}, SpaceTab)}.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "args")
	}

	res.Args = x.([]ast.Node)
	res.End = i

	return res, i, nil
}

func (Arg) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	return argParser.Parse(ctx, b, st)
}
