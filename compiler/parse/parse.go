package parse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/ast"
)

type (
	State struct {
		b []byte // all files concatenated

		Grammar Parser

		files []file
	}

	file struct {
		base int
		size int
		name string
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error)
	}

	// Position is a human readable text location.
	Position struct {
		File string
		Line int
		Col  int
	}

	// SyntaxError is a parse failure at a position.
	SyntaxError struct {
		Pos Position
		Err error
	}

	PartialReadError struct {
		End int
	}
)

func ParseFile(ctx context.Context, name string) (*State, ast.File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, ast.File{}, errors.Wrap(err, "read file")
	}

	return Parse(ctx, name, data)
}

func Parse(ctx context.Context, name string, text []byte) (*State, ast.File, error) {
	s := New()

	s.AddFile(name, text)

	x, err := s.Parse(ctx)
	if err != nil {
		return s, ast.File{}, err
	}

	return s, x.(ast.File), nil
}

func New() *State {
	return &State{
		Grammar: File{},
	}
}

func (s *State) Parse(ctx context.Context) (x ast.Node, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "files", len(s.files), "size", len(s.b))
	defer tr.Finish("err", &err)

	x, i, err := s.Grammar.Parse(ctx, s.b, 0)
	if err != nil {
		return nil, SyntaxError{Pos: s.Position(i), Err: err}
	}

	i = SpaceAll.Skip(s.b, i)

	if i != len(s.b) {
		return x, PartialReadError{End: i}
	}

	if tr.If("dump_ast") {
		tr.Printw("ast", "ast", x)
	}

	return x, nil
}

func (s *State) AddFile(name string, text []byte) {
	f := file{
		name: name,
		base: len(s.b),
		size: len(text),
	}

	s.b = append(s.b, text...)

	s.files = append(s.files, f)
}

func (s *State) Text(pos, end int) []byte {
	return s.b[pos:end]
}

// Position converts a text offset into file, line and column, 1-based.
func (s *State) Position(off int) Position {
	fi := sort.Search(len(s.files), func(i int) bool {
		return s.files[i].base+s.files[i].size > off
	})

	if fi == len(s.files) {
		fi = len(s.files) - 1
	}

	if fi < 0 {
		return Position{Line: 1, Col: 1}
	}

	f := s.files[fi]

	if off > f.base+f.size {
		off = f.base + f.size
	}

	text := s.b[f.base:off]

	line := 1 + bytes.Count(text, []byte{'\n'})
	col := off - f.base - bytes.LastIndexByte(text, '\n')

	return Position{File: f.name, Line: line, Col: col}
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}

	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.Pos, e.Err)
}

func (e SyntaxError) Unwrap() error { return e.Err }

func (e PartialReadError) Error() string {
	return fmt.Sprintf("partial read: stopped at %d", e.End)
}
