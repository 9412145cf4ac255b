package parse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/regcolor/compiler/ast"
)

const scenarioA = `# a := 1; b := 2; c := a + b
block main
	a = imm4 1
	live a
	b = imm4 2   # second
	live a b
	c = add a b
	store c fp 0
	out

block msg
	s = strconst "a \"quoted\" # string"
	call print
	r = icall s
	ret r
`

func text(s *State, n interface{ Start() int }, end int) string {
	return string(s.Text(n.Start(), end))
}

func TestParseFile(t *testing.T) {
	s, f, err := Parse(context.Background(), "a.tac", []byte(scenarioA))
	require.NoError(t, err)

	require.Len(t, f.Blocks, 2)

	b := f.Blocks[0]
	assert.Equal(t, "main", text(s, b.Name, b.Name.End))
	require.Len(t, b.Stmts, 7)

	in := b.Stmts[0].(ast.Instr)
	require.NotNil(t, in.Dst)
	assert.Equal(t, "a", text(s, in.Dst, in.Dst.End))
	assert.Equal(t, "imm4", text(s, in.Op, in.Op.End))
	require.Len(t, in.Args, 1)
	assert.IsType(t, ast.Int{}, in.Args[0])

	l := b.Stmts[3].(ast.Live)
	require.Len(t, l.Temps, 2)
	assert.Equal(t, "b", text(s, l.Temps[1], l.Temps[1].End))

	in = b.Stmts[5].(ast.Instr)
	assert.Nil(t, in.Dst)
	assert.Equal(t, "store", text(s, in.Op, in.Op.End))
	assert.Len(t, in.Args, 3)

	o := b.Stmts[6].(ast.Out)
	assert.Empty(t, o.Temps)

	b = f.Blocks[1]
	require.Len(t, b.Stmts, 4)

	in = b.Stmts[0].(ast.Instr)
	str := in.Args[0].(ast.String)
	assert.Equal(t, `"a \"quoted\" # string"`, text(s, str, str.End))

	in = b.Stmts[1].(ast.Instr)
	assert.Nil(t, in.Dst)
	assert.IsType(t, ast.Ident{}, in.Args[0])
}

func TestParseKeywordPrefix(t *testing.T) {
	_, f, err := Parse(context.Background(), "", []byte("block b\nlively = assign outer\nout lively\n"))
	require.NoError(t, err)

	require.Len(t, f.Blocks, 1)
	require.Len(t, f.Blocks[0].Stmts, 2)
	assert.IsType(t, ast.Instr{}, f.Blocks[0].Stmts[0])
	assert.IsType(t, ast.Out{}, f.Blocks[0].Stmts[1])
}

func TestParseEmpty(t *testing.T) {
	_, f, err := Parse(context.Background(), "", []byte("\n  # nothing\n\n"))
	require.NoError(t, err)
	assert.Empty(t, f.Blocks)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		line int
	}{
		{name: "no_block", text: "a = imm4 1\n", line: 1},
		{name: "garbage_arg", text: "block b\n\ta = add x y\n\tc = add a ) b\n", line: 3},
		{name: "unterminated_string", text: "block b\n\ns = strconst \"abc\n", line: 3},
		{name: "live_int", text: "block b\na = imm4 1\nlive a 1\n", line: 3},
		{name: "no_block_name", text: "block\n", line: 1},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(context.Background(), "x.tac", []byte(tc.text))
			require.Error(t, err)

			var se SyntaxError
			require.True(t, errors.As(err, &se), "%v", err)

			assert.Equal(t, "x.tac", se.Pos.File)
			assert.Equal(t, tc.line, se.Pos.Line, "%v", err)
		})
	}
}

func TestPosition(t *testing.T) {
	s := New()
	s.AddFile("a", []byte("ab\ncd\n"))
	s.AddFile("b", []byte("x\nyz"))

	assert.Equal(t, Position{File: "a", Line: 1, Col: 1}, s.Position(0))
	assert.Equal(t, Position{File: "a", Line: 2, Col: 2}, s.Position(4))
	assert.Equal(t, Position{File: "b", Line: 1, Col: 1}, s.Position(6))
	assert.Equal(t, Position{File: "b", Line: 2, Col: 2}, s.Position(9))
	assert.Equal(t, "b:2:2", s.Position(9).String())
}

func TestInt(t *testing.T) {
	for _, tc := range []struct {
		in  string
		end int
		ok  bool
	}{
		{"123 ", 3, true},
		{"-4", 2, true},
		{"0x1f)", 4, true},
		{"-", 0, false},
		{"x1", 0, false},
	} {
		x, i, err := Int{}.Parse(context.Background(), []byte(tc.in), 0)
		if !tc.ok {
			assert.Error(t, err, tc.in)
			assert.Equal(t, 0, i, tc.in)

			continue
		}

		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.end, i, tc.in)
		assert.Equal(t, ast.Int{Base: ast.Base{Pos: 0, End: tc.end}}, x, tc.in)
	}
}

func TestMany(t *testing.T) {
	b := []byte("a b  c # d")

	x, i, err := Many{Of: Spaced(Ident{}, SpaceTab)}.Parse(context.Background(), b, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, i)
	assert.Len(t, x, 3)
}

func TestParseFileName(t *testing.T) {
	name := filepath.Join(t.TempDir(), "b.tac")

	err := os.WriteFile(name, []byte("block b\n\ta = add\n\t)\n"), 0o644)
	require.NoError(t, err)

	_, _, err = ParseFile(context.Background(), name)

	var se SyntaxError
	require.True(t, errors.As(err, &se), "%v", err)
	assert.Equal(t, Position{File: name, Line: 3, Col: 2}, se.Pos)

	_, _, err = ParseFile(context.Background(), name+".missing")
	assert.True(t, errors.Is(err, os.ErrNotExist), "%v", err)
}
