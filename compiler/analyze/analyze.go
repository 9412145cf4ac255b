package analyze

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/ast"
	"github.com/slowlang/regcolor/compiler/live"
	"github.com/slowlang/regcolor/compiler/parse"
	"github.com/slowlang/regcolor/compiler/set"
	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// Block is a checked block ready for liveness and allocation.
	Block struct {
		*tac.Block

		// Live fills live-out sets. It is live.Given if the text
		// had explicit live directives, live.Backward otherwise.
		Live live.Provider
	}

	UnsupportedASTNodeError struct{ T ast.Node }

	// Error is a semantic error at a text position.
	Error struct {
		Pos parse.Position
		Msg string
	}

	blockState struct {
		st *parse.State
		b  *tac.Block

		explicit bool
		hasLive  []bool
		exit     []tac.Temp
	}
)

// Analyze converts a parsed file into tac blocks.
func Analyze(ctx context.Context, st *parse.State, f ast.File) (res []Block, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "analyze", "blocks", len(f.Blocks))
	defer tr.Finish("err", &err)

	names := map[string]ast.Ident{}

	for _, x := range f.Blocks {
		name := string(st.Text(x.Name.Pos, x.Name.End))

		if prev, ok := names[name]; ok {
			return nil, newError(st, x.Name, "block %v redeclared, previous at %v", name, st.Position(prev.Pos))
		}

		names[name] = x.Name

		b, err := analyzeBlock(ctx, st, x)
		if err != nil {
			return nil, errors.Wrap(err, "block %v", name)
		}

		res = append(res, b)
	}

	return res, nil
}

func analyzeBlock(ctx context.Context, st *parse.State, x ast.Block) (res Block, err error) {
	s := &blockState{
		st: st,
		b:  tac.NewBlock(string(st.Text(x.Name.Pos, x.Name.End))),
	}

	for _, stmt := range x.Stmts {
		switch stmt := stmt.(type) {
		case ast.Instr:
			err = s.instr(stmt)
		case ast.Live:
			err = s.live(stmt)
		case ast.Out:
			for _, t := range stmt.Temps {
				s.exit = append(s.exit, s.temp(t))
			}
		default:
			err = NewUnsupportedASTNode(stmt)
		}

		if err != nil {
			return Block{}, err
		}
	}

	err = s.b.Check()
	if err != nil {
		return Block{}, errors.Wrap(err, "check")
	}

	res.Block = s.b

	if s.explicit {
		res.Live = live.Given{}
	} else {
		res.Live = live.Backward{Exit: s.exit}
	}

	tlog.V("analyze").Printw("block", "name", s.b.Name, "instrs", len(s.b.Code), "temps", s.b.NumTemps(), "explicit_live", s.explicit)

	return res, nil
}

func (s *blockState) instr(x ast.Instr) error {
	opname := s.text(x.Op)

	op, ok := tac.LookupOp(opname)
	if !ok {
		return newError(s.st, x.Op, "unknown op %q", opname)
	}

	inf := op.Info()

	in := tac.Instr{Op: op, Args: [3]tac.Temp{tac.NoTemp, tac.NoTemp, tac.NoTemp}}

	slots := inf.Roles[:]
	first := 0

	switch {
	case inf.Roles[0].Defines() && x.Dst != nil:
		in.Args[0] = s.temp(*x.Dst)
		first = 1
	case inf.Roles[0].Defines() && inf.Roles[0].Optional():
		first = 1
	case inf.Roles[0].Defines():
		return newError(s.st, x, "%v: destination expected", op)
	case x.Dst != nil:
		return newError(s.st, *x.Dst, "%v defines nothing", op)
	}

	extra := 0
	if inf.Extra != tac.ExtraNone {
		extra = 1
	}

	args := x.Args

	for slot := first; slot < len(slots); slot++ {
		r := slots[slot]
		if r == tac.RoleNone {
			continue
		}

		if r.Optional() && len(args) <= extra+required(slots[slot+1:]) {
			continue
		}

		if len(args) == 0 {
			return newError(s.st, x, "%v: operand %d (%v) missing", op, slot, r)
		}

		id, ok := args[0].(ast.Ident)
		if !ok {
			return newError(s.st, args[0], "%v: operand %d: temp expected", op, slot)
		}

		in.Args[slot] = s.temp(id)
		args = args[1:]
	}

	if extra != 0 {
		if len(args) == 0 {
			return newError(s.st, x, "%v: %v operand missing", op, extraName(inf.Extra))
		}

		err := s.extra(&in, inf.Extra, args[0])
		if err != nil {
			return err
		}

		args = args[1:]
	}

	if len(args) != 0 {
		return newError(s.st, args[0], "%v: too many operands", op)
	}

	s.b.Code = append(s.b.Code, in)
	s.hasLive = append(s.hasLive, false)

	return nil
}

func (s *blockState) extra(in *tac.Instr, e tac.Extra, x ast.Node) error {
	switch x := x.(type) {
	case ast.Int:
		if e != tac.ExtraImm {
			break
		}

		v, err := strconv.ParseInt(s.text(x), 0, 64)
		if err != nil {
			return newError(s.st, x, "bad immediate: %v", err)
		}

		in.Imm = v

		return nil
	case ast.Ident:
		if e != tac.ExtraLabel {
			break
		}

		in.Label = s.text(x)

		return nil
	case ast.String:
		if e != tac.ExtraString {
			break
		}

		v, err := strconv.Unquote(s.text(x))
		if err != nil {
			return newError(s.st, x, "bad string: %v", err)
		}

		in.Label = v

		return nil
	}

	return newError(s.st, x, "%v: %v expected", in.Op, extraName(e))
}

func (s *blockState) live(x ast.Live) error {
	i := len(s.b.Code) - 1
	if i < 0 {
		return newError(s.st, x, "live before any instruction")
	}

	if s.hasLive[i] {
		return newError(s.st, x, "second live set for instruction %d", i)
	}

	var l set.Bits[tac.Temp]

	for _, t := range x.Temps {
		l.Set(s.temp(t))
	}

	s.b.Code[i].LiveOut = l
	s.hasLive[i] = true
	s.explicit = true

	return nil
}

func (s *blockState) temp(x ast.Ident) tac.Temp {
	return s.b.Temp(s.text(x))
}

func (s *blockState) text(x interface{ Start() int }) string {
	var end int

	switch x := x.(type) {
	case ast.Ident:
		end = x.End
	case ast.Int:
		end = x.End
	case ast.String:
		end = x.End
	default:
		panic(x)
	}

	return string(s.st.Text(x.Start(), end))
}

func required(roles []tac.Role) (n int) {
	for _, r := range roles {
		if r != tac.RoleNone && !r.Optional() {
			n++
		}
	}

	return n
}

func extraName(e tac.Extra) string {
	switch e {
	case tac.ExtraImm:
		return "immediate"
	case tac.ExtraLabel:
		return "label"
	case tac.ExtraString:
		return "string"
	default:
		return "nothing"
	}
}

func newError(st *parse.State, x ast.Node, format string, args ...any) Error {
	pos := 0

	if x, ok := x.(interface{ Start() int }); ok {
		pos = x.Start()
	}

	return Error{
		Pos: st.Position(pos),
		Msg: fmt.Sprintf(format, args...),
	}
}

func NewUnsupportedASTNode(x ast.Node) UnsupportedASTNodeError {
	return UnsupportedASTNodeError{
		T: x,
	}
}

func (e UnsupportedASTNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %v", reflect.TypeOf(e.T))
}

func (e Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Pos, e.Msg)
}
