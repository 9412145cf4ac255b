package format

import (
	"strconv"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/regcolor/compiler/set"
	"github.com/slowlang/regcolor/compiler/tac"
)

type Flags int

const (
	// Live adds a live directive after every instruction.
	Live Flags = 1 << iota
)

// Block appends blk in the text block format.
// Temps found in asg are printed as their registers.
// Without asg and with Live the output parses back to the same block.
func Block(b []byte, blk *tac.Block, asg map[tac.Temp]tac.Reg, ff Flags) []byte {
	b = app(b, 0, "block %s\n", blk.Name)

	for i := range blk.Code {
		b = Instr(b, blk, &blk.Code[i], asg)

		if ff&Live != 0 {
			b = app(b, 1, "live")
			b = appendTemps(b, blk, blk.Code[i].LiveOut)
			b = append(b, '\n')
		}
	}

	return b
}

// Instr appends one instruction line.
func Instr(b []byte, blk *tac.Block, in *tac.Instr, asg map[tac.Temp]tac.Reg) []byte {
	name := func(t tac.Temp) string {
		if r, ok := asg[t]; ok {
			return string(r)
		}

		return blk.TempName(t)
	}

	inf := in.Op.Info()

	b = app(b, 1, "")

	first := 0

	if inf.Roles[0].Defines() {
		first = 1

		if t := in.Args[0]; t != tac.NoTemp {
			b = app(b, 0, "%s = ", name(t))
		}
	}

	b = append(b, inf.Name...)

	for s := first; s < len(in.Args); s++ {
		if inf.Roles[s] == tac.RoleNone || in.Args[s] == tac.NoTemp {
			continue
		}

		b = app(b, 0, " %s", name(in.Args[s]))
	}

	switch inf.Extra {
	case tac.ExtraImm:
		b = app(b, 0, " %d", in.Imm)
	case tac.ExtraLabel:
		b = app(b, 0, " %s", in.Label)
	case tac.ExtraString:
		b = append(b, ' ')
		b = strconv.AppendQuote(b, in.Label)
	}

	return append(b, '\n')
}

// Assignment appends a `temp reg` line per colored temp in temp order.
func Assignment(b []byte, blk *tac.Block, asg map[tac.Temp]tac.Reg) []byte {
	for t := 0; t < blk.NumTemps(); t++ {
		r, ok := asg[tac.Temp(t)]
		if !ok {
			continue
		}

		b = app(b, 1, "%-8s %s\n", blk.TempName(tac.Temp(t)), r)
	}

	return b
}

// Graph appends an interference graph: nodes, then one edge per line.
func Graph(b []byte, blk *tac.Block, nodes []tac.Temp, edges [][2]tac.Temp, pressure int) []byte {
	b = app(b, 0, "graph %s  # nodes %d  edges %d  pressure %d\n", blk.Name, len(nodes), len(edges), pressure)

	b = app(b, 1, "nodes")

	for _, t := range nodes {
		b = app(b, 0, " %s", blk.TempName(t))
	}

	b = append(b, '\n')

	for _, e := range edges {
		b = app(b, 1, "%s -- %s\n", blk.TempName(e[0]), blk.TempName(e[1]))
	}

	return b
}

func appendTemps(b []byte, blk *tac.Block, s set.Bits[tac.Temp]) []byte {
	s.Range(func(t tac.Temp) bool {
		b = app(b, 0, " %s", blk.TempName(t))
		return true
	})

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
