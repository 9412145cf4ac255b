package back

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/tac"
)

// Build makes a fresh interference graph of the block.
//
// Nodes are all temps the instructions touch except fp.
// Each defined temp interferes with every other node live right after
// its definition.
func Build(ctx context.Context, b *tac.Block, fp tac.Temp) (g *Graph, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "back: build graph", "block", b.Name, "instrs", len(b.Code))
	defer tr.Finish("err", &err)

	for i, in := range b.Code {
		if in.Op.Control() {
			return nil, &UsageError{Block: b.Name, Index: i, Op: in.Op}
		}
	}

	err = b.Check()
	if err != nil {
		return nil, errors.Wrap(err, "block %v", b.Name)
	}

	g = NewGraph()

	for i := range b.Code {
		b.Code[i].Operands(func(_ int, _ tac.Role, t tac.Temp) {
			if t == fp {
				return
			}

			g.AddNode(t)
		})
	}

	for i := range b.Code {
		in := &b.Code[i]

		d := in.Def()
		if d == tac.NoTemp || d == fp {
			continue
		}

		live := 1

		in.LiveOut.Range(func(t tac.Temp) bool {
			if t == d || t == fp || !g.Known(t) {
				return true
			}

			live++

			if g.AddEdge(d, t) {
				tr.V("build_edges").Printw("edge", "i", i, "op", in.Op, "def", b.TempName(d), "live", b.TempName(t))
			}

			return true
		})

		if live > g.Pressure {
			g.Pressure = live
		}
	}

	tr.Printw("graph", "graph", g)

	if tr.If("dump_graph") {
		for _, t := range g.Nodes() {
			tr.Printw("node", "temp", b.TempName(t), "degree", g.Degree(t), "neighbours", g.Neighbors(t))
		}
	}

	return g, nil
}
