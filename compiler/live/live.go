package live

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/set"
	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// Provider fills Instr.LiveOut for every instruction of a block.
	Provider interface {
		LiveOut(ctx context.Context, b *tac.Block) error
	}

	// Given trusts the live-out sets already attached to the block.
	Given struct{}

	// Backward computes live-out sets of a straight-line block
	// from the set of temps live at its exit.
	Backward struct {
		Exit []tac.Temp
	}
)

func (Given) LiveOut(ctx context.Context, b *tac.Block) error {
	return nil
}

func (p Backward) LiveOut(ctx context.Context, b *tac.Block) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "live: backward", "block", b.Name, "exit", p.Exit)
	defer tr.Finish("err", &err)

	var d set.Bits[tac.Temp]

	for _, t := range p.Exit {
		if t < 0 || int(t) >= b.NumTemps() {
			return errors.New("exit temp %d out of range [0, %d)", int(t), b.NumTemps())
		}

		d.Set(t)
	}

	for i := len(b.Code) - 1; i >= 0; i-- {
		in := &b.Code[i]

		if in.Op.Control() {
			return errors.New("instr %d: control op %v in straight-line block", i, in.Op)
		}

		in.LiveOut = d.Copy()

		if tr.If("dump_live") {
			tr.Printw("live out", "i", i, "op", in.Op, "live", in.LiveOut)
		}

		in.Operands(func(_ int, r tac.Role, t tac.Temp) {
			if r.Defines() {
				d.Clear(t)
			}
		})

		in.Operands(func(_ int, r tac.Role, t tac.Temp) {
			if r.Reads() {
				d.Set(t)
			}
		})
	}

	tr.V("live").Printw("live in", "live", d)

	return nil
}
