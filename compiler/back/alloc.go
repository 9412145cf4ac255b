package back

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// Spiller rewrites a block that could not be colored.
	// The returned block must carry recomputed live-out sets.
	Spiller interface {
		Spill(ctx context.Context, b *tac.Block, sr *SpillRequired) (*tac.Block, error)
	}

	// Allocator holds allocation settings.
	// It keeps no per-call state and is safe for concurrent use.
	Allocator struct {
		Regs tac.RegFile
		FP   tac.Temp

		// Spiller is asked to fix the block on SpillRequired.
		// If nil SpillRequired is returned at once.
		Spiller Spiller

		// MaxRounds limits build-color rounds when Spiller is set.
		MaxRounds int
	}

	Result struct {
		// Block is the allocated block. It differs from the input
		// only if Spiller rewrote it.
		Block *tac.Block

		Assignment Assignment
		Graph      *Graph
		Rounds     int
	}
)

const DefaultMaxRounds = 4

// Allocate colors the block temps with regs. fp is never colored.
func Allocate(ctx context.Context, b *tac.Block, regs tac.RegFile, fp tac.Temp) (Assignment, error) {
	a := Allocator{Regs: regs, FP: fp}

	res, err := a.Allocate(ctx, b)
	if err != nil {
		return nil, err
	}

	return res.Assignment, nil
}

func (a *Allocator) Allocate(ctx context.Context, b *tac.Block) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: allocate", "block", b.Name, "k", a.Regs.K(), "fp", b.TempName(a.FP))
	defer tr.Finish("err", &err)

	if a.Regs.K() == 0 {
		return nil, errors.New("empty register file")
	}

	rounds := a.MaxRounds
	if rounds <= 0 {
		rounds = DefaultMaxRounds
	}

	for round := 1; ; round++ {
		g, err := Build(ctx, b, a.FP)
		if err != nil {
			return nil, errors.Wrap(err, "build graph")
		}

		asg, err := Color(ctx, g, a.Regs)
		if err == nil {
			tr.V("alloc").Printw("allocated", "round", round, "temps", len(asg))

			return &Result{Block: b, Assignment: asg, Graph: g, Rounds: round}, nil
		}

		var sr *SpillRequired
		if !errors.As(err, &sr) {
			return nil, errors.Wrap(err, "color")
		}

		sr.Block = b.Name

		if a.Spiller == nil || round >= rounds {
			tr.Printw("spill required", "round", round, "stuck", len(sr.Stuck), "candidate", b.TempName(sr.Candidate), "pressure", sr.Pressure)

			return nil, sr
		}

		nb, err := a.Spiller.Spill(ctx, b, sr)
		if err != nil {
			return nil, errors.Wrap(err, "spill round %d", round)
		}

		tr.Printw("spilled", "round", round, "candidate", b.TempName(sr.Candidate), "instrs", len(nb.Code))

		b = nb
	}
}
