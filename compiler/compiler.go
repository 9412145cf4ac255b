package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/analyze"
	"github.com/slowlang/regcolor/compiler/back"
	"github.com/slowlang/regcolor/compiler/format"
	"github.com/slowlang/regcolor/compiler/parse"
	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	Config struct {
		Regs tac.RegFile

		// FP names the frame pointer temp. It is never colored.
		FP string

		// Spiller rewrites blocks that do not fit in Regs.
		// If nil SpillRequired is reported as an error.
		Spiller back.Spiller

		// MaxRounds limits build-color rounds. It matters only with Spiller.
		MaxRounds int

		// Listing prints blocks with registers substituted
		// instead of the temp to register table.
		Listing bool
	}
)

func AllocateFile(ctx context.Context, name string, cfg Config) (out []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Allocate(ctx, name, text, cfg)
}

// Allocate allocates registers for every block in text in order.
func Allocate(ctx context.Context, name string, text []byte, cfg Config) (out []byte, err error) {
	bs, err := Load(ctx, name, text)
	if err != nil {
		return nil, err
	}

	for i, b := range bs {
		a := back.Allocator{
			Regs:      cfg.Regs,
			FP:        fp(b.Block, cfg.FP),
			Spiller:   cfg.Spiller,
			MaxRounds: cfg.MaxRounds,
		}

		res, err := a.Allocate(ctx, b.Block)
		if err != nil {
			return nil, errors.Wrap(err, "allocate %v", b.Name)
		}

		if i != 0 {
			out = append(out, '\n')
		}

		if cfg.Listing {
			out = format.Block(out, res.Block, res.Assignment, 0)
			continue
		}

		out = append(out, "block "...)
		out = append(out, b.Name...)
		out = append(out, '\n')
		out = format.Assignment(out, res.Block, res.Assignment)
	}

	return out, nil
}

// Graphs dumps the interference graph of every block in text.
func Graphs(ctx context.Context, name string, text []byte, fpName string) (out []byte, err error) {
	bs, err := Load(ctx, name, text)
	if err != nil {
		return nil, err
	}

	for i, b := range bs {
		g, err := back.Build(ctx, b.Block, fp(b.Block, fpName))
		if err != nil {
			return nil, errors.Wrap(err, "build %v", b.Name)
		}

		if i != 0 {
			out = append(out, '\n')
		}

		out = format.Graph(out, b.Block, g.Nodes(), g.Edges(), g.Pressure)
	}

	return out, nil
}

// Load parses and analyzes text and fills live-out sets of every block.
func Load(ctx context.Context, name string, text []byte) (bs []analyze.Block, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "load", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	st, f, err := parse.Parse(ctx, name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	bs, err = analyze.Analyze(ctx, st, f)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	for _, b := range bs {
		if hasControl(b.Block) {
			continue // the allocator reports it
		}

		err = b.Live.LiveOut(ctx, b.Block)
		if err != nil {
			return nil, errors.Wrap(err, "liveness %v", b.Name)
		}
	}

	return bs, nil
}

func fp(b *tac.Block, name string) tac.Temp {
	t, ok := b.Lookup(name)
	if !ok {
		return tac.NoTemp
	}

	return t
}

func hasControl(b *tac.Block) bool {
	for _, in := range b.Code {
		if in.Op.Control() {
			return true
		}
	}

	return false
}
