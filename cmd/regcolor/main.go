package main

import (
	"context"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler"
	"github.com/slowlang/regcolor/compiler/asm/arm64"
	"github.com/slowlang/regcolor/compiler/format"
	"github.com/slowlang/regcolor/compiler/tac"
)

func main() {
	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "print blocks with computed live-out sets",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	graphCmd := &cli.Command{
		Name:        "graph",
		Description: "print interference graphs",
		Action:      graphAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("fp", "fp", "frame pointer temp, never colored"),
		},
	}

	allocCmd := &cli.Command{
		Name:        "alloc",
		Description: "allocate registers for every block",
		Action:      allocAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("regs", "", "comma separated register file"),
			cli.NewFlag("k", 4, "use k registers of the arch if --regs is not set"),
			cli.NewFlag("arch", "", "register names: generic r0..r<k-1> or arm64"),
			cli.NewFlag("fp", "fp", "frame pointer temp, never colored"),
			cli.NewFlag("listing,l", false, "print blocks with registers instead of the assignment table"),
		},
	}

	app := &cli.Command{
		Name:        "regcolor",
		Description: "regcolor is a graph coloring register allocator for straight-line three-address code",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics (dump_graph, dump_live, simplify, select, alloc, analyze)"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			parseCmd,
			graphCmd,
			allocCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		bs, err := compiler.Load(ctx, a, text)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		var out []byte

		for i, b := range bs {
			if i != 0 {
				out = append(out, '\n')
			}

			out = format.Block(out, b.Block, nil, format.Live)
		}

		_, err = os.Stdout.Write(out)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func graphAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		out, err := compiler.Graphs(ctx, a, text, c.String("fp"))
		if err != nil {
			return errors.Wrap(err, "graph %v", a)
		}

		_, err = os.Stdout.Write(out)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func allocAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg := compiler.Config{
		FP:      c.String("fp"),
		Listing: c.Bool("listing"),
	}

	if q := c.String("regs"); q != "" {
		cfg.Regs, err = tac.ParseRegFile(q)
		if err != nil {
			return errors.Wrap(err, "regs")
		}
	} else if k := c.Int("k"); k > 0 {
		switch arch := c.String("arch"); arch {
		case "":
			cfg.Regs = tac.NewRegFile("r", k)
		case "arm64":
			cfg.Regs, err = arm64.RegFile(k)
			if err != nil {
				return errors.Wrap(err, "arm64")
			}
		default:
			return errors.New("unsupported arch: %v", arch)
		}
	}

	if len(cfg.Regs) == 0 {
		return errors.New("no registers")
	}

	for _, a := range c.Args {
		out, err := compiler.AllocateFile(ctx, a, cfg)
		if err != nil {
			return errors.Wrap(err, "alloc %v", a)
		}

		_, err = os.Stdout.Write(out)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}
