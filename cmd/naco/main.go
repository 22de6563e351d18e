package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/microsoft/qdk-sub000/compiler"
	"github.com/microsoft/qdk-sub000/compiler/device"
	"github.com/microsoft/qdk-sub000/compiler/qir"
	"github.com/microsoft/qdk-sub000/compiler/trace"
)

func main() {
	compileCmd := &cli.Command{
		Name:   "compile",
		Action: compileAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("cols", 8, "device column count"),
			cli.NewFlag("full", false, "full profile: skip single-block and clifford checks"),
		},
	}

	traceCmd := &cli.Command{
		Name:   "trace",
		Action: traceAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("cols", 8, "device column count"),
			cli.NewFlag("full", false, "full profile: skip single-block and clifford checks"),
		},
	}

	app := &cli.Command{
		Name:        "naco",
		Description: "naco compiles gate listings onto a zoned neutral-atom device",
		Flags: []*cli.Flag{
			cli.NewFlag("v", "", "verbosity topics"),
		},
		Commands: []*cli.Command{
			compileCmd,
			traceCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) context.Context {
	tlog.SetVerbosity(c.String("v"))

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx
}

func compileAct(c *cli.Command) error {
	ctx := setup(c)

	for _, a := range c.Args {
		p, err := compileFile(ctx, c, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", p.String())
	}

	return nil
}

func traceAct(c *cli.Command) error {
	ctx := setup(c)

	for _, a := range c.Args {
		p, err := compileFile(ctx, c, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Println(render(trace.Build(p)))
	}

	return nil
}

func compileFile(ctx context.Context, c *cli.Command, name string) (p *qir.Program, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	prog, err := parse(name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse listing")
	}

	topo, err := device.NewBuilder().
		WithColumns(c.Int("cols")).
		WithZone("register", 2, device.Register).
		WithZone("interaction", 2, device.Interaction).
		WithZone("measurement", 1, device.Measurement).
		Build()
	if err != nil {
		return nil, errors.Wrap(err, "build topology")
	}

	opts := compiler.DefaultOptions()

	if c.Bool("full") {
		opts.Profile.SingleBlock = false
		opts.Profile.Clifford = false
	}

	err = compiler.Compile(ctx, prog, topo, opts)
	if err != nil {
		return nil, err
	}

	return prog, nil
}
