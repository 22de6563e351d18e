package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/microsoft/qdk-sub000/compiler/decompose"
	"github.com/microsoft/qdk-sub000/compiler/device"
	"github.com/microsoft/qdk-sub000/compiler/peephole"
	"github.com/microsoft/qdk-sub000/compiler/qir"
	"github.com/microsoft/qdk-sub000/compiler/reorder"
	"github.com/microsoft/qdk-sub000/compiler/schedule"
	"github.com/microsoft/qdk-sub000/compiler/validate"
)

type Options struct {
	Profile  validate.Profile
	Schedule schedule.Config

	// Rounds of optimize+decompose before reordering. The second round
	// re-expands whatever the first left abstract; more are never needed
	// because the optimizer only emits native gates.
	Rounds int
}

func DefaultOptions() Options {
	return Options{
		Profile:  validate.Restricted,
		Schedule: schedule.DefaultConfig(),
		Rounds:   2,
	}
}

// Compile lowers, optimizes, reorders and schedules the program in place
// for the given topology, then validates the result.
func Compile(ctx context.Context, p *qir.Program, topo *device.Topology, opt Options) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", p.Name)
	defer tr.Finish("err", &err)

	if opt.Rounds <= 0 {
		opt.Rounds = 2
	}

	if opt.Profile.SingleBlock {
		err = validate.SingleBlock(p)
		if err != nil {
			return errors.Wrap(err, "validate")
		}
	}

	for i := 0; i < opt.Rounds; i++ {
		err = peephole.Apply(ctx, p)
		if err != nil {
			return errors.Wrap(err, "optimize")
		}

		err = decompose.Apply(ctx, p)
		if err != nil {
			return errors.Wrap(err, "decompose")
		}
	}

	err = peephole.Apply(ctx, p)
	if err != nil {
		return errors.Wrap(err, "optimize")
	}

	err = reorder.Apply(ctx, p)
	if err != nil {
		return errors.Wrap(err, "reorder")
	}

	s := schedule.New(topo, opt.Schedule)

	err = s.Apply(ctx, p)
	if err != nil {
		return errors.Wrap(err, "schedule")
	}

	err = validate.AllowedIntrinsics(p)
	if err != nil {
		return errors.Wrap(err, "validate")
	}

	err = validate.ParallelSections(p)
	if err != nil {
		return errors.Wrap(err, "validate")
	}

	if opt.Profile.Clifford {
		err = validate.CliffordAngles(p)
		if err != nil {
			return errors.Wrap(err, "validate")
		}
	}

	p.PruneDecls()

	return nil
}
