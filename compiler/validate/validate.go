// Package validate holds the structural post-conditions checked over
// scheduled output. Each check is independently callable; Profile bundles
// the ones a device profile requires.
package validate

import (
	"math"

	"tlog.app/go/errors"

	"github.com/microsoft/qdk-sub000/compiler/peephole"
	"github.com/microsoft/qdk-sub000/compiler/qir"
)

// Profile selects the checks a compilation target requires. The
// restricted stabilizer simulation profile requires all of them.
type Profile struct {
	SingleBlock bool
	Clifford    bool
}

var Restricted = Profile{SingleBlock: true, Clifford: true}

// AllowedIntrinsics checks that every instruction is native, a runtime
// bracket, a move, or classical.
func AllowedIntrinsics(p *qir.Program) error {
	for _, f := range p.Funcs {
		for _, b := range f.Blocks {
			for _, n := range b.Code {
				op := p.At(n).Op

				switch op {
				case qir.Rz, qir.SX, qir.CZ, qir.MResetZ,
					qir.Move, qir.SectionBegin, qir.SectionEnd,
					qir.Read, qir.Output,
					qir.Ret, qir.Br:
				default:
					return errors.New("unsupported intrinsic %v at node %d (func %v)", op, n, f.Name)
				}
			}
		}
	}

	return nil
}

// ParallelSections checks that section brackets balance and never nest.
func ParallelSections(p *qir.Program) error {
	for _, f := range p.Funcs {
		for _, b := range f.Blocks {
			open := false

			for _, n := range b.Code {
				switch p.At(n).Op {
				case qir.SectionBegin:
					if open {
						return errors.New("nested parallel section at node %d (func %v)", n, f.Name)
					}

					open = true
				case qir.SectionEnd:
					if !open {
						return errors.New("unmatched section end at node %d (func %v)", n, f.Name)
					}

					open = false
				}
			}

			if open {
				return errors.New("unclosed parallel section (func %v)", f.Name)
			}
		}
	}

	return nil
}

// SingleBlock checks that the entry function has exactly one block.
func SingleBlock(p *qir.Program) error {
	f := p.EntryFunc()

	if len(f.Blocks) != 1 {
		return errors.New("entry function %v has %d blocks, restricted profile needs 1", f.Name, len(f.Blocks))
	}

	return nil
}

// CliffordAngles checks that every rz angle is a compile-time constant
// multiple of pi/2 within tolerance.
func CliffordAngles(p *qir.Program) error {
	for _, f := range p.Funcs {
		for _, b := range f.Blocks {
			for _, n := range b.Code {
				in := p.At(n)
				if in.Op != qir.Rz {
					continue
				}

				if in.Sym {
					return errors.New("non-constant rz angle at node %d (func %v)", n, f.Name)
				}

				k := in.Theta / (math.Pi / 2)

				if math.Abs(k-math.Round(k)) > peephole.Eps {
					return errors.New("non-clifford angle %v at node %d (func %v)", in.Theta, n, f.Name)
				}
			}
		}
	}

	return nil
}
