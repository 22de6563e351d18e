// Package peephole shrinks a block by local gate identities: adjoint
// cancellation, rotation folding, h;s;h to sx, measurement and reset
// fusion. Every rule rewrites in place, so instruction order per qubit is
// preserved structurally. The pass is idempotent.
package peephole

import (
	"context"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

// Eps is the fold tolerance: machine epsilon for single precision.
const Eps = 1.1920929e-07

type state struct {
	p *qir.Program
	b *qir.Block

	// pending is the uncommitted run of single-qubit ops per qubit.
	pending map[qir.Qubit][]qir.Node

	// lastM is a measurement awaiting a possible following reset.
	lastM map[qir.Qubit]qir.Node

	// refs counts non-reset references per qubit over the whole block.
	refs map[qir.Qubit]int
}

func Apply(ctx context.Context, p *qir.Program) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "peephole")
	defer tr.Finish("err", &err)

	for _, f := range p.Funcs {
		for _, b := range f.Blocks {
			err := applyBlock(p, b)
			if err != nil {
				return errors.Wrap(err, "func %v", f.Name)
			}
		}
	}

	return nil
}

func applyBlock(p *qir.Program, b *qir.Block) error {
	st := &state{
		p:       p,
		b:       b,
		pending: map[qir.Qubit][]qir.Node{},
		lastM:   map[qir.Qubit]qir.Node{},
		refs:    map[qir.Qubit]int{},
	}

	for _, n := range b.Code {
		in := p.At(n)
		if in.Op == qir.Reset {
			continue
		}

		for _, q := range in.Qubits {
			st.refs[q]++
		}
	}

	code := make([]qir.Node, len(b.Code))
	copy(code, b.Code)

	for _, n := range code {
		if !p.Alive(n) {
			continue
		}

		st.step(n)
	}

	st.trailing()

	return nil
}

func (st *state) step(n qir.Node) {
	in := st.p.At(n)

	switch {
	case in.Op.Unitary1q() && !(in.Op.HasAngle() && in.Sym):
		st.unitary(n)

	case in.Op == qir.M:
		st.barrier(in.Qubits)
		st.lastM[in.Qubits[0]] = n

	case in.Op == qir.MResetZ:
		st.barrier(in.Qubits)

	case in.Op == qir.Reset:
		st.reset(n)

	case in.Op == qir.Read || in.Op == qir.Output || in.Op.Terminator():
		// classical, no qubit effect

	default:
		// two-qubit gates and symbolic rotations
		st.barrier(in.Qubits)
	}
}

// barrier commits the pending run of every touched qubit. Committed
// instructions were never moved, so commit only clears the run.
func (st *state) barrier(qs []qir.Qubit) {
	for _, q := range qs {
		st.pending[q] = st.pending[q][:0]
		delete(st.lastM, q)
	}
}

func (st *state) unitary(n qir.Node) {
	p := st.p
	in := p.At(n)
	q := in.Qubits[0]

	delete(st.lastM, q)

	run := st.pending[q]

	// cancellation against the run tail
	if len(run) > 0 {
		tail := p.At(run[len(run)-1])

		if tail.Op == adjoint(in.Op) && !in.Op.HasAngle() {
			p.Erase(st.b, run[len(run)-1])
			p.Erase(st.b, n)

			st.pending[q] = run[:len(run)-1]

			return
		}

		if in.Op.HasAngle() && tail.Op == in.Op && !tail.Sym {
			st.fold(q, run[len(run)-1], n)
			return
		}
	}

	// h;s;h becomes sx
	if in.Op == qir.H && len(run) >= 2 &&
		p.At(run[len(run)-1]).Op == qir.S &&
		p.At(run[len(run)-2]).Op == qir.H {
		sx := p.GateBefore(st.b, n, qir.SX, q)

		p.Erase(st.b, run[len(run)-1])
		p.Erase(st.b, run[len(run)-2])
		p.Erase(st.b, n)

		st.pending[q] = append(run[:len(run)-2], sx)

		return
	}

	st.pending[q] = append(run, n)
}

// fold merges two consecutive constant rotations of the same kind.
func (st *state) fold(q qir.Qubit, prev, n qir.Node) {
	p := st.p

	a := p.At(prev).Theta + p.At(n).Theta
	a = Normalize(a)

	p.Erase(st.b, prev)

	run := st.pending[q]
	st.pending[q] = run[:len(run)-1]

	if math.Abs(a) <= Eps || math.Abs(a-2*math.Pi) <= Eps || math.Abs(a+2*math.Pi) <= Eps {
		p.Erase(st.b, n)
		return
	}

	p.At(n).Theta = a

	st.pending[q] = append(st.pending[q], n)
}

func (st *state) reset(n qir.Node) {
	p := st.p
	q := p.At(n).Qubits[0]

	// fuse with an immediately preceding measurement
	if m, ok := st.lastM[q]; ok {
		p.At(m).Op = qir.MResetZ
		p.Erase(st.b, n)

		delete(st.lastM, q)

		return
	}

	// a reset on an otherwise untouched qubit does nothing
	if st.refs[q] == 0 {
		p.Erase(st.b, n)
		return
	}

	st.barrier(p.At(n).Qubits)
}

// trailing rewrites a measurement that is the last reference of its qubit
// into the native measure-and-reset.
func (st *state) trailing() {
	p := st.p

	seen := map[qir.Qubit]bool{}

	for i := len(st.b.Code) - 1; i >= 0; i-- {
		in := p.At(st.b.Code[i])

		for _, q := range in.Qubits {
			if seen[q] {
				continue
			}

			seen[q] = true

			if in.Op == qir.M {
				in.Op = qir.MResetZ
			}
		}
	}
}

// Normalize maps an angle into (-2pi, 2pi].
func Normalize(a float64) float64 {
	a = math.Mod(a, 4*math.Pi)

	if a > 2*math.Pi {
		a -= 4 * math.Pi
	}

	if a <= -2*math.Pi {
		a += 4 * math.Pi
	}

	return a
}

func adjoint(op qir.Op) qir.Op {
	switch op {
	case qir.S:
		return qir.Sadj
	case qir.Sadj:
		return qir.S
	case qir.T:
		return qir.Tadj
	case qir.Tadj:
		return qir.T
	case qir.X, qir.Y, qir.Z, qir.H:
		return op
	}

	return qir.Nop
}
