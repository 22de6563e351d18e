// Package decompose lowers the abstract gate vocabulary to the native set
// {rz, sx, cz, mresetz}. Three sub-passes run to a fixed point: multi-qubit
// gates to cz form, single-qubit rotations to rz, fixed single-qubit gates
// to rz/sx.
package decompose

import (
	"context"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

// ErrUnsupported is returned when an instruction kind has no entry in the
// rewrite tables.
var ErrUnsupported = errors.New("unsupported instruction")

func Apply(ctx context.Context, p *qir.Program) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "decompose")
	defer tr.Finish("err", &err)

	for _, f := range p.Funcs {
		for _, b := range f.Blocks {
			err := applyBlock(ctx, p, b)
			if err != nil {
				return errors.Wrap(err, "func %v", f.Name)
			}
		}
	}

	return nil
}

func applyBlock(ctx context.Context, p *qir.Program, b *qir.Block) error {
	tr := tlog.SpanFromContext(ctx)

	for {
		c1, err := multiQubit(p, b)
		if err != nil {
			return err
		}

		c2 := rotations(p, b)
		c3 := fixed(p, b)

		if tr.If("fixpoint") {
			tr.Printw("decompose round", "multi", c1, "rot", c2, "fixed", c3)
		}

		if !c1 && !c2 && !c3 {
			return nil
		}
	}
}

// multiQubit rewrites every two- and three-qubit gate into cz and
// single-qubit gates. New cx emitted by swap and ccx expansions are picked
// up by the fixed-point re-run.
func multiQubit(p *qir.Program, b *qir.Block) (changed bool, err error) {
	for _, n := range snapshot(b) {
		in := *p.At(n)

		switch in.Op {
		case qir.CZ, qir.Rz, qir.SX, qir.MResetZ,
			qir.X, qir.Y, qir.Z, qir.H, qir.S, qir.Sadj, qir.T, qir.Tadj,
			qir.Rx, qir.Ry, qir.M, qir.Reset,
			qir.Read, qir.Output, qir.Ret, qir.Br:
			continue

		case qir.CX:
			c, t := in.Qubits[0], in.Qubits[1]

			p.GateBefore(b, n, qir.H, t)
			p.GateBefore(b, n, qir.CZ, c, t)
			p.GateBefore(b, n, qir.H, t)

		case qir.CY:
			c, t := in.Qubits[0], in.Qubits[1]

			p.GateBefore(b, n, qir.Sadj, t)
			p.GateBefore(b, n, qir.H, t)
			p.GateBefore(b, n, qir.CZ, c, t)
			p.GateBefore(b, n, qir.H, t)
			p.GateBefore(b, n, qir.S, t)

		case qir.Swap:
			a, c := in.Qubits[0], in.Qubits[1]

			p.GateBefore(b, n, qir.CX, a, c)
			p.GateBefore(b, n, qir.CX, c, a)
			p.GateBefore(b, n, qir.CX, a, c)

		case qir.CCX:
			ccx(p, b, n)

		case qir.Rzz:
			zzBasis(p, b, n, nil, nil)

		case qir.Rxx:
			q := in.Qubits

			zzBasis(p, b, n,
				[]qir.Instr{
					{Op: qir.H, Qubits: []qir.Qubit{q[0]}},
					{Op: qir.H, Qubits: []qir.Qubit{q[1]}},
				},
				[]qir.Instr{
					{Op: qir.H, Qubits: []qir.Qubit{q[0]}},
					{Op: qir.H, Qubits: []qir.Qubit{q[1]}},
				})

		case qir.Ryy:
			q := in.Qubits

			zzBasis(p, b, n,
				[]qir.Instr{
					{Op: qir.Sadj, Qubits: []qir.Qubit{q[0]}},
					{Op: qir.H, Qubits: []qir.Qubit{q[0]}},
					{Op: qir.Sadj, Qubits: []qir.Qubit{q[1]}},
					{Op: qir.H, Qubits: []qir.Qubit{q[1]}},
				},
				[]qir.Instr{
					{Op: qir.H, Qubits: []qir.Qubit{q[0]}},
					{Op: qir.S, Qubits: []qir.Qubit{q[0]}},
					{Op: qir.H, Qubits: []qir.Qubit{q[1]}},
					{Op: qir.S, Qubits: []qir.Qubit{q[1]}},
				})

		default:
			return false, errors.Wrap(ErrUnsupported, "node %d: %v", n, in.Op)
		}

		p.Erase(b, n)

		changed = true
	}

	return changed, nil
}

// ccx is the standard Toffoli sequence over cx and t gates; the re-run
// expands the cx further.
func ccx(p *qir.Program, b *qir.Block, n qir.Node) {
	in := *p.At(n)
	a, c, t := in.Qubits[0], in.Qubits[1], in.Qubits[2]

	p.GateBefore(b, n, qir.H, t)
	p.GateBefore(b, n, qir.CX, c, t)
	p.GateBefore(b, n, qir.Tadj, t)
	p.GateBefore(b, n, qir.CX, a, t)
	p.GateBefore(b, n, qir.T, t)
	p.GateBefore(b, n, qir.CX, c, t)
	p.GateBefore(b, n, qir.Tadj, t)
	p.GateBefore(b, n, qir.CX, a, t)
	p.GateBefore(b, n, qir.T, c)
	p.GateBefore(b, n, qir.T, t)
	p.GateBefore(b, n, qir.H, t)
	p.GateBefore(b, n, qir.CX, a, c)
	p.GateBefore(b, n, qir.T, a)
	p.GateBefore(b, n, qir.Tadj, c)
	p.GateBefore(b, n, qir.CX, a, c)
}

// zzBasis replaces the rotation at n by pre, cx-sandwiched rz, post.
func zzBasis(p *qir.Program, b *qir.Block, n qir.Node, pre, post []qir.Instr) {
	in := *p.At(n)
	a, c := in.Qubits[0], in.Qubits[1]

	for _, x := range pre {
		_, err := p.InsertBefore(b, n, x)
		if err != nil {
			panic(err)
		}
	}

	p.GateBefore(b, n, qir.CX, a, c)

	_, err := p.InsertBefore(b, n, qir.Instr{Op: qir.Rz, Qubits: []qir.Qubit{c}, Theta: in.Theta, Sym: in.Sym})
	if err != nil {
		panic(err)
	}

	p.GateBefore(b, n, qir.CX, a, c)

	for _, x := range post {
		_, err := p.InsertBefore(b, n, x)
		if err != nil {
			panic(err)
		}
	}
}

// rotations rewrites rx and ry into rz with h / s_adj,h basis changes.
func rotations(p *qir.Program, b *qir.Block) (changed bool) {
	for _, n := range snapshot(b) {
		in := *p.At(n)

		switch in.Op {
		case qir.Rx:
			q := in.Qubits[0]

			p.GateBefore(b, n, qir.H, q)
			rzBefore(p, b, n, in, q)
			p.GateBefore(b, n, qir.H, q)

		case qir.Ry:
			q := in.Qubits[0]

			p.GateBefore(b, n, qir.Sadj, q)
			p.GateBefore(b, n, qir.H, q)
			rzBefore(p, b, n, in, q)
			p.GateBefore(b, n, qir.H, q)
			p.GateBefore(b, n, qir.S, q)

		default:
			continue
		}

		p.Erase(b, n)

		changed = true
	}

	return changed
}

func rzBefore(p *qir.Program, b *qir.Block, n qir.Node, in qir.Instr, q qir.Qubit) {
	_, err := p.InsertBefore(b, n, qir.Instr{Op: qir.Rz, Qubits: []qir.Qubit{q}, Theta: in.Theta, Sym: in.Sym})
	if err != nil {
		panic(err)
	}
}

// fixed rewrites the fixed single-qubit gates into rz and sx.
func fixed(p *qir.Program, b *qir.Block) (changed bool) {
	for _, n := range snapshot(b) {
		in := *p.At(n)

		var seq []qir.Instr

		switch in.Op {
		case qir.H:
			q := in.Qubits[0]

			seq = []qir.Instr{
				rz(math.Pi/2, q),
				{Op: qir.SX, Qubits: []qir.Qubit{q}},
				rz(math.Pi/2, q),
			}

		case qir.S:
			seq = []qir.Instr{rz(math.Pi/2, in.Qubits[0])}
		case qir.Sadj:
			seq = []qir.Instr{rz(-math.Pi/2, in.Qubits[0])}
		case qir.T:
			seq = []qir.Instr{rz(math.Pi/4, in.Qubits[0])}
		case qir.Tadj:
			seq = []qir.Instr{rz(-math.Pi/4, in.Qubits[0])}

		case qir.X:
			q := in.Qubits[0]

			seq = []qir.Instr{
				{Op: qir.SX, Qubits: []qir.Qubit{q}},
				{Op: qir.SX, Qubits: []qir.Qubit{q}},
			}

		case qir.Y:
			q := in.Qubits[0]

			seq = []qir.Instr{
				{Op: qir.SX, Qubits: []qir.Qubit{q}},
				{Op: qir.SX, Qubits: []qir.Qubit{q}},
				rz(math.Pi, q),
			}

		case qir.Z:
			seq = []qir.Instr{rz(math.Pi, in.Qubits[0])}

		default:
			continue
		}

		for _, x := range seq {
			_, err := p.InsertBefore(b, n, x)
			if err != nil {
				panic(err)
			}
		}

		p.Erase(b, n)

		changed = true
	}

	return changed
}

func rz(theta float64, q qir.Qubit) qir.Instr {
	return qir.Instr{Op: qir.Rz, Qubits: []qir.Qubit{q}, Theta: theta}
}

// snapshot copies the code list so rewrites can mutate the block while
// the scan walks the original order.
func snapshot(b *qir.Block) []qir.Node {
	s := make([]qir.Node, len(b.Code))
	copy(s, b.Code)

	return s
}
