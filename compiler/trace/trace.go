// Package trace derives a stepwise view of a scheduled program for
// visualization: every parallel section, or every stand-alone physical
// instruction, is one step.
package trace

import (
	"fmt"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

type (
	Op struct {
		Kind   string
		Qubits []int
		Theta  float64
		Angled bool

		Src, Dst qir.Site
		IsMove   bool
	}

	Step []Op

	Trace struct {
		Steps []Step
	}
)

// Build re-walks the scheduled entry function. Classical reads, output
// markers and terminators carry no physical action and are skipped.
func Build(p *qir.Program) *Trace {
	t := &Trace{}

	f := p.EntryFunc()

	for _, b := range f.Blocks {
		var cur Step
		open := false

		for _, n := range b.Code {
			in := p.At(n)

			switch in.Op {
			case qir.SectionBegin:
				open = true
				cur = nil
				continue

			case qir.SectionEnd:
				open = false

				if len(cur) != 0 {
					t.Steps = append(t.Steps, cur)
				}

				cur = nil
				continue

			case qir.Read, qir.Output, qir.Ret, qir.Br:
				continue
			}

			op := describe(in)

			if open {
				cur = append(cur, op)
			} else {
				t.Steps = append(t.Steps, Step{op})
			}
		}
	}

	return t
}

func describe(in *qir.Instr) Op {
	op := Op{
		Kind:   in.Op.String(),
		Theta:  in.Theta,
		Angled: in.Op.HasAngle(),
	}

	for _, q := range in.Qubits {
		op.Qubits = append(op.Qubits, int(q))
	}

	if in.Op == qir.Move {
		op.IsMove = true
		op.Src, op.Dst = in.Src, in.Dst
	}

	return op
}

func (o Op) String() string {
	s := o.Kind

	if o.Angled {
		s += fmt.Sprintf("(%.4g)", o.Theta)
	}

	for _, q := range o.Qubits {
		s += fmt.Sprintf(" q%d", q)
	}

	if o.IsMove {
		s += fmt.Sprintf(" (%d,%d)->(%d,%d)", o.Src.Row, o.Src.Col, o.Dst.Row, o.Dst.Col)
	}

	return s
}
