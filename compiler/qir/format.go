package qir

import (
	"fmt"
)

// Format renders the program as a readable listing, append style.
func Format(b []byte, p *Program) []byte {
	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		entry := ""
		if i == p.Entry {
			entry = " entry"
		}

		b = fmt.Appendf(b, "func %v(qubits %d, results %d)%s {\n", f.Name, f.Qubits, f.Results, entry)

		for j, blk := range f.Blocks {
			b = fmt.Appendf(b, "block %d:\n", j)

			for _, n := range blk.Code {
				b = FormatInstr(b, p, n)
				b = append(b, '\n')
			}
		}

		b = append(b, "}\n"...)
	}

	return b
}

func FormatInstr(b []byte, p *Program, n Node) []byte {
	in := p.At(n)

	b = fmt.Appendf(b, "\t%v", in.Op)

	if in.Op.HasAngle() {
		if in.Sym {
			b = append(b, " theta=?"...)
		} else {
			b = fmt.Appendf(b, " theta=%.6g", in.Theta)
		}
	}

	for _, q := range in.Qubits {
		b = fmt.Appendf(b, " q%d", q)
	}

	for _, r := range in.Results {
		b = fmt.Appendf(b, " r%d", r)
	}

	if in.Op == Move {
		b = fmt.Appendf(b, " (%d,%d)->(%d,%d)", in.Src.Row, in.Src.Col, in.Dst.Row, in.Dst.Col)
	}

	return b
}

// String is a convenience over Format for diagnostics and tests.
func (p *Program) String() string {
	return string(Format(nil, p))
}
