package main

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

// parse reads a line-oriented gate listing: one op per line, qubit
// operands as bare integers, rotation angle first when the op takes one,
// measurements as "m <qubit> <result>". '#' starts a comment.
//
//	h 0
//	cx 0 1
//	rz 1.5707963 1
//	m 1 0
func parse(name string, text []byte) (*qir.Program, error) {
	p := qir.New(name)

	f := p.NewFunc("main", 0, 0)
	b := f.Blocks[0]

	maxQ, maxR := -1, -1

	for lnum, line := range strings.Split(string(text), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		op, ok := qir.OpByName(fields[0])
		if !ok {
			return nil, errors.New("line %d: unknown op: %v", lnum+1, fields[0])
		}

		args := fields[1:]

		in := qir.Instr{Op: op}

		if op.HasAngle() {
			if len(args) == 0 {
				return nil, errors.New("line %d: %v needs an angle", lnum+1, op)
			}

			theta, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return nil, errors.Wrap(err, "line %d: angle", lnum+1)
			}

			in.Theta = theta
			args = args[1:]
		}

		if len(args) != op.Arity()+results(op) {
			return nil, errors.New("line %d: %v takes %d operands, got %d", lnum+1, op, op.Arity()+results(op), len(args))
		}

		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return nil, errors.Wrap(err, "line %d: operand %v", lnum+1, a)
			}

			if i < op.Arity() {
				in.Qubits = append(in.Qubits, qir.Qubit(v))

				if v > maxQ {
					maxQ = v
				}
			} else {
				in.Results = append(in.Results, qir.Result(v))

				if v > maxR {
					maxR = v
				}
			}
		}

		p.Append(b, in)
	}

	f.Qubits = maxQ + 1
	f.Results = maxR + 1

	for r := 0; r <= maxR; r++ {
		p.OutputRecord(b, qir.Result(r))
	}

	p.Return(b)

	return p, nil
}

func results(op qir.Op) int {
	if op == qir.M || op == qir.MResetZ {
		return 1
	}

	return 0
}
