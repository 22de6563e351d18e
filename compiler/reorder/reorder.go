// Package reorder regroups a block into dependency layers so that
// operations with disjoint operands sit next to each other for the
// scheduler to batch. The per-qubit instruction sequence is unchanged: two
// instructions sharing an operand always land in distinct layers in
// original order.
package reorder

import (
	"context"
	"sort"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/microsoft/qdk-sub000/compiler/qir"
	"github.com/microsoft/qdk-sub000/compiler/set"
)

type layer struct {
	ids  set.Bitmap
	code []qir.Node
}

func Apply(ctx context.Context, p *qir.Program) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "reorder")
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
	var (
		layers []*layer
		tail   []qir.Node
		term   = qir.NoNode
	)

	for _, n := range b.Code {
		in := p.At(n)

		switch {
		case in.Op.Terminator():
			if term != qir.NoNode {
				return errors.New("two terminators in one block")
			}

			term = n
			continue

		case in.Op == qir.Output:
			tail = append(tail, n)
			continue
		}

		ids := operands(in)

		at := 0

		for i := len(layers) - 1; i >= 0; i-- {
			if layers[i].ids.AnyOf(ids...) {
				at = i + 1
				break
			}
		}

		if at == len(layers) {
			layers = append(layers, &layer{})
		}

		layers[at].ids.SetAll(ids...)
		layers[at].code = append(layers[at].code, n)
	}

	if tl := tlog.V("layers"); tl != nil {
		for i, l := range layers {
			tl.Printw("layer", "i", i, "ops", len(l.code), "ids", &l.ids)
		}
	}

	code := b.Code[:0]

	for _, l := range layers {
		sortLayer(p, l.code)
		code = append(code, l.code...)
	}

	code = append(code, tail...)

	if term != qir.NoNode {
		code = append(code, term)
	}

	b.Code = code

	return nil
}

// operands encodes qubit and result identities into one id space.
func operands(in *qir.Instr) []int {
	ids := make([]int, 0, len(in.Qubits)+len(in.Results))

	for _, q := range in.Qubits {
		ids = append(ids, 2*int(q))
	}

	for _, r := range in.Results {
		ids = append(ids, 2*int(r)+1)
	}

	return ids
}

// sortLayer orders a layer by canonical key: op kind, then qubit operands
// with symmetric gates normalized, then results.
func sortLayer(p *qir.Program, code []qir.Node) {
	sort.Slice(code, func(i, j int) bool {
		return less(key(p.At(code[i])), key(p.At(code[j])))
	})
}

func key(in *qir.Instr) []int {
	k := []int{int(in.Op)}

	qs := in.Qubits
	if in.Op.Symmetric() && len(qs) == 2 && qs[0] > qs[1] {
		qs = []qir.Qubit{qs[1], qs[0]}
	}

	for _, q := range qs {
		k = append(k, int(q))
	}

	for _, r := range in.Results {
		k = append(k, int(r))
	}

	return k
}

func less(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}
