package schedule

import (
	"nikand.dev/go/heap"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

type (
	// Travel is one qubit transport between physical sites.
	Travel struct {
		Q        qir.Qubit
		Src, Dst qir.Site
	}

	class struct {
		rowPar, colPar int
		rowDir, colDir bool
	}

	candidate struct {
		dr, dc int // reference displacement
		moves  []Travel
	}

	pool struct {
		heap.Heap[*candidate]
	}
)

// Parallelize splits the moves of one flush into batches executable by
// the same physical actuation pattern. Moves are first split into 16
// disjoint classes by displacement parities and directions, then grouped
// by proportional displacement; the largest groups are taken first,
// capped at batchCap per batch.
func Parallelize(moves []Travel, batchCap int) [][]Travel {
	classes := map[class][]*candidate{}

	var order []class

	for _, m := range moves {
		k := classOf(m)

		cands, ok := classes[k]
		if !ok {
			order = append(order, k)
		}

		classes[k] = place(cands, m)
	}

	p := pool{Heap: heap.Heap[*candidate]{Less: biggest}}

	for _, k := range order {
		for _, c := range classes[k] {
			p.Push(c)
		}
	}

	var batches [][]Travel

	for p.Len() != 0 {
		c := p.Pop()

		take := len(c.moves)
		if take > batchCap {
			take = batchCap
		}

		batches = append(batches, c.moves[:take])

		if take < len(c.moves) {
			c.moves = c.moves[take:]
			p.Push(c)
		}
	}

	return batches
}

func classOf(m Travel) class {
	return class{
		rowPar: (m.Dst.Row - m.Src.Row) & 1,
		colPar: (m.Dst.Col - m.Src.Col) & 1,
		rowDir: m.Dst.Row >= m.Src.Row,
		colDir: m.Dst.Col >= m.Src.Col,
	}
}

// place adds the move to the first candidate whose reference displacement
// is proportional to the move's, comparing exactly by cross
// multiplication so no float rounding splits a group.
func place(cands []*candidate, m Travel) []*candidate {
	dr := m.Dst.Row - m.Src.Row
	dc := m.Dst.Col - m.Src.Col

	for _, c := range cands {
		if int64(dr)*int64(c.dc) == int64(dc)*int64(c.dr) {
			c.moves = append(c.moves, m)
			return cands
		}
	}

	return append(cands, &candidate{dr: dr, dc: dc, moves: []Travel{m}})
}

func biggest(d []*candidate, i, j int) bool {
	return len(d[i].moves) > len(d[j].moves)
}
