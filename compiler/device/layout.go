package device

import "github.com/microsoft/qdk-sub000/compiler/qir"

type (
	// Layout maps register-zone geometry to the ordered list of home
	// sites. Qubit q homes at the q-th site of the list.
	Layout interface {
		Homes(t *Topology) []qir.Site
	}

	// InterleavedLayout walks register zones in order, with the first
	// register zone's rows reversed relative to the later ones, filling
	// each row left to right.
	InterleavedLayout struct{}

	// RowMajorLayout fills every register zone top to bottom.
	RowMajorLayout struct{}
)

func (InterleavedLayout) Homes(t *Topology) []qir.Site {
	var homes []qir.Site

	first := true

	for _, z := range t.Zones {
		if z.Kind != Register {
			continue
		}

		for i := 0; i < z.Rows; i++ {
			r := z.Offset + i
			if first {
				r = z.Offset + z.Rows - 1 - i
			}

			for c := 0; c < t.Cols; c++ {
				homes = append(homes, qir.Site{Row: r, Col: c})
			}
		}

		first = false
	}

	return homes
}

func (RowMajorLayout) Homes(t *Topology) []qir.Site {
	var homes []qir.Site

	for _, z := range t.Zones {
		if z.Kind != Register {
			continue
		}

		for i := 0; i < z.Rows; i++ {
			for c := 0; c < t.Cols; c++ {
				homes = append(homes, qir.Site{Row: z.Offset + i, Col: c})
			}
		}
	}

	return homes
}
