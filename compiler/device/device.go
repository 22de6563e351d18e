// Package device models the spatial layout of a neutral-atom machine:
// zones of physical sites sharing one column count, and the fixed home
// site of every logical qubit.
package device

import (
	"tlog.app/go/errors"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

type (
	ZoneKind int

	Zone struct {
		Name string
		Kind ZoneKind
		Rows int

		// Offset is the first global row of the zone, derived at build.
		Offset int
	}

	Topology struct {
		Cols  int
		Zones []Zone

		home []qir.Site
	}

	// Builder assembles a Topology. Zones occupy rows in the order they
	// are added.
	Builder struct {
		cols   int
		zones  []Zone
		layout Layout
	}
)

const (
	Register ZoneKind = iota
	Interaction
	Measurement
)

func (k ZoneKind) String() string {
	switch k {
	case Register:
		return "register"
	case Interaction:
		return "interaction"
	case Measurement:
		return "measurement"
	}

	return "zone?"
}

func NewBuilder() Builder {
	return Builder{layout: InterleavedLayout{}}
}

func (b Builder) WithColumns(cols int) Builder {
	b.cols = cols
	return b
}

func (b Builder) WithZone(name string, rows int, kind ZoneKind) Builder {
	b.zones = append(b.zones, Zone{Name: name, Kind: kind, Rows: rows})
	return b
}

// WithLayout overrides the home-site layout strategy.
func (b Builder) WithLayout(l Layout) Builder {
	b.layout = l
	return b
}

func (b Builder) Build() (*Topology, error) {
	if b.cols <= 0 {
		return nil, errors.New("column count must be positive: %d", b.cols)
	}

	if len(b.zones) == 0 {
		return nil, errors.New("topology needs at least one zone")
	}

	t := &Topology{
		Cols:  b.cols,
		Zones: make([]Zone, len(b.zones)),
	}

	off := 0

	for i, z := range b.zones {
		if z.Rows <= 0 {
			return nil, errors.New("zone %v: row count must be positive: %d", z.Name, z.Rows)
		}

		z.Offset = off
		off += z.Rows

		t.Zones[i] = z
	}

	t.home = b.layout.Homes(t)

	if len(t.home) == 0 {
		return nil, errors.New("topology has no register sites")
	}

	return t, nil
}

// Capacity is the number of logical qubits the topology can home.
func (t *Topology) Capacity() int {
	return len(t.home)
}

// Home returns the fixed idle site of qubit q.
func (t *Topology) Home(q qir.Qubit) (qir.Site, error) {
	if int(q) < 0 || int(q) >= len(t.home) {
		return qir.Site{}, errors.New("qubit %d out of device capacity %d", q, len(t.home))
	}

	return t.home[q], nil
}

// RowsOf returns the global row indices of all zones of the given kind,
// in zone order.
func (t *Topology) RowsOf(kind ZoneKind) []int {
	var rows []int

	for _, z := range t.Zones {
		if z.Kind != kind {
			continue
		}

		for r := 0; r < z.Rows; r++ {
			rows = append(rows, z.Offset+r)
		}
	}

	return rows
}

// Default is the topology used when the caller does not specify one.
func Default() *Topology {
	t, err := NewBuilder().
		WithColumns(8).
		WithZone("register", 2, Register).
		WithZone("interaction", 2, Interaction).
		WithZone("measurement", 1, Measurement).
		Build()
	if err != nil {
		panic(err)
	}

	return t
}
