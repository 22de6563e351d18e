package trace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

func prog(t *testing.T, qubits int) (*qir.Program, *qir.Block) {
	p := qir.New(t.Name())
	f := p.NewFunc("main", qubits, 1)

	return p, f.Blocks[0]
}

func TestBuildSections(t *testing.T) {
	p, b := prog(t, 2)

	p.Gate(b, qir.SectionBegin)
	p.Append(b, qir.Instr{Op: qir.Move, Qubits: []qir.Qubit{0}, Src: qir.Site{Row: 0, Col: 0}, Dst: qir.Site{Row: 1, Col: 0}})
	p.Append(b, qir.Instr{Op: qir.Move, Qubits: []qir.Qubit{1}, Src: qir.Site{Row: 0, Col: 1}, Dst: qir.Site{Row: 1, Col: 1}})
	p.Gate(b, qir.SectionEnd)

	p.Gate(b, qir.SectionBegin)
	p.Gate(b, qir.CZ, 0, 1)
	p.Gate(b, qir.SectionEnd)

	p.Return(b)

	tr := Build(p)

	require.Len(t, tr.Steps, 2)
	assert.Len(t, tr.Steps[0], 2)
	assert.Len(t, tr.Steps[1], 1)

	mv := tr.Steps[0][0]
	assert.True(t, mv.IsMove)
	assert.Equal(t, qir.Site{Row: 1, Col: 0}, mv.Dst)

	cz := tr.Steps[1][0]
	assert.Equal(t, "cz", cz.Kind)
	assert.Equal(t, []int{0, 1}, cz.Qubits)
}

func TestBuildStandalone(t *testing.T) {
	p, b := prog(t, 1)

	p.Rotation(b, qir.Rz, math.Pi/2, 0)
	p.Gate(b, qir.SX, 0)
	p.Return(b)

	tr := Build(p)

	require.Len(t, tr.Steps, 2)
	assert.Len(t, tr.Steps[0], 1)
	assert.True(t, tr.Steps[0][0].Angled)
	assert.Equal(t, "sx", tr.Steps[1][0].Kind)
}

func TestBuildSkipsClassical(t *testing.T) {
	p, b := prog(t, 1)

	p.Measure(b, qir.MResetZ, 0, 0)
	p.ReadResult(b, 0)
	p.OutputRecord(b, 0)
	p.Return(b)

	tr := Build(p)

	require.Len(t, tr.Steps, 1)
	assert.Equal(t, "mresetz", tr.Steps[0][0].Kind)
}

func TestBuildSkipsEmptySection(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.SectionBegin)
	p.Gate(b, qir.SectionEnd)
	p.Gate(b, qir.SX, 0)
	p.Return(b)

	tr := Build(p)

	require.Len(t, tr.Steps, 1)
	assert.Equal(t, "sx", tr.Steps[0][0].Kind)
}

func TestOpString(t *testing.T) {
	o := Op{Kind: "rz", Theta: math.Pi, Angled: true, Qubits: []int{3}}
	assert.Equal(t, "rz(3.142) q3", o.String())

	m := Op{
		Kind: "move", Qubits: []int{0}, IsMove: true,
		Src: qir.Site{Row: 0, Col: 2}, Dst: qir.Site{Row: 1, Col: 2},
	}
	assert.Equal(t, "move q0 (0,2)->(1,2)", m.String())
}
