package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

func prog(t *testing.T, qubits int) (*qir.Program, *qir.Block) {
	p := qir.New(t.Name())
	f := p.NewFunc("main", qubits, 0)

	return p, f.Blocks[0]
}

func TestAllowedIntrinsics(t *testing.T) {
	p, b := prog(t, 2)

	p.Rotation(b, qir.Rz, math.Pi/2, 0)
	p.Gate(b, qir.SX, 0)
	p.Gate(b, qir.CZ, 0, 1)
	p.Measure(b, qir.MResetZ, 0, 0)
	p.Return(b)

	assert.NoError(t, AllowedIntrinsics(p))
}

func TestAllowedIntrinsicsRejectsAbstract(t *testing.T) {
	for _, op := range []qir.Op{qir.H, qir.CX, qir.M, qir.Rx} {
		p, b := prog(t, 2)

		p.Gate(b, op, 0)
		p.Return(b)

		err := AllowedIntrinsics(p)
		require.Error(t, err, "op %v", op)
		assert.Contains(t, err.Error(), op.String())
	}
}

func TestParallelSections(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.SectionBegin)
	p.Gate(b, qir.SX, 0)
	p.Gate(b, qir.SectionEnd)
	p.Return(b)

	assert.NoError(t, ParallelSections(p))
}

func TestParallelSectionsNested(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.SectionBegin)
	p.Gate(b, qir.SectionBegin)
	p.Gate(b, qir.SectionEnd)
	p.Gate(b, qir.SectionEnd)
	p.Return(b)

	err := ParallelSections(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested")
}

func TestParallelSectionsUnmatched(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.SectionEnd)
	p.Return(b)

	err := ParallelSections(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmatched")
}

func TestParallelSectionsUnclosed(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.SectionBegin)
	p.Return(b)

	err := ParallelSections(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed")
}

func TestSingleBlock(t *testing.T) {
	p, b := prog(t, 1)
	p.Return(b)

	assert.NoError(t, SingleBlock(p))

	f := p.EntryFunc()
	f.Blocks = append(f.Blocks, &qir.Block{})

	err := SingleBlock(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 blocks")
}

func TestCliffordAngles(t *testing.T) {
	p, b := prog(t, 1)

	p.Rotation(b, qir.Rz, math.Pi/2, 0)
	p.Rotation(b, qir.Rz, -math.Pi, 0)
	p.Rotation(b, qir.Rz, 0, 0)
	p.Rotation(b, qir.Rz, 3*math.Pi/2, 0)
	p.Return(b)

	assert.NoError(t, CliffordAngles(p))
}

func TestCliffordAnglesRejects(t *testing.T) {
	p, b := prog(t, 1)

	p.Rotation(b, qir.Rz, math.Pi/4, 0)
	p.Return(b)

	err := CliffordAngles(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-clifford")
}

func TestCliffordAnglesRejectsSymbolic(t *testing.T) {
	p, b := prog(t, 1)

	n := p.Rotation(b, qir.Rz, 0, 0)
	p.At(n).Sym = true
	p.Return(b)

	err := CliffordAngles(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-constant")
}
