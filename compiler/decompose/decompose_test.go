package decompose

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

func prog(t *testing.T, qubits int) (*qir.Program, *qir.Block) {
	p := qir.New(t.Name())
	f := p.NewFunc("main", qubits, 0)

	return p, f.Blocks[0]
}

func ops(p *qir.Program, b *qir.Block) []qir.Op {
	var r []qir.Op

	for _, n := range b.Code {
		r = append(r, p.At(n).Op)
	}

	return r
}

func TestCXToCZ(t *testing.T) {
	p, b := prog(t, 2)

	p.Gate(b, qir.CX, 0, 1)
	p.Return(b)

	// only the multi-qubit sub-pass applied once
	changed, err := multiQubit(p, b)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Equal(t, []qir.Op{qir.H, qir.CZ, qir.H, qir.Ret}, ops(p, b))

	in := p.At(b.Code[1])
	assert.Equal(t, []qir.Qubit{0, 1}, in.Qubits)

	// h targets the controlled qubit
	assert.Equal(t, []qir.Qubit{1}, p.At(b.Code[0]).Qubits)
	assert.Equal(t, []qir.Qubit{1}, p.At(b.Code[2]).Qubits)
}

func TestNativeOnly(t *testing.T) {
	p, b := prog(t, 3)

	p.Gate(b, qir.H, 0)
	p.Gate(b, qir.X, 0)
	p.Gate(b, qir.Y, 1)
	p.Gate(b, qir.Z, 1)
	p.Gate(b, qir.T, 2)
	p.Gate(b, qir.Tadj, 2)
	p.Rotation(b, qir.Rx, 0.25, 0)
	p.Rotation(b, qir.Ry, 0.25, 1)
	p.Gate(b, qir.CX, 0, 1)
	p.Gate(b, qir.CY, 1, 2)
	p.Gate(b, qir.Swap, 0, 2)
	p.Gate(b, qir.CCX, 0, 1, 2)
	p.Rotation(b, qir.Rxx, 0.5, 0, 1)
	p.Rotation(b, qir.Ryy, 0.5, 1, 2)
	p.Rotation(b, qir.Rzz, 0.5, 0, 2)
	p.Return(b)

	err := Apply(context.Background(), p)
	require.NoError(t, err)

	for _, op := range ops(p, b) {
		switch op {
		case qir.Rz, qir.SX, qir.CZ, qir.Ret:
		default:
			t.Errorf("non-native op survived: %v", op)
		}
	}
}

func TestFixedGateAngles(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.S, 0)
	p.Gate(b, qir.Sadj, 0)
	p.Gate(b, qir.T, 0)
	p.Gate(b, qir.Tadj, 0)
	p.Gate(b, qir.Z, 0)
	p.Return(b)

	err := Apply(context.Background(), p)
	require.NoError(t, err)

	require.Equal(t, []qir.Op{qir.Rz, qir.Rz, qir.Rz, qir.Rz, qir.Rz, qir.Ret}, ops(p, b))

	want := []float64{math.Pi / 2, -math.Pi / 2, math.Pi / 4, -math.Pi / 4, math.Pi}

	for i, n := range b.Code[:5] {
		assert.InDelta(t, want[i], p.At(n).Theta, 1e-12, "gate %d", i)
	}
}

func TestHadamard(t *testing.T) {
	p, b := prog(t, 1)

	p.Gate(b, qir.H, 0)
	p.Return(b)

	err := Apply(context.Background(), p)
	require.NoError(t, err)

	require.Equal(t, []qir.Op{qir.Rz, qir.SX, qir.Rz, qir.Ret}, ops(p, b))
	assert.InDelta(t, math.Pi/2, p.At(b.Code[0]).Theta, 1e-12)
	assert.InDelta(t, math.Pi/2, p.At(b.Code[2]).Theta, 1e-12)
}

func TestSymbolicAngleSurvives(t *testing.T) {
	p, b := prog(t, 1)

	n := p.Rotation(b, qir.Ry, 0, 0)
	p.At(n).Sym = true
	p.Return(b)

	err := Apply(context.Background(), p)
	require.NoError(t, err)

	found := false

	for _, n := range b.Code {
		in := p.At(n)
		if in.Op == qir.Rz && in.Sym {
			found = true
		}
	}

	assert.True(t, found, "symbolic rz carries the sym mark through")
}

func TestMeasurePassesThrough(t *testing.T) {
	p, b := prog(t, 1)

	p.Measure(b, qir.MResetZ, 0, 0)
	p.Return(b)

	err := Apply(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, []qir.Op{qir.MResetZ, qir.Ret}, ops(p, b))
}

func TestUnsupportedOp(t *testing.T) {
	p, b := prog(t, 1)

	n := p.Append(b, qir.Instr{Op: qir.Move, Qubits: []qir.Qubit{0}})
	p.Return(b)

	err := Apply(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported), "got: %v", err)
	assert.Contains(t, err.Error(), fmt.Sprintf("node %d", n))
}
