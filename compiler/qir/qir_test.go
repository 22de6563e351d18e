package qir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockEdit(t *testing.T) {
	p := New("test")
	f := p.NewFunc("main", 2, 0)
	b := f.Blocks[0]

	h := p.Gate(b, H, 0)
	cz := p.Gate(b, CZ, 0, 1)
	ret := p.Return(b)

	require.Equal(t, []Node{h, cz, ret}, b.Code)

	x, err := p.InsertBefore(b, cz, Instr{Op: X, Qubits: []Qubit{1}})
	require.NoError(t, err)
	assert.Equal(t, []Node{h, x, cz, ret}, b.Code)

	p.Remove(b, x)
	assert.Equal(t, []Node{h, cz, ret}, b.Code)
	assert.True(t, p.Alive(x), "removed node stays referenceable")
	assert.Equal(t, X, p.At(x).Op)

	err = p.Reinsert(b, h, x)
	require.NoError(t, err)
	assert.Equal(t, []Node{x, h, cz, ret}, b.Code)

	p.Erase(b, h)
	assert.Equal(t, []Node{x, cz, ret}, b.Code)
	assert.False(t, p.Alive(h))
}

func TestInsertBeforeDetached(t *testing.T) {
	p := New("test")
	f := p.NewFunc("main", 1, 0)
	b := f.Blocks[0]

	h := p.Gate(b, H, 0)
	p.Remove(b, h)

	_, err := p.InsertBefore(b, h, Instr{Op: X, Qubits: []Qubit{0}})
	assert.Error(t, err)
}

func TestDecls(t *testing.T) {
	p := New("test")
	f := p.NewFunc("main", 1, 0)
	b := f.Blocks[0]

	h := p.Gate(b, H, 0)
	p.Gate(b, SX, 0)

	assert.True(t, p.Declared(H))
	assert.True(t, p.Declared(SX))

	p.Erase(b, h)
	p.PruneDecls()

	assert.False(t, p.Declared(H))
	assert.True(t, p.Declared(SX))
}

func TestOpProperties(t *testing.T) {
	assert.Equal(t, 2, CZ.Arity())
	assert.Equal(t, 3, CCX.Arity())
	assert.Equal(t, 1, Rz.Arity())

	assert.True(t, Rz.HasAngle())
	assert.False(t, SX.HasAngle())

	assert.True(t, CZ.Symmetric())
	assert.False(t, CX.Symmetric())

	assert.True(t, Ret.Terminator())

	op, ok := OpByName("mresetz")
	require.True(t, ok)
	assert.Equal(t, MResetZ, op)

	_, ok = OpByName("bogus")
	assert.False(t, ok)
}

func TestTerminator(t *testing.T) {
	p := New("test")
	f := p.NewFunc("main", 1, 0)
	b := f.Blocks[0]

	assert.Equal(t, NoNode, p.Terminator(b))

	p.Gate(b, H, 0)
	assert.Equal(t, NoNode, p.Terminator(b))

	ret := p.Return(b)
	assert.Equal(t, ret, p.Terminator(b))
}
