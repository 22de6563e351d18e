package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/qdk-sub000/compiler/qir"
)

func TestParse(t *testing.T) {
	p, err := parse("t", []byte(`
# bell pair
h 0
cx 0 1
m 0 0
m 1 1  # second result
`))
	require.NoError(t, err)

	f := p.EntryFunc()
	assert.Equal(t, 2, f.Qubits)
	assert.Equal(t, 2, f.Results)

	b := f.Blocks[0]

	// 4 listed + 2 output records + ret
	require.Len(t, b.Code, 7)

	assert.Equal(t, qir.H, p.At(b.Code[0]).Op)
	assert.Equal(t, qir.CX, p.At(b.Code[1]).Op)
	assert.Equal(t, []qir.Result{1}, p.At(b.Code[3]).Results)
	assert.Equal(t, qir.Output, p.At(b.Code[5]).Op)
	assert.Equal(t, qir.Ret, p.At(b.Code[6]).Op)
}

func TestParseAngle(t *testing.T) {
	p, err := parse("t", []byte("rz 1.5707963 0\n"))
	require.NoError(t, err)

	b := p.EntryFunc().Blocks[0]
	in := p.At(b.Code[0])

	assert.Equal(t, qir.Rz, in.Op)
	assert.InDelta(t, 1.5707963, in.Theta, 1e-9)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []string{
		"bad 0",
		"rz 0",
		"cx 0",
		"h x",
	} {
		_, err := parse("t", []byte(tc))
		assert.Error(t, err, "%q", tc)
	}
}
