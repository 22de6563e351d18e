package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	var s Bitmap

	assert.False(t, s.IsSet(0))
	assert.False(t, s.AnyOf(3, 200))

	s.SetAll(0, 3, 200)

	assert.True(t, s.IsSet(0))
	assert.True(t, s.IsSet(200))
	assert.False(t, s.IsSet(100))
	assert.True(t, s.AnyOf(100, 3))
	assert.Equal(t, 3, s.Size())

	var got []int

	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	assert.Equal(t, []int{0, 3, 200}, got)

	s.Reset()
	assert.Equal(t, 0, s.Size())
}
