// Package set has a small dense bitmap for operand-identity sets. Ids are
// non-negative and clustered near zero, so a few machine words cover a
// whole block.
package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

// Bitmap's zero value is an empty set ready to use.
type Bitmap struct {
	b  []uint64
	b0 [2]uint64
}

func (s *Bitmap) Set(i int) {
	i, j := ij(i)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s *Bitmap) IsSet(i int) bool {
	i, j := ij(i)

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Bitmap) SetAll(ids ...int) {
	for _, i := range ids {
		s.Set(i)
	}
}

// AnyOf reports whether any of the ids is in the set.
func (s *Bitmap) AnyOf(ids ...int) bool {
	for _, i := range ids {
		if s.IsSet(i) {
			return true
		}
	}

	return false
}

func (s *Bitmap) Size() (r int) {
	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

func (s *Bitmap) Range(f func(i int) bool) {
	for i, x := range s.b {
		if x == 0 {
			continue
		}

		for j := bits.TrailingZeros64(x); j < bits.Len64(x); j++ {
			if x&(1<<j) == 0 {
				continue
			}

			if !f(i*64 + j) {
				return
			}
		}
	}
}

func (s *Bitmap) Reset() {
	for i := range s.b {
		s.b[i] = 0
	}
}

func (s *Bitmap) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(i int) bool {
		b = e.AppendInt(b, i)

		return true
	})

	b = e.AppendBreak(b)

	return b
}

func ij(k int) (i, j int) {
	return k / 64, k % 64
}

func (s *Bitmap) grow(i int) {
	if s.b == nil {
		s.b = s.b0[:]
	}

	for i >= cap(s.b) {
		s.b = append(s.b[:cap(s.b)], 0)
	}

	s.b = s.b[:cap(s.b)]
}
