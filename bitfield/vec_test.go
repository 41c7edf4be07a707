package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sux/testutil"
)

func TestMask(t *testing.T) {
	assert.Equal(t, uint64(0), Mask[uint64](0))
	assert.Equal(t, uint64(1), Mask[uint64](1))
	assert.Equal(t, uint64(0x1f), Mask[uint64](5))
	assert.Equal(t, ^uint64(0), Mask[uint64](64))
	assert.Equal(t, uint8(0xff), Mask[uint8](8))
	assert.Equal(t, uint16(0x7fff), Mask[uint16](15))
}

func TestNumWords(t *testing.T) {
	assert.Equal(t, 1, NumWords[uint64](0, 100))
	assert.Equal(t, 1, NumWords[uint64](5, 0))
	assert.Equal(t, 16, NumWords[uint64](5, 200))
	assert.Equal(t, 125, NumWords[uint8](5, 200))
}

func TestNewPanicsOnInvalidBitWidth(t *testing.T) {
	assert.Panics(t, func() { New[uint64](65, 1) })
	assert.Panics(t, func() { New[uint8](9, 1) })
	assert.Panics(t, func() { New[uint64](-1, 1) })
}

func TestRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(0)

	for _, bitWidth := range []int{1, 3, 5, 7, 8, 13, 31, 32, 33, 63, 64} {
		values := rng.Values(1000, bitWidth)
		v := New[uint64](bitWidth, len(values))
		for i, x := range values {
			v.Set(i, x)
		}
		for i, x := range values {
			require.Equal(t, x, v.Get(i), "width %d index %d", bitWidth, i)
		}
	}
}

func TestRoundTripSmallWords(t *testing.T) {
	rng := testutil.NewRNG(1)

	t.Run("uint8", func(t *testing.T) {
		values := rng.Values(300, 5)
		v := New[uint8](5, len(values))
		for i, x := range values {
			v.Set(i, uint8(x))
		}
		for i, x := range values {
			require.Equal(t, uint8(x), v.Get(i))
		}
	})

	t.Run("uint16", func(t *testing.T) {
		values := rng.Values(300, 11)
		v := New[uint16](11, len(values))
		for i, x := range values {
			v.Set(i, uint16(x))
		}
		for i, x := range values {
			require.Equal(t, uint16(x), v.Get(i))
		}
	})

	t.Run("uint32", func(t *testing.T) {
		values := rng.Values(300, 29)
		v := New[uint32](29, len(values))
		for i, x := range values {
			v.Set(i, uint32(x))
		}
		for i, x := range values {
			require.Equal(t, uint32(x), v.Get(i))
		}
	})
}

func TestCrossWord(t *testing.T) {
	v := New[uint64](5, 200)
	for i := range 200 {
		v.Set(i, uint64(i%32))
	}
	for i := range 200 {
		assert.Equal(t, uint64(i%32), v.Get(i))
	}

	// Values 12 and 25 straddle the first two word boundaries.
	v.Set(12, 31)
	v.Set(25, 0)
	assert.Equal(t, uint64(31), v.Get(12))
	assert.Equal(t, uint64(11), v.Get(11))
	assert.Equal(t, uint64(13), v.Get(13))
	assert.Equal(t, uint64(0), v.Get(25))
	assert.Equal(t, uint64(24), v.Get(24))
	assert.Equal(t, uint64(26), v.Get(26))
}

func TestOverwriteKeepsNeighbours(t *testing.T) {
	rng := testutil.NewRNG(2)
	values := rng.Values(500, 13)
	v := CopyFrom(13, values)

	for i := range values {
		x := rng.Uint64n(1 << 13)
		v.Set(i, x)
		values[i] = x
		if i > 0 {
			require.Equal(t, values[i-1], v.Get(i-1))
		}
		if i+1 < len(values) {
			require.Equal(t, values[i+1], v.Get(i+1))
		}
	}
	assert.Equal(t, values, Collect[uint64](v))
}

func TestZeroWidth(t *testing.T) {
	v := New[uint64](0, 10)

	assert.Equal(t, uint64(0), v.Mask())
	assert.Len(t, v.Words(), 1)
	for i := range 10 {
		assert.Equal(t, uint64(0), v.Get(i))
	}

	v.Set(3, 0)
	assert.Equal(t, uint64(0), v.Get(3))
	assert.Panics(t, func() { v.Set(3, 1) })

	n := 0
	for x := range v.Values() {
		assert.Equal(t, uint64(0), x)
		n++
	}
	assert.Equal(t, 10, n)
}

func TestEmpty(t *testing.T) {
	v := New[uint64](7, 0)

	assert.True(t, v.IsEmpty())
	assert.Len(t, v.Words(), 1)
	assert.Panics(t, func() { v.Get(0) })

	_, ok := v.Iter().Next()
	assert.False(t, ok)
}

func TestBoundsPanics(t *testing.T) {
	v := New[uint64](5, 3)

	assert.PanicsWithValue(t, "index out of bounds: 3 >= 3", func() { v.Get(3) })
	assert.PanicsWithValue(t, "index out of bounds: 3 >= 3", func() { v.Set(3, 1) })
	assert.PanicsWithValue(t, "value 32 does not fit in 5 bits (mask 0x1f)", func() { v.Set(0, 32) })
}

func TestScenario(t *testing.T) {
	v := New[uint64](5, 3)
	v.Set(0, 31)
	v.Set(1, 17)
	v.Set(2, 9)

	assert.Equal(t, []uint64{31, 17, 9}, Collect[uint64](v))

	var got []uint64
	for x := range v.ValuesFrom(1) {
		got = append(got, x)
	}
	assert.Equal(t, []uint64{17, 9}, got)

	assert.True(t, v.Contains(17))
	assert.False(t, v.Contains(18))
}

func TestRawParts(t *testing.T) {
	v := FromValues([]uint64{1, 2, 3, 4, 5})
	require.Equal(t, 3, v.BitWidth())

	data, bitWidth, length := v.IntoRawParts()
	w := FromRawParts(data, bitWidth, length)

	assert.Equal(t, uint64(7), w.Mask())
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, Collect[uint64](w))
}

func TestBorrowedWordsAlias(t *testing.T) {
	words := make([]uint64, 2)
	v := FromRawParts(words, 8, 16)

	v.Set(0, 0xab)
	v.Set(9, 0xcd)

	assert.Equal(t, uint64(0xab), words[0])
	assert.Equal(t, uint64(0xcd)<<8, words[1])
}

func TestCloneIsDeep(t *testing.T) {
	v := CopyFrom[uint64](4, []uint64{1, 2, 3})
	c := v.Clone()

	c.Set(0, 9)

	assert.Equal(t, uint64(1), v.Get(0))
	assert.Equal(t, uint64(9), c.Get(0))
	assert.False(t, v.Equal(c))

	c.Set(0, 1)
	assert.True(t, v.Equal(c))
}

func TestAll(t *testing.T) {
	values := []uint64{5, 0, 7, 3}
	v := CopyFrom(3, values)

	for i, x := range v.All() {
		assert.Equal(t, values[i], x)
	}

	n := 0
	for range v.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestBitWidthFor(t *testing.T) {
	assert.Equal(t, 0, BitWidthFor([]uint64{0, 0}))
	assert.Equal(t, 1, BitWidthFor([]uint64{1, 0}))
	assert.Equal(t, 10, BitWidthFor([]uint64{1000, 3}))
	assert.Equal(t, 64, BitWidthFor([]uint64{1 << 63}))
}

func BenchmarkGet(b *testing.B) {
	rng := testutil.NewRNG(0)
	v := CopyFrom(13, rng.Values(1<<16, 13))

	var sink uint64
	i := 0
	for b.Loop() {
		sink += v.Get(i & (1<<16 - 1))
		i++
	}
	_ = sink
}

func BenchmarkValues(b *testing.B) {
	rng := testutil.NewRNG(0)
	v := CopyFrom(13, rng.Values(1<<16, 13))

	var sink uint64
	for b.Loop() {
		for x := range v.Values() {
			sink += x
		}
	}
	_ = sink
}
