package ranksel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sux/bitfield"
	"github.com/hupe1980/sux/testutil"
)

// naive precomputes every rank and select answer.
type naive struct {
	ranks []int
	ones  []int
	zeros []int
}

func newNaive(bits []bool) *naive {
	n := &naive{ranks: make([]int, len(bits)+1)}
	for i, b := range bits {
		n.ranks[i+1] = n.ranks[i]
		if b {
			n.ranks[i+1]++
			n.ones = append(n.ones, i)
		} else {
			n.zeros = append(n.zeros, i)
		}
	}
	return n
}

func (n *naive) rank(pos int) int {
	return n.ranks[pos]
}

func TestBitVecAgainstNaive(t *testing.T) {
	rng := testutil.NewRNG(0)

	tests := []struct {
		name    string
		length  int
		density float64
	}{
		{"empty", 0, 0.5},
		{"one word", 64, 0.5},
		{"partial word", 100, 0.5},
		{"block boundary", 512, 0.3},
		{"sparse", 5000, 0.01},
		{"dense", 5000, 0.99},
		{"all zeros", 3000, 0},
		{"all ones", 3000, 1},
		{"two superblocks", 1<<16 + 777, 0.5},
		{"superblock boundary", 1 << 17, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits := rng.Bits(tt.length, tt.density)
			n := newNaive(bits)
			b := FromBools(bits)

			require.Equal(t, tt.length, b.Len())
			require.Equal(t, len(n.ones), b.Count())

			step := max(1, tt.length/2000)
			for pos := 0; pos <= tt.length; pos += step {
				require.Equal(t, n.rank(pos), b.Rank(pos), "rank %d", pos)
				require.Equal(t, pos-n.rank(pos), b.RankZero(pos), "rank zero %d", pos)
			}
			assert.Equal(t, len(n.ones), b.Rank(tt.length))

			for r, pos := range n.ones {
				got, ok := b.Select(r)
				require.True(t, ok)
				require.Equal(t, pos, got, "select %d", r)
			}
			for r, pos := range n.zeros {
				got, ok := b.SelectZero(r)
				require.True(t, ok)
				require.Equal(t, pos, got, "select zero %d", r)
			}

			_, ok := b.Select(len(n.ones))
			assert.False(t, ok)
			_, ok = b.SelectZero(len(n.zeros))
			assert.False(t, ok)
		})
	}
}

func TestRankClamps(t *testing.T) {
	b := FromBools([]bool{true, false, true})

	assert.Equal(t, 2, b.Rank(100))
	assert.Equal(t, 0, b.Rank(-5))
}

func TestRankZeroBeyondLen(t *testing.T) {
	b := FromBools([]bool{true, false, true})

	// pos - Rank(pos), with Rank clamped and pos not.
	assert.Equal(t, 8, b.RankZero(10))
}

func TestInverseLaw(t *testing.T) {
	rng := testutil.NewRNG(1)
	b := FromBools(rng.Bits(200000, 0.4))

	for r := 0; r < b.Count(); r += 97 {
		pos, ok := b.Select(r)
		require.True(t, ok)
		require.Equal(t, r, b.Rank(pos))
		require.True(t, b.Get(pos))
	}

	for r := 0; r < b.Len()-b.Count(); r += 89 {
		pos, ok := b.SelectZero(r)
		require.True(t, ok)
		require.Equal(t, r, b.RankZero(pos))
		require.False(t, b.Get(pos))
	}
}

func TestSelectHinted(t *testing.T) {
	rng := testutil.NewRNG(2)
	bits := rng.Bits(150000, 0.3)
	b := FromBools(bits)
	n := newNaive(bits)

	for _, hint := range []int{0, 1, 100, 5000, len(n.ones) / 2} {
		pos := n.ones[hint]
		for r := hint; r < len(n.ones); r += 503 {
			got, ok := b.SelectHinted(r, pos, hint)
			require.True(t, ok)
			require.Equal(t, n.ones[r], got, "hint %d rank %d", hint, r)
		}
	}

	for _, hint := range []int{0, 7, 3000, len(n.zeros) / 3} {
		pos := n.zeros[hint]
		for r := hint; r < len(n.zeros); r += 701 {
			got, ok := b.SelectZeroHinted(r, pos, hint)
			require.True(t, ok)
			require.Equal(t, n.zeros[r], got, "hint %d rank %d", hint, r)
		}
	}

	_, ok := b.SelectHinted(len(n.ones), 0, 0)
	assert.False(t, ok)
	_, ok = b.SelectZeroHinted(len(n.zeros), 0, 0)
	assert.False(t, ok)
}

func TestTrailingBitsIgnored(t *testing.T) {
	b := NewBitVec([]uint64{^uint64(0)}, 10)

	assert.Equal(t, 10, b.Count())
	assert.Equal(t, 10, b.Rank(64))
	_, ok := b.Select(10)
	assert.False(t, ok)
	_, ok = b.SelectZero(0)
	assert.False(t, ok)
}

func TestFromBitFieldVec(t *testing.T) {
	v := bitfield.New[uint64](1, 130)
	v.Set(0, 1)
	v.Set(64, 1)
	v.Set(129, 1)

	b, err := FromBitFieldVec(v)
	require.NoError(t, err)

	assert.Equal(t, 3, b.Count())
	pos, ok := b.Select(2)
	require.True(t, ok)
	assert.Equal(t, 129, pos)
	assert.Same(t, &v.Words()[0], &b.Words()[0])

	back := b.ToBitFieldVec()
	assert.True(t, v.Equal(back))

	_, err = FromBitFieldVec(bitfield.New[uint64](2, 10))
	assert.ErrorIs(t, err, ErrBitWidth)
}

func TestSelectInWord(t *testing.T) {
	word := uint64(0b1011_0000_0000_0001) | 1<<63
	assert.Equal(t, 0, selectInWord(word, 0))
	assert.Equal(t, 12, selectInWord(word, 1))
	assert.Equal(t, 13, selectInWord(word, 2))
	assert.Equal(t, 15, selectInWord(word, 3))
	assert.Equal(t, 63, selectInWord(word, 4))
}

func BenchmarkRank(b *testing.B) {
	rng := testutil.NewRNG(0)
	bv := FromBools(rng.Bits(1<<20, 0.5))

	var sink int
	i := 0
	for b.Loop() {
		sink += bv.Rank(i & (1<<20 - 1))
		i += 7919
	}
	_ = sink
}

func BenchmarkSelect(b *testing.B) {
	rng := testutil.NewRNG(0)
	bv := FromBools(rng.Bits(1<<20, 0.5))
	count := bv.Count()

	var sink int
	i := 0
	for b.Loop() {
		pos, _ := bv.Select(i % count)
		sink += pos
		i += 7919
	}
	_ = sink
}
