package ranksel

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrOutOfRange is returned when a bitmap holds positions beyond the
// declared length.
var ErrOutOfRange = errors.New("ranksel: position out of range")

// Roaring exposes a roaring bitmap of fixed length as a rank/select
// structure. The bitmap must not be modified while it is wrapped.
type Roaring struct {
	bm  *roaring.Bitmap
	len int
}

var (
	_ RankZero         = (*Roaring)(nil)
	_ SelectHinted     = (*Roaring)(nil)
	_ SelectZeroHinted = (*Roaring)(nil)
)

// NewRoaring wraps bm as a bit vector of length bits.
func NewRoaring(bm *roaring.Bitmap, length int) (*Roaring, error) {
	if length < 0 || uint64(length) > 1<<32 {
		return nil, fmt.Errorf("%w: length %d", ErrOutOfRange, length)
	}
	if !bm.IsEmpty() && int(bm.Maximum()) >= length {
		return nil, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, bm.Maximum(), length)
	}
	return &Roaring{bm: bm, len: length}, nil
}

// RoaringFromBitVec copies the ones of b into a new roaring bitmap.
func RoaringFromBitVec(b *BitVec) (*Roaring, error) {
	bm := roaring.New()
	for w, word := range b.words {
		for word != 0 {
			pos := w*wordBits + bits.TrailingZeros64(word)
			if pos >= b.len {
				break
			}
			bm.Add(uint32(pos))
			word &= word - 1
		}
	}
	return NewRoaring(bm, b.len)
}

// Bitmap returns the wrapped bitmap.
func (r *Roaring) Bitmap() *roaring.Bitmap { return r.bm }

// Len returns the number of bits.
func (r *Roaring) Len() int { return r.len }

// Count returns the number of ones.
func (r *Roaring) Count() int { return int(r.bm.GetCardinality()) }

// Rank returns the number of ones before pos, clamping pos to Len.
func (r *Roaring) Rank(pos int) int { return RankOf(r, pos) }

// RankUnchecked returns the number of ones before pos.
func (r *Roaring) RankUnchecked(pos int) int {
	if pos == 0 {
		return 0
	}
	return int(r.bm.Rank(uint32(pos - 1)))
}

// RankZero returns the number of zeros before pos.
func (r *Roaring) RankZero(pos int) int { return RankZeroOf(r, pos) }

// RankZeroUnchecked returns the number of zeros before pos.
func (r *Roaring) RankZeroUnchecked(pos int) int { return pos - r.RankUnchecked(pos) }

// Select returns the position of the one of the given rank.
func (r *Roaring) Select(rank int) (int, bool) { return SelectOf(r, rank) }

// SelectUnchecked returns the position of the one of the given rank.
func (r *Roaring) SelectUnchecked(rank int) int {
	pos, err := r.bm.Select(uint32(rank))
	if err != nil {
		panic(fmt.Sprintf("ranksel: select %d: %v", rank, err))
	}
	return int(pos)
}

// SelectHinted ignores the hint and returns Select(rank).
func (r *Roaring) SelectHinted(rank, _, _ int) (int, bool) { return r.Select(rank) }

// SelectHintedUnchecked ignores the hint and returns SelectUnchecked(rank).
func (r *Roaring) SelectHintedUnchecked(rank, _, _ int) int { return r.SelectUnchecked(rank) }

// SelectZero returns the position of the zero of the given rank.
func (r *Roaring) SelectZero(rank int) (int, bool) { return SelectZeroOf(r, rank) }

// SelectZeroUnchecked returns the position of the zero of the given rank by
// binary search over RankZero.
func (r *Roaring) SelectZeroUnchecked(rank int) int {
	return sort.Search(r.len, func(p int) bool {
		return r.RankZeroUnchecked(p+1) > rank
	})
}

// SelectZeroHinted searches only from pos onwards.
func (r *Roaring) SelectZeroHinted(rank, pos, rankAtPos int) (int, bool) {
	if rank < 0 || rank >= r.len-r.Count() {
		return 0, false
	}
	return r.SelectZeroHintedUnchecked(rank, pos, rankAtPos), true
}

// SelectZeroHintedUnchecked searches only from pos onwards.
func (r *Roaring) SelectZeroHintedUnchecked(rank, pos, _ int) int {
	return pos + sort.Search(r.len-pos, func(i int) bool {
		return r.RankZeroUnchecked(pos+i+1) > rank
	})
}
