package ranksel

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/hupe1980/sux/bitfield"
)

const (
	wordBits       = 64
	wordsPerBlock  = 8
	blockBits      = wordBits * wordsPerBlock
	superBits      = 1 << 16
	blocksPerSuper = superBits / blockBits
)

// ErrBitWidth is returned when a bit vector is built from a bit-field vector
// whose width is not 1.
var ErrBitWidth = errors.New("ranksel: bit width must be 1")

// BitVec is an immutable bit vector with a two-level rank directory.
//
// Every superblock of 65536 bits stores the absolute number of ones before
// it; every block of 512 bits stores the number of ones before it relative
// to its superblock. Rank reads one entry of each level and counts at most
// eight words; select binary searches the directory and finishes inside a
// word. The directory costs about 3.2% of the bit vector.
type BitVec struct {
	words  []uint64
	len    int
	count  int
	super  []uint64
	blocks []uint16
}

var (
	_ RankZero         = (*BitVec)(nil)
	_ SelectHinted     = (*BitVec)(nil)
	_ SelectZeroHinted = (*BitVec)(nil)
)

// NewBitVec builds the rank directory over the first length bits of words.
// The words are borrowed and must not be modified afterwards. Bits of the
// last word beyond length are ignored.
func NewBitVec(words []uint64, length int) *BitVec {
	if need := (length + wordBits - 1) / wordBits; length < 0 || need > len(words) {
		panic(fmt.Sprintf("ranksel: %d words cannot hold %d bits", len(words), length))
	}

	numWords := (length + wordBits - 1) / wordBits
	numBlocks := length/blockBits + 1
	numSuper := length/superBits + 1

	b := &BitVec{
		words:  words,
		len:    length,
		super:  make([]uint64, numSuper),
		blocks: make([]uint16, numBlocks),
	}

	total := 0
	for blk := range numBlocks {
		sb := blk / blocksPerSuper
		if blk%blocksPerSuper == 0 {
			b.super[sb] = uint64(total)
		}
		b.blocks[blk] = uint16(total - int(b.super[sb]))

		end := min((blk+1)*wordsPerBlock, numWords)
		for w := blk * wordsPerBlock; w < end; w++ {
			total += bits.OnesCount64(b.word(w))
		}
	}
	b.count = total
	return b
}

// FromBools builds a bit vector from a slice of booleans.
func FromBools(values []bool) *BitVec {
	words := make([]uint64, max(1, (len(values)+wordBits-1)/wordBits))
	for i, v := range values {
		if v {
			words[i/wordBits] |= 1 << (i % wordBits)
		}
	}
	return NewBitVec(words, len(values))
}

// FromBitFieldVec builds a bit vector over the words of a width-1 vector
// without copying them.
func FromBitFieldVec(v *bitfield.Vec[uint64]) (*BitVec, error) {
	if v.BitWidth() != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBitWidth, v.BitWidth())
	}
	return NewBitVec(v.Words(), v.Len()), nil
}

// ToBitFieldVec returns a width-1 vector sharing the words of b.
func (b *BitVec) ToBitFieldVec() *bitfield.Vec[uint64] {
	words := b.words
	if len(words) == 0 {
		words = make([]uint64, 1)
	}
	return bitfield.FromRawParts(words, 1, b.len)
}

// word returns the i-th word with the bits beyond Len cleared.
func (b *BitVec) word(i int) uint64 {
	w := b.words[i]
	if rem := b.len - i*wordBits; rem < wordBits {
		w &= (uint64(1) << rem) - 1
	}
	return w
}

// Len returns the number of bits.
func (b *BitVec) Len() int { return b.len }

// Count returns the number of ones.
func (b *BitVec) Count() int { return b.count }

// Words returns the underlying words.
func (b *BitVec) Words() []uint64 { return b.words }

// Get returns the bit at pos. It panics if pos is out of bounds.
func (b *BitVec) Get(pos int) bool {
	if pos < 0 || pos >= b.len {
		panic(fmt.Sprintf("index out of bounds: %d >= %d", pos, b.len))
	}
	return b.words[pos/wordBits]>>(pos%wordBits)&1 == 1
}

// Rank returns the number of ones before pos, clamping pos to Len.
func (b *BitVec) Rank(pos int) int { return RankOf(b, pos) }

// RankUnchecked returns the number of ones before pos. pos must be in
// [0, Len].
func (b *BitVec) RankUnchecked(pos int) int {
	w := pos / wordBits
	blk := pos / blockBits
	r := int(b.super[pos/superBits]) + int(b.blocks[blk])
	for i := blk * wordsPerBlock; i < w; i++ {
		r += bits.OnesCount64(b.words[i])
	}
	if bit := pos % wordBits; bit != 0 {
		r += bits.OnesCount64(b.words[w] & ((uint64(1) << bit) - 1))
	}
	return r
}

// RankZero returns the number of zeros before pos.
func (b *BitVec) RankZero(pos int) int { return RankZeroOf(b, pos) }

// RankZeroUnchecked returns the number of zeros before pos.
func (b *BitVec) RankZeroUnchecked(pos int) int { return pos - b.RankUnchecked(pos) }

// Select returns the position of the one of the given rank.
func (b *BitVec) Select(rank int) (int, bool) { return SelectOf(b, rank) }

// SelectUnchecked returns the position of the one of the given rank.
// rank must be in [0, Count).
func (b *BitVec) SelectUnchecked(rank int) int {
	sb := sort.Search(len(b.super), func(i int) bool {
		return int(b.super[i]) > rank
	}) - 1
	rank -= int(b.super[sb])

	lo := sb * blocksPerSuper
	hi := min(lo+blocksPerSuper, len(b.blocks))
	blk := lo + sort.Search(hi-lo, func(i int) bool {
		return int(b.blocks[lo+i]) > rank
	}) - 1
	rank -= int(b.blocks[blk])

	return b.scanOnes(blk*wordsPerBlock, rank)
}

// scanOnes returns the position of the one of the given rank counting from
// the start of word w.
func (b *BitVec) scanOnes(w, rank int) int {
	for {
		word := b.words[w]
		c := bits.OnesCount64(word)
		if rank < c {
			return w*wordBits + selectInWord(word, rank)
		}
		rank -= c
		w++
	}
}

// SelectHinted returns the position of the one of the given rank starting
// the search at pos, where rankAtPos ones precede pos.
func (b *BitVec) SelectHinted(rank, pos, rankAtPos int) (int, bool) {
	if rank < 0 || rank >= b.count {
		return 0, false
	}
	return b.SelectHintedUnchecked(rank, pos, rankAtPos), true
}

// SelectHintedUnchecked is SelectHinted without range checks. When the
// result lies beyond the superblock of the hint, the directory is used
// instead.
func (b *BitVec) SelectHintedUnchecked(rank, pos, rankAtPos int) int {
	if next := pos/superBits + 1; next < len(b.super) && int(b.super[next]) <= rank {
		return b.SelectUnchecked(rank)
	}
	w := pos / wordBits
	rank -= rankAtPos
	if bit := pos % wordBits; bit != 0 {
		rank += bits.OnesCount64(b.words[w] & ((uint64(1) << bit) - 1))
	}
	return b.scanOnes(w, rank)
}

// SelectZero returns the position of the zero of the given rank.
func (b *BitVec) SelectZero(rank int) (int, bool) { return SelectZeroOf(b, rank) }

// SelectZeroUnchecked returns the position of the zero of the given rank.
// rank must be in [0, Len-Count).
func (b *BitVec) SelectZeroUnchecked(rank int) int {
	sb := sort.Search(len(b.super), func(i int) bool {
		return i*superBits-int(b.super[i]) > rank
	}) - 1
	rank -= sb*superBits - int(b.super[sb])

	lo := sb * blocksPerSuper
	hi := min(lo+blocksPerSuper, len(b.blocks))
	blk := lo + sort.Search(hi-lo, func(i int) bool {
		return i*blockBits-int(b.blocks[lo+i]) > rank
	}) - 1
	rank -= (blk-lo)*blockBits - int(b.blocks[blk])

	return b.scanZeros(blk*wordsPerBlock, rank)
}

// scanZeros returns the position of the zero of the given rank counting
// from the start of word w.
func (b *BitVec) scanZeros(w, rank int) int {
	for {
		word := ^b.words[w]
		c := bits.OnesCount64(word)
		if rank < c {
			return w*wordBits + selectInWord(word, rank)
		}
		rank -= c
		w++
	}
}

// SelectZeroHinted returns the position of the zero of the given rank
// starting the search at pos, where rankAtPos zeros precede pos.
func (b *BitVec) SelectZeroHinted(rank, pos, rankAtPos int) (int, bool) {
	if rank < 0 || rank >= b.len-b.count {
		return 0, false
	}
	return b.SelectZeroHintedUnchecked(rank, pos, rankAtPos), true
}

// SelectZeroHintedUnchecked is SelectZeroHinted without range checks.
func (b *BitVec) SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int {
	if next := pos/superBits + 1; next < len(b.super) && next*superBits-int(b.super[next]) <= rank {
		return b.SelectZeroUnchecked(rank)
	}
	w := pos / wordBits
	rank -= rankAtPos
	if bit := pos % wordBits; bit != 0 {
		rank += bit - bits.OnesCount64(b.words[w]&((uint64(1)<<bit)-1))
	}
	return b.scanZeros(w, rank)
}

// selectInWord returns the position of the one of the given rank in word.
// rank must be less than the number of ones of word.
func selectInWord(word uint64, rank int) int {
	shift := 0
	for {
		c := bits.OnesCount8(uint8(word >> shift))
		if rank < c {
			break
		}
		rank -= c
		shift += 8
	}
	word >>= shift
	for range rank {
		word &= word - 1
	}
	return shift + bits.TrailingZeros64(word)
}
