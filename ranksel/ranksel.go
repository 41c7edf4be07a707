// Package ranksel defines rank and select over bit vectors and provides
// implementations backed by a two-level rank directory and by roaring
// bitmaps.
//
// Rank(pos) is the number of ones in positions [0, pos). Select(r) is the
// position of the one of rank r, that is the position p holding a one with
// Rank(p) == r. RankZero and SelectZero are the same operations on zeros.
//
// Every Unchecked method assumes its argument is in range; the checked
// variants validate it first. The generic helpers RankOf, RankZeroOf,
// SelectOf and SelectZeroOf implement the checked variants on top of the
// unchecked ones.
package ranksel

// BitLength is implemented by structures exposing the length in bits of
// the underlying bit vector.
type BitLength interface {
	Len() int
}

// BitCount is implemented by structures exposing the number of ones.
type BitCount interface {
	Count() int
}

// RankCore is the unchecked rank primitive.
type RankCore interface {
	BitLength
	// RankUnchecked returns the number of ones before pos.
	// pos must be in [0, Len].
	RankUnchecked(pos int) int
}

// Rank counts the ones before a position.
type Rank interface {
	RankCore
	// Rank returns the number of ones before pos. Positions beyond Len are
	// clamped to Len.
	Rank(pos int) int
}

// RankZero counts the zeros before a position.
type RankZero interface {
	Rank
	RankZero(pos int) int
	RankZeroUnchecked(pos int) int
}

// SelectCore is the unchecked select primitive.
type SelectCore interface {
	BitCount
	// SelectUnchecked returns the position of the one of the given rank.
	// rank must be in [0, Count).
	SelectUnchecked(rank int) int
}

// Select finds the position of the one of a given rank.
type Select interface {
	SelectCore
	// Select returns the position of the one of the given rank, or false if
	// rank >= Count.
	Select(rank int) (int, bool)
}

// SelectZeroCore is the unchecked zero select primitive.
type SelectZeroCore interface {
	BitLength
	BitCount
	// SelectZeroUnchecked returns the position of the zero of the given
	// rank. rank must be in [0, Len-Count).
	SelectZeroUnchecked(rank int) int
}

// SelectZero finds the position of the zero of a given rank.
type SelectZero interface {
	SelectZeroCore
	SelectZero(rank int) (int, bool)
}

// SelectHinted is a select that can start from a known one.
type SelectHinted interface {
	Select
	// SelectHintedUnchecked returns the position of the one of the given
	// rank. pos must be the position of a one at or before the result, or
	// Len, and rankAtPos the number of ones before pos.
	SelectHintedUnchecked(rank, pos, rankAtPos int) int
	SelectHinted(rank, pos, rankAtPos int) (int, bool)
}

// SelectZeroHinted is a zero select that can start from a known zero.
type SelectZeroHinted interface {
	SelectZero
	// SelectZeroHintedUnchecked returns the position of the zero of the
	// given rank. pos must be the position of a zero at or before the
	// result, and rankAtPos the number of zeros before pos.
	SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int
	SelectZeroHinted(rank, pos, rankAtPos int) (int, bool)
}

// RankOf returns r.RankUnchecked(pos) with pos clamped to [0, Len].
func RankOf(r RankCore, pos int) int {
	return r.RankUnchecked(min(max(pos, 0), r.Len()))
}

// RankZeroOf returns the number of zeros before pos, computed as
// pos - Rank(pos).
func RankZeroOf(r Rank, pos int) int {
	return pos - r.Rank(pos)
}

// SelectOf returns s.SelectUnchecked(rank), or false if rank is not in
// [0, Count).
func SelectOf(s SelectCore, rank int) (int, bool) {
	if rank < 0 || rank >= s.Count() {
		return 0, false
	}
	return s.SelectUnchecked(rank), true
}

// SelectZeroOf returns s.SelectZeroUnchecked(rank), or false if rank is not
// in [0, Len-Count).
func SelectZeroOf(s SelectZeroCore, rank int) (int, bool) {
	if rank < 0 || rank >= s.Len()-s.Count() {
		return 0, false
	}
	return s.SelectZeroUnchecked(rank), true
}
