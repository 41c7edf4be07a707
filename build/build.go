package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sux/bitfield"
	"github.com/hupe1980/sux/ranksel"
	"github.com/hupe1980/sux/resource"
)

// DefaultChunkSize is the default number of values per task.
const DefaultChunkSize = 1 << 16

// checkEvery is how many values a worker writes between context checks.
const checkEvery = 4096

// ErrValueTooWide is returned when the generator yields a value that does
// not fit the bit width.
var ErrValueTooWide = errors.New("build: value does not fit bit width")

// ValueError reports the offending index and value.
type ValueError struct {
	Index    int
	Value    uint64
	BitWidth int
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("build: value %d at index %d does not fit in %d bits", e.Value, e.Index, e.BitWidth)
}

func (e *ValueError) Unwrap() error { return ErrValueTooWide }

// Options configures Fill.
type Options struct {
	// Workers bounds concurrent tasks. 0 uses the controller's worker
	// slots, or GOMAXPROCS without a controller.
	Workers int

	// ChunkSize is the number of values per task, rounded up to a word
	// boundary. Default: DefaultChunkSize.
	ChunkSize int

	// ResourceController, if set, accounts the vector's memory and gates
	// workers on its background slots.
	ResourceController *resource.Controller

	// Logger receives a debug record per fill. Default: discard.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = o.ResourceController.Workers()
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// chunkAlign returns the smallest number of values whose bits span whole
// words.
func chunkAlign(bitWidth int) int {
	if bitWidth == 0 {
		return 1
	}
	// 64 / gcd(bitWidth, 64)
	return 64 >> min(bits.TrailingZeros(uint(bitWidth)), 6)
}

// chunkSize rounds size up to a multiple of the word alignment.
func chunkSize(bitWidth, size int) int {
	a := chunkAlign(bitWidth)
	return (size + a - 1) / a * a
}

// Fill returns a vector of n values of bitWidth bits with value i equal to
// fn(i). fn is called concurrently from several goroutines, exactly once per
// index unless Fill fails. The first error from fn, a value wider than
// bitWidth, or the cancellation of ctx aborts the fill.
func Fill(ctx context.Context, bitWidth, n int, fn func(i int) (uint64, error), opts Options) (*bitfield.Vec[uint64], error) {
	if bitWidth < 0 || bitWidth > 64 {
		return nil, fmt.Errorf("build: bit width %d out of range [0, 64]", bitWidth)
	}
	if n < 0 {
		return nil, fmt.Errorf("build: negative length %d", n)
	}
	opts = opts.withDefaults()
	start := time.Now()

	bytes := int64(bitfield.NumWords[uint64](bitWidth, n)) * 8
	if err := opts.ResourceController.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	defer opts.ResourceController.ReleaseMemory(bytes)

	v := bitfield.NewAtomic(bitWidth, n)
	mask := v.Mask()
	size := chunkSize(bitWidth, opts.ChunkSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	chunks := 0
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		chunks++
		g.Go(func() error {
			if err := opts.ResourceController.AcquireBackground(gctx); err != nil {
				return err
			}
			defer opts.ResourceController.ReleaseBackground()

			for i := lo; i < hi; i++ {
				if (i-lo)%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				x, err := fn(i)
				if err != nil {
					return fmt.Errorf("build: index %d: %w", i, err)
				}
				if x&^mask != 0 {
					return &ValueError{Index: i, Value: x, BitWidth: bitWidth}
				}
				v.SetUnchecked(i, x, bitfield.Relaxed)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		opts.Logger.DebugContext(ctx, "fill failed", "bit_width", bitWidth, "len", n, "error", err)
		return nil, err
	}

	opts.Logger.DebugContext(ctx, "fill completed",
		"bit_width", bitWidth,
		"len", n,
		"chunks", chunks,
		"workers", opts.Workers,
		"duration", time.Since(start),
	)
	return v.ToVec(), nil
}

// FillBits builds a rank/select bit vector whose bit i is pred(i).
func FillBits(ctx context.Context, n int, pred func(i int) (bool, error), opts Options) (*ranksel.BitVec, error) {
	v, err := Fill(ctx, 1, n, func(i int) (uint64, error) {
		b, err := pred(i)
		if b {
			return 1, err
		}
		return 0, err
	}, opts)
	if err != nil {
		return nil, err
	}
	return ranksel.FromBitFieldVec(v)
}

// FromValues packs values in parallel using the narrowest bit width that
// holds their maximum.
func FromValues(ctx context.Context, values []uint64, opts Options) (*bitfield.Vec[uint64], error) {
	bitWidth := bitfield.BitWidthFor(values)
	return Fill(ctx, bitWidth, len(values), func(i int) (uint64, error) {
		return values[i], nil
	}, opts)
}
