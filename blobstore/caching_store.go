package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the CachingStore block size when none is given.
const DefaultBlockSize = 64 * 1024

// CachingStore wraps a BlobStore and caches read blocks.
// Writes pass through and invalidate the blocks of the written blob.
type CachingStore struct {
	inner     BlobStore
	cache     BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultBlockSize if <= 0.
func NewCachingStore(inner BlobStore, cache BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     cache,
		blockSize: blockSize,
	}
}

// Inner returns the wrapped store.
func (s *CachingStore) Inner() BlobStore {
	return s.inner
}

// Uncached returns s with every CachingStore layer removed. Blobs that other
// processes overwrite in place must be read through it, since cached blocks
// are only invalidated by writes made through the same CachingStore.
func Uncached(s BlobStore) BlobStore {
	for {
		c, ok := s.(*CachingStore)
		if !ok {
			return s
		}
		s = c.inner
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{WritableBlob: w, cache: s.cache, name: name}, nil
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	defer s.cache.Invalidate(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	defer s.cache.Invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type invalidatingWriter struct {
	WritableBlob
	cache BlockCache
	name  string
}

func (w *invalidatingWriter) Close() error {
	defer w.cache.Invalidate(w.name)
	return w.WritableBlob.Close()
}

func (w *invalidatingWriter) Abort() error {
	return Abort(w.WritableBlob)
}

// CachingBlob wraps a Blob and serves reads from the block cache.
type CachingBlob struct {
	inner     Blob
	cache     BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, ErrInvalidRange
	}

	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), size)

	startBlock := off / b.blockSize
	endBlock := (end - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize
		lo := max(blkStart, off)
		hi := min(blkStart+b.blockSize, end)

		data, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return total, err
		}

		src := lo - blkStart
		if src >= int64(len(data)) {
			break
		}
		total += copy(p[lo-off:hi-off], data[src:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache loads the missing blocks in [startBlock, endBlock], fetching
// each contiguous run of misses with a single backend read.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct{ start, count int64 }
	var missing []run

	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(BlockKey{Name: b.name, Block: blk}); ok {
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
		} else {
			missing = append(missing, run{blk, 1})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	size := b.Size()
	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := min(r.count*b.blockSize, size-byteStart)
			if byteSize <= 0 {
				return nil
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(ctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := range r.count {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Copy so a cached block does not pin the whole run.
				block := make([]byte, hi-lo)
				copy(block, buf[lo:hi])
				b.cache.Set(BlockKey{Name: b.name, Block: r.start + i}, block)
			}
			return nil
		})
	}
	return g.Wait()
}

// fetchBlock returns a block from the cache, reading it through when the
// cache declined to keep it.
func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(BlockKey{Name: b.name, Block: blk}); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	n, err := clampRange(b.Size(), off, length)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(&blobReader{ctx: ctx, blob: b, off: off, limit: off + n}), nil
}

// blobReader adapts a Blob range to io.Reader.
type blobReader struct {
	ctx   context.Context
	blob  Blob
	off   int64
	limit int64
}

func (r *blobReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}
