package blobstore

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sux/resource"
)

// countingStore wraps a MemoryStore and counts backend reads.
type countingStore struct {
	*MemoryStore
	mu        sync.Mutex
	reads     int
	readBytes int
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, store: s}, nil
}

type countingBlob struct {
	Blob
	store *countingStore
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	n, err := b.Blob.ReadAt(ctx, p, off)
	b.store.mu.Lock()
	b.store.reads++
	b.store.readBytes += n
	b.store.mu.Unlock()
	return n, err
}

func newCountingStore(t *testing.T, name string, data []byte) *countingStore {
	t.Helper()
	s := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, s.Put(context.Background(), name, data))
	return s
}

func TestCachingStore_ReadAt(t *testing.T) {
	ctx := context.Background()
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 251)
	}

	inner := newCountingStore(t, "test", data)
	store := NewCachingStore(inner, NewLRUBlockCache(1<<20, nil), 256)

	blob, err := store.Open(ctx, "test")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 100)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[:100], buf)
	assert.Equal(t, 1, inner.reads)
	assert.Equal(t, 256, inner.readBytes)

	// Cached.
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads)

	// Spans block 0 (cached) and block 1 (missing).
	n, err = blob.ReadAt(ctx, buf, 200)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[200:300], buf)
	assert.Equal(t, 2, inner.reads)
	assert.Equal(t, 512, inner.readBytes)

	_, err = blob.ReadAt(ctx, buf, 260)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.reads)
}

func TestCachingStore_CoalescesMisses(t *testing.T) {
	ctx := context.Background()
	data := make([]byte, 1000)
	inner := newCountingStore(t, "big", data)
	store := NewCachingStore(inner, NewLRUBlockCache(1<<20, nil), 100)

	blob, err := store.Open(ctx, "big")
	require.NoError(t, err)

	buf := make([]byte, 1000)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, 1, inner.reads)
}

func TestCachingStore_ShortRead(t *testing.T) {
	ctx := context.Background()
	data := []byte("hello")
	store := NewCachingStore(newCountingStore(t, "small", data), NewLRUBlockCache(1024, nil), 256)

	blob, err := store.Open(ctx, "small")
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := blob.ReadAt(ctx, buf, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, n)
	assert.Equal(t, data, buf[:n])

	_, err = blob.ReadAt(ctx, buf, 5)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCachingStore_ReadRange(t *testing.T) {
	ctx := context.Background()
	data := []byte("0123456789abcdef")
	store := NewCachingStore(newCountingStore(t, "r", data), NewLRUBlockCache(1024, nil), 4)

	blob, err := store.Open(ctx, "r")
	require.NoError(t, err)

	r, err := blob.ReadRange(ctx, 3, 9)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "3456789ab", string(got))
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(1024, nil)
	store := NewCachingStore(NewMemoryStore(), c, 4)

	require.NoError(t, store.Put(ctx, "x", []byte("old!")))
	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	w, err := store.Create(ctx, "x")
	require.NoError(t, err)
	_, err = w.Write([]byte("new!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, 0, c.Len())

	blob, err = store.Open(ctx, "x")
	require.NoError(t, err)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "new!", string(buf))
}

func TestLRUBlockCache_Evicts(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewLRUBlockCache(10, rc)

	c.Set(BlockKey{"a", 0}, make([]byte, 4))
	c.Set(BlockKey{"a", 1}, make([]byte, 4))
	_, ok := c.Get(BlockKey{"a", 0})
	require.True(t, ok)

	// Evicts block 1, the least recently used.
	c.Set(BlockKey{"b", 0}, make([]byte, 4))
	_, ok = c.Get(BlockKey{"a", 1})
	assert.False(t, ok)
	assert.Equal(t, int64(8), c.Size())
	assert.Equal(t, int64(8), rc.MemoryUsage())

	// Too large to cache.
	c.Set(BlockKey{"c", 0}, make([]byte, 11))
	_, ok = c.Get(BlockKey{"c", 0})
	assert.False(t, ok)

	c.Invalidate("a")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(4), rc.MemoryUsage())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestLRUBlockCache_RespectsController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 6})
	c := NewLRUBlockCache(100, rc)

	c.Set(BlockKey{"a", 0}, make([]byte, 4))
	c.Set(BlockKey{"a", 1}, make([]byte, 4))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(4), rc.MemoryUsage())
}

func TestUncached(t *testing.T) {
	mem := NewMemoryStore()
	cache := NewLRUBlockCache(1<<20, nil)
	layered := NewCachingStore(NewCachingStore(mem, cache, 16), cache, 16)

	assert.Same(t, mem, Uncached(layered))
	assert.Same(t, mem, Uncached(mem))
	assert.Same(t, mem, NewCachingStore(mem, cache, 0).Inner())
}
