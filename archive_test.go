package sux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sux/bitfield"
	"github.com/hupe1980/sux/blobstore"
	"github.com/hupe1980/sux/codec"
	"github.com/hupe1980/sux/persistence"
	"github.com/hupe1980/sux/ranksel"
	"github.com/hupe1980/sux/resource"
	"github.com/hupe1980/sux/testutil"
)

func openMemory(t *testing.T, opts ...Option) (*Archive, *blobstore.MemoryStore) {
	t.Helper()
	store := blobstore.NewMemoryStore()
	a, err := Open(context.Background(), store, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(0)

	for _, c := range []persistence.Compression{
		persistence.CompressionNone,
		persistence.CompressionLZ4,
		persistence.CompressionZSTD,
	} {
		t.Run(c.String(), func(t *testing.T) {
			a, _ := openMemory(t, WithCompression(c))

			for _, bitWidth := range []int{0, 1, 7, 33, 64} {
				name := fmt.Sprintf("w%d", bitWidth)
				v := bitfield.CopyFrom(bitWidth, rng.Values(1000, bitWidth))

				e, err := a.SaveVec(ctx, name, v)
				require.NoError(t, err)
				assert.Equal(t, KindVec, e.Kind)
				assert.Equal(t, bitWidth, e.BitWidth)
				assert.Equal(t, 1000, e.Len)
				assert.Equal(t, c.String(), e.Compression)
				assert.Positive(t, e.Size)

				got, err := a.LoadVec(ctx, name)
				require.NoError(t, err)
				assert.True(t, v.Equal(got), "width %d", bitWidth)
			}
		})
	}
}

func TestLocalStoreReopen(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())

	a, err := Open(ctx, store)
	require.NoError(t, err)

	v := bitfield.CopyFrom[uint64](12, []uint64{4095, 0, 17, 1024})
	_, err = a.SaveVec(ctx, "nested/ids", v)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(ctx, store)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.LoadVec(ctx, "nested/ids")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4095, 0, 17, 1024}, bitfield.Collect[uint64](got))
}

func TestReplaceRemovesOldBlob(t *testing.T) {
	ctx := context.Background()
	a, store := openMemory(t)

	first, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](3, []uint64{1, 2}))
	require.NoError(t, err)
	second, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](3, []uint64{7}))
	require.NoError(t, err)
	assert.NotEqual(t, first.Blob, second.Blob)

	names, err := store.List(ctx, "vec/")
	require.NoError(t, err)
	assert.Equal(t, []string{second.Blob}, names)

	got, err := a.LoadVec(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, uint64(7), got.Get(0))
}

func TestBitVec(t *testing.T) {
	ctx := context.Background()
	a, _ := openMemory(t)
	rng := testutil.NewRNG(1)

	b := ranksel.FromBools(rng.Bits(5000, 0.3))
	e, err := a.SaveBitVec(ctx, "bits", b)
	require.NoError(t, err)
	assert.Equal(t, KindBitVec, e.Kind)
	assert.Equal(t, b.Count(), e.Ones)
	assert.Equal(t, 1, e.BitWidth)

	got, err := a.LoadBitVec(ctx, "bits")
	require.NoError(t, err)
	assert.Equal(t, b.Count(), got.Count())
	for r := 0; r < b.Count(); r += 53 {
		want, _ := b.Select(r)
		pos, ok := got.Select(r)
		require.True(t, ok)
		require.Equal(t, want, pos)
	}

	_, err = a.SaveVec(ctx, "wide", bitfield.CopyFrom[uint64](5, []uint64{3}))
	require.NoError(t, err)
	_, err = a.LoadBitVec(ctx, "wide")
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestBuildVec(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: 2})
	a, _ := openMemory(t, WithResourceController(rc), WithBuildWorkers(4))

	const n = 100_000
	e, err := a.BuildVec(ctx, "squares", 40, n, func(i int) (uint64, error) {
		return uint64(i) * uint64(i), nil
	})
	require.NoError(t, err)
	assert.Equal(t, n, e.Len)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	v, err := a.LoadVec(ctx, "squares")
	require.NoError(t, err)
	for i := 0; i < n; i += 997 {
		require.Equal(t, uint64(i)*uint64(i), v.Get(i))
	}

	boom := errors.New("boom")
	_, err = a.BuildVec(ctx, "bad", 8, 10, func(i int) (uint64, error) {
		if i == 5 {
			return 0, boom
		}
		return 1, nil
	})
	require.ErrorIs(t, err, boom)
	_, err = a.Stat("bad")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	a, store := openMemory(t)

	e, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](2, []uint64{1, 2, 3}))
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, "v"))

	_, err = a.LoadVec(ctx, "v")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Open(ctx, e.Blob)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	err = a.Delete(ctx, "v")
	assert.ErrorIs(t, err, ErrNotFound)
	var ee *EntryError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "delete", ee.Op)
	assert.Equal(t, "v", ee.Name)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	a, _ := openMemory(t)

	for _, name := range []string{"b/2", "a", "b/1", "c"} {
		_, err := a.SaveVec(ctx, name, bitfield.New[uint64](1, 1))
		require.NoError(t, err)
	}

	all, err := a.List("")
	require.NoError(t, err)
	var names []string
	for _, e := range all {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "b/1", "b/2", "c"}, names)

	sub, err := a.List("b/")
	require.NoError(t, err)
	assert.Len(t, sub, 2)

	none, err := a.List("zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	a, _ := openMemory(t)
	v := bitfield.New[uint64](1, 1)

	for _, name := range []string{"", ".", "../x", "/abs", "a//b", "a/./b"} {
		_, err := a.SaveVec(ctx, name, v)
		assert.ErrorIs(t, err, ErrInvalidName, "%q", name)
	}
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	a, _ := openMemory(t)
	_, err := a.SaveVec(ctx, "v", bitfield.New[uint64](1, 1))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.SaveVec(ctx, "w", bitfield.New[uint64](1, 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.LoadVec(ctx, "v")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.List("")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Delete(ctx, "v"), ErrClosed)
	assert.ErrorIs(t, a.Reload(ctx), ErrClosed)
}

func TestPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	a, err := Open(ctx, store, WithPrefix("tenant-a"))
	require.NoError(t, err)
	b, err := Open(ctx, store, WithPrefix("tenant-b"))
	require.NoError(t, err)

	_, err = a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{9}))
	require.NoError(t, err)

	_, err = b.Stat("v")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "tenant-a/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	writer, err := Open(ctx, store)
	require.NoError(t, err)
	reader, err := Open(ctx, store)
	require.NoError(t, err)

	_, err = writer.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{9}))
	require.NoError(t, err)

	_, err = reader.Stat("v")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, reader.Reload(ctx))
	e, err := reader.Stat("v")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Len)
}

func TestCatalogCodecRecorded(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	a, err := Open(ctx, store, WithCodec(codec.JSON{}))
	require.NoError(t, err)
	_, err = a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{9}))
	require.NoError(t, err)

	blob, err := store.Open(ctx, "catalog")
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("json\n")))

	b, err := Open(ctx, store, WithCodec(codec.GoJSON{}))
	require.NoError(t, err)
	_, err = b.Stat("v")
	require.NoError(t, err)
}

func TestCorruption(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "catalog", []byte("no codec line")))
		_, err := Open(ctx, store)
		assert.ErrorIs(t, err, ErrCorrupt)

		require.NoError(t, store.Put(ctx, "catalog", []byte("yaml\n{}")))
		_, err = Open(ctx, store)
		assert.ErrorIs(t, err, ErrCorrupt)

		require.NoError(t, store.Put(ctx, "catalog", []byte(`json
{"version":99}`)))
		_, err = Open(ctx, store)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("vector", func(t *testing.T) {
		a, store := openMemory(t)
		e, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{9}))
		require.NoError(t, err)

		require.NoError(t, store.Put(ctx, e.Blob, bytes.Repeat([]byte{'x'}, 256)))
		_, err = a.LoadVec(ctx, "v")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		a, store := openMemory(t)
		e, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{9}))
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = persistence.WriteVec(&buf, bitfield.CopyFrom[uint64](4, []uint64{9, 9}), persistence.CompressionNone)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, e.Blob, buf.Bytes()))

		_, err = a.LoadVec(ctx, "v")
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

// failingPutStore fails every catalog write after the first n.
type failingPutStore struct {
	*blobstore.MemoryStore
	mu   sync.Mutex
	left int
}

func (s *failingPutStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.left == 0 {
		return errors.New("put refused")
	}
	s.left--
	return s.MemoryStore.Put(ctx, name, data)
}

func TestFailedCommitKeepsPreviousVersion(t *testing.T) {
	ctx := context.Background()
	store := &failingPutStore{MemoryStore: blobstore.NewMemoryStore(), left: 1}

	a, err := Open(ctx, store)
	require.NoError(t, err)

	first, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{1}))
	require.NoError(t, err)

	_, err = a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{2}))
	require.Error(t, err)
	_, err = a.SaveVec(ctx, "w", bitfield.CopyFrom[uint64](4, []uint64{3}))
	require.Error(t, err)

	e, err := a.Stat("v")
	require.NoError(t, err)
	assert.Equal(t, first.Blob, e.Blob)
	_, err = a.Stat("w")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "vec/")
	require.NoError(t, err)
	assert.Equal(t, []string{first.Blob}, names)

	got, err := a.LoadVec(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Get(0))
}

func TestLoadMemoryLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	a, _ := openMemory(t, WithResourceController(rc))

	_, err := a.SaveVec(ctx, "small", bitfield.New[uint64](8, 64))
	require.NoError(t, err)
	_, err = a.SaveVec(ctx, "big", bitfield.New[uint64](64, 64))
	require.NoError(t, err)

	_, err = a.LoadVec(ctx, "small")
	require.NoError(t, err)
	_, err = a.LoadVec(ctx, "big")
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	a, store := openMemory(t)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 10 {
				_, err := a.SaveVec(ctx, fmt.Sprintf("v%d", w), bitfield.CopyFrom[uint64](8, []uint64{uint64(i)}))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	entries, err := a.List("")
	require.NoError(t, err)
	assert.Len(t, entries, 8)
	names, err := store.List(ctx, "vec/")
	require.NoError(t, err)
	assert.Len(t, names, 8)

	for w := range 8 {
		v, err := a.LoadVec(ctx, fmt.Sprintf("v%d", w))
		require.NoError(t, err)
		assert.Equal(t, uint64(9), v.Get(0))
	}
}

func TestMetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	var logs bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a, _ := openMemory(t, WithMetricsCollector(metrics), WithLogger(logger))

	e, err := a.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{1, 2}))
	require.NoError(t, err)
	_, err = a.LoadVec(ctx, "v")
	require.NoError(t, err)
	_, err = a.LoadVec(ctx, "missing")
	require.Error(t, err)
	require.NoError(t, a.Delete(ctx, "v"))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SaveCount)
	assert.Equal(t, e.Size, stats.SaveBytes)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, e.Size, stats.LoadBytes)
	assert.Equal(t, int64(1), stats.DeleteCount)

	out := logs.String()
	assert.Contains(t, out, `"msg":"save completed"`)
	assert.Contains(t, out, `"msg":"load failed"`)
	assert.Contains(t, out, `"msg":"catalog commit"`)
}

func TestReloadThroughCachingStore(t *testing.T) {
	ctx := context.Background()
	shared := blobstore.NewMemoryStore()

	writer, err := Open(ctx, shared)
	require.NoError(t, err)
	_, err = writer.SaveVec(ctx, "v", bitfield.CopyFrom[uint64](4, []uint64{9}))
	require.NoError(t, err)

	cache := blobstore.NewLRUBlockCache(1<<20, nil)
	reader, err := Open(ctx, blobstore.NewCachingStore(shared, cache, 16))
	require.NoError(t, err)

	// Another process rewrites the catalog behind the reader's cache.
	for _, name := range []string{"w", "x", "y"} {
		_, err = writer.SaveVec(ctx, name, bitfield.CopyFrom[uint64](4, []uint64{1}))
		require.NoError(t, err)
	}

	require.NoError(t, reader.Reload(ctx))
	entries, err := reader.List("")
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	got, err := reader.LoadVec(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Get(0))
}
