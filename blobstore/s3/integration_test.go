package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sux/blobstore"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test-sux-%d/", time.Now().UnixNano())

	store, err := New(ctx, bucket, WithPrefix(prefix))
	require.NoError(t, err)

	t.Run("Create and Read", func(t *testing.T) {
		name := "test.sux"
		data := make([]byte, 1024*1024)
		_, _ = rand.Read(data)

		w, err := store.Create(ctx, name)
		require.NoError(t, err)
		n, err := w.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		require.NoError(t, w.Close())

		blobs, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, blobs, name)

		r, err := store.Open(ctx, name)
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, int64(len(data)), r.Size())

		buf := make([]byte, 100)
		n, err = r.ReadAt(ctx, buf, 1024)
		require.NoError(t, err)
		assert.Equal(t, 100, n)
		assert.Equal(t, data[1024:1124], buf)

		rc, err := r.ReadRange(ctx, 0, int64(len(data)))
		require.NoError(t, err)
		all, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, data, all)

		require.NoError(t, store.Delete(ctx, name))
	})

	t.Run("Put", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "small.sux", []byte("small")))
		b, err := store.Open(ctx, "small.sux")
		require.NoError(t, err)
		got, err := blobstore.ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, "small", string(got))
		require.NoError(t, store.Delete(ctx, "small.sux"))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
