package sux

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/sux/bitfield"
	"github.com/hupe1980/sux/blobstore"
	"github.com/hupe1980/sux/build"
	"github.com/hupe1980/sux/persistence"
	"github.com/hupe1980/sux/ranksel"
	"github.com/hupe1980/sux/resource"
)

const ioBufferSize = 256 * 1024

// Archive stores named bit-field and rank/select vectors in a BlobStore.
//
// Every save writes a new immutable blob and then commits the catalog, so a
// failed save never damages the previous version of a vector.
// An Archive is safe for concurrent use.
type Archive struct {
	store blobstore.BlobStore
	opts  options

	mu      sync.RWMutex
	catalog *catalog
	closed  bool
}

// Open opens the archive in store, creating an empty catalog if none
// exists yet.
func Open(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Archive, error) {
	a := &Archive{
		store: store,
		opts:  applyOptions(optFns),
	}
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload re-reads the catalog from the store.
func (a *Archive) Reload(ctx context.Context) error {
	cat, err := a.readCatalog(ctx)
	a.opts.logger.LogCatalog(ctx, "load", len(cat.Entries), err)
	if err != nil {
		return translateError(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	a.catalog = cat
	return nil
}

func (a *Archive) readCatalog(ctx context.Context) (*catalog, error) {
	// The catalog is replaced in place, possibly by another process.
	blob, err := blobstore.Uncached(a.store).Open(ctx, catalogBlob(a.opts.prefix))
	if errors.Is(err, blobstore.ErrNotFound) {
		return newCatalog(), nil
	}
	if err != nil {
		return newCatalog(), err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return newCatalog(), err
	}
	cat, err := decodeCatalog(data)
	if err != nil {
		return newCatalog(), err
	}
	return cat, nil
}

// commit persists cat. The caller holds a.mu.
func (a *Archive) commit(ctx context.Context, cat *catalog) error {
	data, err := encodeCatalog(a.opts.codec, cat)
	if err == nil {
		err = a.store.Put(ctx, catalogBlob(a.opts.prefix), data)
	}
	a.opts.logger.LogCatalog(ctx, "commit", len(cat.Entries), err)
	return err
}

// Close marks the archive closed. Vectors already loaded stay valid.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// Stat returns the catalog entry for name.
func (a *Archive) Stat(name string) (Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return Entry{}, ErrClosed
	}
	e, ok := a.catalog.Entries[name]
	if !ok {
		return Entry{}, &EntryError{Op: "stat", Name: name, cause: ErrNotFound}
	}
	return e, nil
}

// List returns the entries whose names start with prefix, sorted by name.
func (a *Archive) List(prefix string) ([]Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, ErrClosed
	}

	var entries []Entry
	for _, name := range slices.Sorted(maps.Keys(a.catalog.Entries)) {
		if strings.HasPrefix(name, prefix) {
			entries = append(entries, a.catalog.Entries[name])
		}
	}
	return entries, nil
}

// SaveVec stores v under name, replacing any previous vector of that name.
func (a *Archive) SaveVec(ctx context.Context, name string, v *bitfield.Vec[uint64]) (Entry, error) {
	return a.save(ctx, Entry{Name: name, Kind: KindVec}, v)
}

// SaveBitVec stores b under name as a width-1 vector.
func (a *Archive) SaveBitVec(ctx context.Context, name string, b *ranksel.BitVec) (Entry, error) {
	return a.save(ctx, Entry{Name: name, Kind: KindBitVec, Ones: b.Count()}, b.ToBitFieldVec())
}

// BuildVec fills a vector of n values of bitWidth bits in parallel with
// value i equal to fn(i), then saves it under name.
func (a *Archive) BuildVec(ctx context.Context, name string, bitWidth, n int, fn func(i int) (uint64, error)) (Entry, error) {
	if err := validName(name); err != nil {
		return Entry{}, err
	}

	start := time.Now()
	v, err := build.Fill(ctx, bitWidth, n, fn, build.Options{
		Workers:            a.opts.buildWorkers,
		ResourceController: a.opts.rc,
		Logger:             a.opts.logger.Logger,
	})
	a.opts.logger.LogBuild(ctx, name, bitWidth, n, time.Since(start), err)
	if err != nil {
		return Entry{}, wrapEntry("build", name, err)
	}
	return a.SaveVec(ctx, name, v)
}

func (a *Archive) save(ctx context.Context, e Entry, v *bitfield.Vec[uint64]) (entry Entry, err error) {
	start := time.Now()
	defer func() {
		a.opts.metricsCollector.RecordSave(entry.Size, time.Since(start), err)
		a.opts.logger.LogSave(ctx, e, time.Since(start), err)
		err = wrapEntry("save", e.Name, err)
	}()

	if err := validName(e.Name); err != nil {
		return Entry{}, err
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return Entry{}, ErrClosed
	}
	a.catalog.Generation++
	gen := a.catalog.Generation
	a.mu.Unlock()

	e.BitWidth = v.BitWidth()
	e.Len = v.Len()
	e.Compression = a.opts.compression.String()
	e.Blob = vecBlob(a.opts.prefix, e.Name, gen)
	e.CreatedAt = time.Now().UTC()

	size, err := a.writeVec(ctx, e.Blob, v)
	if err != nil {
		return Entry{}, err
	}
	e.Size = size

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		_ = a.store.Delete(ctx, e.Blob)
		return Entry{}, ErrClosed
	}

	prev, hadPrev := a.catalog.Entries[e.Name]
	a.catalog.Entries[e.Name] = e
	if err := a.commit(ctx, a.catalog); err != nil {
		if hadPrev {
			a.catalog.Entries[e.Name] = prev
		} else {
			delete(a.catalog.Entries, e.Name)
		}
		_ = a.store.Delete(ctx, e.Blob)
		return Entry{}, err
	}

	if hadPrev && prev.Blob != e.Blob {
		if err := a.store.Delete(ctx, prev.Blob); err != nil {
			a.opts.logger.WarnContext(ctx, "remove replaced blob failed", "blob", prev.Blob, "error", err)
		}
	}
	return e, nil
}

func (a *Archive) writeVec(ctx context.Context, blobName string, v *bitfield.Vec[uint64]) (int64, error) {
	w, err := a.store.Create(ctx, blobName)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriterSize(resource.NewRateLimitedWriter(ctx, w, a.opts.rc), ioBufferSize)
	n, err := persistence.WriteVec(bw, v, a.opts.compression)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		_ = blobstore.Abort(w)
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// LoadVec loads the vector stored under name.
func (a *Archive) LoadVec(ctx context.Context, name string) (*bitfield.Vec[uint64], error) {
	start := time.Now()
	e, err := a.Stat(name)
	var v *bitfield.Vec[uint64]
	if err == nil {
		v, err = a.readVec(ctx, e)
	}

	length := 0
	if v != nil {
		length = v.Len()
	}
	a.opts.metricsCollector.RecordLoad(e.Size, time.Since(start), err)
	a.opts.logger.LogLoad(ctx, name, length, time.Since(start), err)

	var ee *EntryError
	if err != nil && !errors.As(err, &ee) {
		err = wrapEntry("load", name, err)
	}
	return v, err
}

// LoadBitVec loads the rank/select bit vector stored under name. Any
// stored vector of bit width 1 qualifies.
func (a *Archive) LoadBitVec(ctx context.Context, name string) (*ranksel.BitVec, error) {
	v, err := a.LoadVec(ctx, name)
	if err != nil {
		return nil, err
	}
	b, err := ranksel.FromBitFieldVec(v)
	if err != nil {
		return nil, wrapEntry("load", name, err)
	}
	return b, nil
}

func (a *Archive) readVec(ctx context.Context, e Entry) (*bitfield.Vec[uint64], error) {
	mem := int64(bitfield.NumWords[uint64](e.BitWidth, e.Len)) * 8
	if err := a.opts.rc.AcquireMemory(ctx, mem); err != nil {
		return nil, err
	}
	defer a.opts.rc.ReleaseMemory(mem)

	blob, err := a.store.Open(ctx, e.Blob)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	body, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r := bufio.NewReaderSize(resource.NewRateLimitedReader(ctx, body, a.opts.rc), ioBufferSize)
	v, err := persistence.ReadVec(r)
	if err != nil {
		return nil, err
	}
	if v.BitWidth() != e.BitWidth || v.Len() != e.Len {
		return nil, fmt.Errorf("%w: blob %s holds %d values of %d bits, catalog says %d of %d",
			ErrCorrupt, e.Blob, v.Len(), v.BitWidth(), e.Len, e.BitWidth)
	}
	return v, nil
}

// Delete removes the vector stored under name.
func (a *Archive) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() {
		a.opts.metricsCollector.RecordDelete(time.Since(start), err)
		a.opts.logger.LogDelete(ctx, name, err)
		err = wrapEntry("delete", name, err)
	}()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	e, ok := a.catalog.Entries[name]
	if !ok {
		return ErrNotFound
	}

	delete(a.catalog.Entries, name)
	if err := a.commit(ctx, a.catalog); err != nil {
		a.catalog.Entries[name] = e
		return err
	}
	return a.store.Delete(ctx, e.Blob)
}
