package blobstore

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/sux/resource"
)

// BlockKey identifies a cached block of a blob.
type BlockKey struct {
	Name  string
	Block int64
}

// BlockCache is a byte-oriented cache for immutable blob blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	Get(key BlockKey) ([]byte, bool)
	Set(key BlockKey, b []byte)
	// Invalidate removes every block of the named blob.
	Invalidate(name string)
	Stats() (hits, misses int64)
}

// LRUBlockCache is a size-bounded LRU BlockCache. Cached bytes are reserved
// on the resource controller, when one is given.
type LRUBlockCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[BlockKey]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key   BlockKey
	value []byte
}

// NewLRUBlockCache creates a cache holding at most capacity bytes.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity:  capacity,
		items:     make(map[BlockKey]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached block.
func (c *LRUBlockCache) Get(key BlockKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*lruEntry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block. Blocks larger than the capacity, or that the resource
// controller refuses, are not cached.
func (c *LRUBlockCache) Set(key BlockKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}

	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	// Evict first so released memory is available to the controller.
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	if !c.rc.TryAcquireMemory(itemSize) {
		return
	}

	c.items[key] = c.evictList.PushFront(&lruEntry{key: key, value: b})
	c.size += itemSize
}

// Invalidate removes every block of the named blob.
func (c *LRUBlockCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, ent := range c.items {
		if key.Name == name {
			c.removeElement(ent)
		}
	}
}

// Stats returns the hit and miss counters.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blocks.
func (c *LRUBlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUBlockCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*lruEntry)
	delete(c.items, kv.key)
	itemSize := int64(len(kv.value))
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}
