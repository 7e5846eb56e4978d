// Package blockcache is an in-memory, height-ordered store of compact
// blocks. The sync engine owns exactly one Cache for the duration of a
// session: blocks are inserted after download, consumed by the scanner,
// and removed once scanned, so the cache only ever holds the working set
// for the range currently in flight.
package blockcache

import (
	"fmt"
	"sort"
	"sync"

	"github.com/decred/zeclightsync/lightwalletrpc/walletrpc"
	"github.com/decred/zeclightsync/syncstatus"
)

// ErrMissing is returned when the scanner requests a height the cache
// does not hold.
type ErrMissing struct {
	Height syncstatus.BlockHeight
}

func (e *ErrMissing) Error() string {
	return fmt.Sprintf("blockcache: missing block at height %d", e.Height)
}

// Cache is an ordered mapping from block height to compact block.
type Cache struct {
	mtx    sync.Mutex
	blocks map[syncstatus.BlockHeight]*walletrpc.CompactBlock
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		blocks: make(map[syncstatus.BlockHeight]*walletrpc.CompactBlock),
	}
}

// InsertRange overwrites any existing entries at the heights of the given
// blocks. The caller is expected to supply contiguous ranges during
// normal operation, but non-contiguous input is accepted.
func (c *Cache) InsertRange(blocks []*walletrpc.CompactBlock) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for _, b := range blocks {
		c.blocks[syncstatus.BlockHeight(b.Height)] = b
	}
}

// RemoveRange drops entries whose height falls in [lo, hi).
func (c *Cache) RemoveRange(lo, hi syncstatus.BlockHeight) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for h := range c.blocks {
		if h >= lo && h < hi {
			delete(c.blocks, h)
		}
	}
}

// TruncateToHeight removes all entries with height >= h.
func (c *Cache) TruncateToHeight(h syncstatus.BlockHeight) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	var dropped int
	for height := range c.blocks {
		if height >= h {
			delete(c.blocks, height)
			dropped++
		}
	}
	if dropped > 0 {
		bcLog.Debugf("truncated %d cached blocks at/after height %d", dropped, h)
	}
}

// Len returns the number of cached blocks.
func (c *Cache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return len(c.blocks)
}

// BlocksInRange returns the [start, start+length) blocks in ascending
// height order, for consumption by the scan primitive. It fails with
// ErrMissing on the first absent height.
func (c *Cache) BlocksInRange(start syncstatus.BlockHeight, length uint32) ([]*walletrpc.CompactBlock, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	out := make([]*walletrpc.CompactBlock, 0, length)
	for i := uint32(0); i < length; i++ {
		h := start + syncstatus.BlockHeight(i)
		b, ok := c.blocks[h]
		if !ok {
			return nil, &ErrMissing{Height: h}
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out, nil
}
