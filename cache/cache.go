// Package cache implements a read-through cache of fixed-size disk blocks.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"github.com/davidbalbert/isolinuxfs/disk"
)

// DefaultCapacity is the number of blocks kept when no capacity is given.
const DefaultCapacity = 64

type Stats struct {
	Hits   uint64
	Misses uint64
}

// Cache holds recently read blocks of a disk. Buffers returned by GetBlock
// are shared with the cache and must not be modified.
type Cache struct {
	disk       disk.Disk
	blockShift uint
	blocks     *lru.Cache
	stats      Stats
	log        *log.Entry
}

// New returns a cache of capacity blocks. A nil l logs through the standard
// logger.
func New(d disk.Disk, blockShift uint, capacity int, l *log.Entry) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if l == nil {
		l = log.NewEntry(log.StandardLogger())
	}

	c := &Cache{
		disk:       d,
		blockShift: blockShift,
		log:        l,
	}

	blocks, err := lru.NewWithEvict(capacity, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("error creating block cache: %w", err)
	}
	c.blocks = blocks

	return c, nil
}

func (c *Cache) BlockSize() int {
	return 1 << c.blockShift
}

// GetBlock returns the contents of block, reading it from disk on a miss.
func (c *Cache) GetBlock(block uint64) ([]byte, error) {
	if v, ok := c.blocks.Get(block); ok {
		c.stats.Hits++
		return v.([]byte), nil
	}

	c.stats.Misses++

	buf := make([]byte, c.BlockSize())
	if _, err := disk.ReadBlocks(c.disk, buf, block, 1, c.blockShift); err != nil {
		return nil, fmt.Errorf("error reading block %d: %w", block, err)
	}

	c.blocks.Add(block, buf)

	return buf, nil
}

func (c *Cache) evicted(key, _ interface{}) {
	c.log.WithField("block", key).Trace("evicted block from cache")
}

func (c *Cache) Stats() Stats {
	return c.stats
}

func (c *Cache) Len() int {
	return c.blocks.Len()
}

func (c *Cache) Purge() {
	c.blocks.Purge()
}
