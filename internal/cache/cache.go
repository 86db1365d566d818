// Package cache keeps extracted outlines in an in-process ristretto cache
// keyed by the hash of the file content they were built from.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"jsoutline/internal/extractor"
)

// unitCost approximates the memory held by one cached unit.
const unitCost = 256

// OutlineCache maps content hashes to outline units.
type OutlineCache struct {
	c   *ristretto.Cache[string, []*extractor.OutlineUnit]
	ttl time.Duration
}

// New creates a cache bounded by maxCostBytes. ttl of zero keeps entries until evicted.
func New(maxCostBytes int64, ttl time.Duration) (*OutlineCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []*extractor.OutlineUnit]{
		NumCounters: max(maxCostBytes/unitCost*10, 1000), // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &OutlineCache{c: c, ttl: ttl}, nil
}

// Key derives the cache key of a file from its path and content.
func Key(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached units for key.
func (c *OutlineCache) Get(key string) ([]*extractor.OutlineUnit, bool) {
	return c.c.Get(key)
}

// Set stores units under key. Writes are applied asynchronously; call Wait
// when a following Get must observe them.
func (c *OutlineCache) Set(key string, units []*extractor.OutlineUnit) {
	cost := int64(len(units)+1) * unitCost
	if c.ttl > 0 {
		c.c.SetWithTTL(key, units, cost, c.ttl)
		return
	}
	c.c.Set(key, units, cost)
}

// Wait blocks until pending writes are applied.
func (c *OutlineCache) Wait() {
	c.c.Wait()
}

// Close releases the cache's goroutines.
func (c *OutlineCache) Close() {
	c.c.Close()
}
