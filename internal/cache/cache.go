// Package cache keeps recent decisions in memory so repeated requests for the
// same board and level skip the search.
package cache

import (
	"encoding/binary"
	"fmt"
	"log"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
)

// recordCost approximates the memory held by one cached decision.
var recordCost = int64(unsafe.Sizeof(engine.DecisionRecord{}))

// DecisionCache is a bounded, concurrency-safe decision cache.
// It implements engine.Cache.
type DecisionCache struct {
	c *ristretto.Cache[uint64, engine.DecisionRecord]
}

// New creates a cache holding roughly sizeMB megabytes of decisions.
func New(sizeMB int) (*DecisionCache, error) {
	if sizeMB < 1 {
		sizeMB = 1
	}
	maxCost := int64(sizeMB) << 20
	entries := maxCost / recordCost

	c, err := ristretto.NewCache(&ristretto.Config[uint64, engine.DecisionRecord]{
		NumCounters: entries * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create decision cache: %w", err)
	}

	log.Printf("[cache] %s for about %s decisions",
		humanize.IBytes(uint64(maxCost)), humanize.Comma(entries))
	return &DecisionCache{c: c}, nil
}

// Key hashes a position together with the search depth.
func Key(pos *board.Position, depth int) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], pos.Key())
	binary.LittleEndian.PutUint64(buf[8:], uint64(depth))
	return xxhash.Sum64(buf[:])
}

// Get returns the decision stored for pos at depth.
func (d *DecisionCache) Get(pos *board.Position, depth int) (engine.DecisionRecord, bool) {
	return d.c.Get(Key(pos, depth))
}

// Set stores a decision. Admission is asynchronous and may be refused.
func (d *DecisionCache) Set(pos *board.Position, depth int, rec engine.DecisionRecord) {
	d.c.Set(Key(pos, depth), rec, recordCost)
}

// Wait blocks until pending sets have been applied.
func (d *DecisionCache) Wait() {
	d.c.Wait()
}

// Clear drops every cached decision.
func (d *DecisionCache) Clear() {
	d.c.Clear()
}

// Close stops the cache's background goroutines.
func (d *DecisionCache) Close() {
	d.c.Close()
}
