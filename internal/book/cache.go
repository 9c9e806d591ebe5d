package book

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"

	"github.com/hailam/tulip/internal/board"
)

// Cached memoizes another book's lookups by position hash. Misses are
// cached too, so a search that probes the same position repeatedly hits
// the backing store once.
type Cached struct {
	inner Book
	cache *ristretto.Cache[uint64, []board.Move]
}

// NewCached wraps inner with a cache holding up to maxEntries positions.
func NewCached(inner Book, maxEntries int64) (*Cached, error) {
	if maxEntries < 1 {
		maxEntries = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, []board.Move]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Cost counts positions, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "create book cache")
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Lookup returns the cached result for pos, consulting the wrapped book
// on a miss.
func (c *Cached) Lookup(pos *board.Position) ([]board.Move, error) {
	if moves, ok := c.cache.Get(pos.Hash); ok {
		return append([]board.Move(nil), moves...), nil
	}

	moves, err := c.inner.Lookup(pos)
	if err != nil {
		return nil, err
	}
	c.cache.Set(pos.Hash, moves, 1)
	c.cache.Wait()
	return append([]board.Move(nil), moves...), nil
}

// Invalidate drops the cached result for pos, e.g. after adding to the
// wrapped book.
func (c *Cached) Invalidate(pos *board.Position) {
	c.cache.Del(pos.Hash)
}

// Close releases the cache.
func (c *Cached) Close() {
	c.cache.Close()
}
