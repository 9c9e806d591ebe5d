package engine

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hailam/tulip/internal/board"
)

// TTFlag indicates the type of bound stored with an entry.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// Number of lock shards, a power of 2.
const (
	ttShardCount = 64
	ttShardMask  = ttShardCount - 1
)

// TTEntry remembers the best move found for a position. Search uses it for
// move ordering only; scores are never trusted for cutoffs because a
// position's value depends on the repetition history that led to it.
type TTEntry struct {
	Key      uint64 // full hash, checked on probe
	BestMove board.Move
	Score    int16
	Depth    int8
	Flag     TTFlag
	Age      uint8
}

// TranspositionTable is a fixed-size hash table shared by every search an
// Engine runs. Locks are sharded by entry index so that perft or analysis
// workers on separate position copies can share it.
type TranspositionTable struct {
	entries []TTEntry
	shards  [ttShardCount]sync.RWMutex
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable sizes the table to at most sizeMB megabytes,
// rounded down to a power-of-two entry count. Sizes below one entry give
// a single-entry table.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 0 {
		sizeMB = 0
	}
	n := uint64(sizeMB) * 1024 * 1024 / uint64(unsafe.Sizeof(TTEntry{}))
	n = roundDownToPowerOf2(n)
	if n == 0 {
		n = 1
	}
	return &TranspositionTable{
		entries: make([]TTEntry, n),
		mask:    n - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up hash. ok is false on an empty slot or a key mismatch.
func (tt *TranspositionTable) Probe(hash uint64) (entry TTEntry, ok bool) {
	tt.probes.Add(1)
	idx := hash & tt.mask
	lock := &tt.shards[idx&ttShardMask]

	lock.RLock()
	entry = tt.entries[idx]
	lock.RUnlock()

	if entry.Key != hash || entry.BestMove.IsNull() {
		return TTEntry{}, false
	}
	tt.hits.Add(1)
	return entry, true
}

// Store saves a search result. Entries from an older search are always
// replaced; within one search a shallower result never evicts a deeper one.
func (tt *TranspositionTable) Store(hash uint64, depth, score int, flag TTFlag, best board.Move) {
	idx := hash & tt.mask
	lock := &tt.shards[idx&ttShardMask]
	age := uint8(tt.age.Load())

	lock.Lock()
	e := &tt.entries[idx]
	if e.Age != age || e.Key != hash || depth >= int(e.Depth) {
		*e = TTEntry{
			Key:      hash,
			BestMove: best,
			Score:    int16(score),
			Depth:    int8(depth),
			Flag:     flag,
			Age:      age,
		}
	}
	lock.Unlock()
}

// NewSearch starts a new generation for replacement decisions.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties the table and resets statistics.
func (tt *TranspositionTable) Clear() {
	for i := range tt.shards {
		tt.shards[i].Lock()
	}
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	for i := range tt.shards {
		tt.shards[i].Unlock()
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille of sampled slots written in this search.
func (tt *TranspositionTable) HashFull() int {
	sample := len(tt.entries)
	if sample > 1000 {
		sample = 1000
	}
	age := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sample; i++ {
		lock := &tt.shards[uint64(i)&ttShardMask]
		lock.RLock()
		e := tt.entries[i]
		lock.RUnlock()
		if !e.BestMove.IsNull() && e.Age == age {
			used++
		}
	}
	return used * 1000 / sample
}

// HitRate returns the percentage of lookups that found an entry since the
// last Clear.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() int {
	return len(tt.entries)
}
