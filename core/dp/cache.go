// core/dp/cache.go
package dp

import (
	"math"
	"sync"
	"sync/atomic"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
)

type emissionKey struct {
	pair alphabet.Pair
	st   dist.ScoreType
}

// CacheStats counts emission lookups. Hits include those served by a run's
// own memo.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	Resets  uint64
}

// emissionCache memoizes log emission vectors per (symbol pair, score type)
// across runs. It is emptied whenever the model version it was filled under
// changes. Each run keeps its own memo in front of it, so the shared lock is
// only taken the first time a run meets a pair.
type emissionCache struct {
	mu      sync.RWMutex
	version uint64
	m       map[emissionKey][]float64

	hits, misses, resets atomic.Uint64
}

func newEmissionCache() *emissionCache {
	return &emissionCache{m: make(map[emissionKey][]float64)}
}

// vector returns one log score per emitting state for the grid pair p.
// Each state sees the pair its advance selects. The slice is shared.
func (c *emissionCache) vector(r *run, p alphabet.Pair) []float64 {
	key := emissionKey{pair: p, st: r.st}

	c.mu.RLock()
	v, ok := c.m[key]
	ok = ok && c.version == r.version
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != r.version {
		clear(c.m)
		c.version = r.version
		c.resets.Add(1)
	}
	if v, ok := c.m[key]; ok {
		c.hits.Add(1)
		return v
	}
	c.misses.Add(1)

	v = make([]float64, r.nEmit)
	for i := 0; i < r.nEmit; i++ {
		q := p
		switch r.adv[i] {
		case [2]int{1, 0}:
			q.B = alphabet.Gap
		case [2]int{0, 1}:
			q.A = alphabet.Gap
		}
		v[i] = math.Log(r.extract(r.states[i].Dist(), q))
	}
	c.m[key] = v
	return v
}

func (c *emissionCache) stats() CacheStats {
	c.mu.RLock()
	n := len(c.m)
	c.mu.RUnlock()
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n, Resets: c.resets.Load()}
}
