package coverage

import (
	"sync"

	"github.com/borgarlina/coverage-cli/internal/census"
)

// queryKey identifies one coverage query exactly; memoization never
// matches "close enough" points.
type queryKey struct {
	lng, lat, radius float64
}

// resultCache is a bounded FIFO memo for coverage results, keyed by the
// exact (point, radius) pair. When the cache grows past its capacity the
// oldest half is evicted, mirroring redundant UI re-renders being the only
// realistic source of repeat queries. The mutex exists only because the
// HTTP server issues queries concurrently.
type resultCache struct {
	mu      sync.Mutex
	cap     int
	order   []queryKey
	entries map[queryKey][]census.CoverageResult
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		cap:     capacity,
		entries: make(map[queryKey][]census.CoverageResult, capacity),
	}
}

// get returns a copy of the cached results so callers can never mutate
// cached state.
func (c *resultCache) get(k queryKey) ([]census.CoverageResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	out := make([]census.CoverageResult, len(cached))
	copy(out, cached)
	return out, true
}

func (c *resultCache) put(k queryKey, results []census.CoverageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[k]; !exists {
		c.order = append(c.order, k)
	}
	stored := make([]census.CoverageResult, len(results))
	copy(stored, results)
	c.entries[k] = stored

	if len(c.entries) > c.cap {
		n := max(1, c.cap/2)
		for _, old := range c.order[:n] {
			delete(c.entries, old)
		}
		c.order = append([]queryKey(nil), c.order[n:]...)
	}
}

// len reports the number of cached queries.
func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
