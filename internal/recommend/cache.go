// internal/recommend/cache.go
package recommend

import "sync"

// resultCache holds the engine's process-local caches: recommendation
// lists per user, similar-book lists per ISBN, and encoded book features
// per ISBN. Entries live until invalidated or the process exits. A single
// RWMutex guards all three maps; concurrent first requests for the same
// key may both compute, with the later write winning, which is harmless
// because computation is deterministic.
type resultCache struct {
	mu       sync.RWMutex
	userRecs map[int][]string
	similar  map[string][]string
	features map[string]BookFeatures
}

func newResultCache() *resultCache {
	return &resultCache{
		userRecs: make(map[int][]string),
		similar:  make(map[string][]string),
		features: make(map[string]BookFeatures),
	}
}

func (c *resultCache) getUserRecs(userID int) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	recs, ok := c.userRecs[userID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(recs))
	copy(out, recs)
	return out, true
}

func (c *resultCache) putUserRecs(userID int, recs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userRecs[userID] = recs
}

func (c *resultCache) getSimilar(isbn string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	similar, ok := c.similar[isbn]
	if !ok {
		return nil, false
	}
	out := make([]string, len(similar))
	copy(out, similar)
	return out, true
}

func (c *resultCache) putSimilar(isbn string, similar []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.similar[isbn] = similar
}

func (c *resultCache) getFeatures(isbn string) (BookFeatures, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.features[isbn]
	return f, ok
}

func (c *resultCache) putFeatures(isbn string, f BookFeatures) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features[isbn] = f
}

func (c *resultCache) invalidateUser(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.userRecs, userID)
}

func (c *resultCache) invalidateBook(isbn string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.similar, isbn)
	delete(c.features, isbn)
}
