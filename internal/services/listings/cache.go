package listings

import (
	"sync"
	"time"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/models"
)

type cacheEntry struct {
	listings []models.Listing
	storedAt time.Time
}

// searchCache keeps non-empty search results. Freshness is judged against
// the TTL of the lookup, so one cache serves calls with different TTLs.
type searchCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[models.SearchCriteria]cacheEntry
}

func newSearchCache() *searchCache {
	return &searchCache{
		now:     time.Now,
		entries: make(map[models.SearchCriteria]cacheEntry),
	}
}

func (c *searchCache) get(key models.SearchCriteria, ttl time.Duration) ([]models.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !common.IsFresh(e.storedAt, c.now(), ttl) {
		delete(c.entries, key)
		return nil, false
	}
	return e.listings, true
}

func (c *searchCache) put(key models.SearchCriteria, listings []models.Listing, ttl time.Duration) {
	if ttl <= 0 || len(listings) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{listings: listings, storedAt: c.now()}
}
