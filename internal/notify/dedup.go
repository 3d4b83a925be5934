package notify

// DedupCache is a bounded set of already-forwarded event ids. When the cap is
// exceeded the oldest half is evicted and only the most recent half kept — a
// deliberate soft LRU that trades perfect dedup for bounded memory. The cache
// lives for the bridge process lifetime; events delivered before a restart
// may be redelivered once.
type DedupCache struct {
	cap   int
	seen  map[string]struct{}
	order []string
}

// DefaultDedupCap bounds the cache at roughly the last hundred events.
const DefaultDedupCap = 100

// NewDedupCache builds a cache holding at most cap ids.
func NewDedupCache(cap int) *DedupCache {
	if cap <= 0 {
		cap = DefaultDedupCap
	}
	return &DedupCache{
		cap:  cap,
		seen: make(map[string]struct{}, cap),
	}
}

// Seen reports whether the id is currently in the cache. Evicted ids read as
// unseen again.
func (c *DedupCache) Seen(id string) bool {
	_, ok := c.seen[id]
	return ok
}

// Add records an id as forwarded, evicting the oldest half when the cap is
// exceeded. Adding an id already present is a no-op.
func (c *DedupCache) Add(id string) {
	if _, ok := c.seen[id]; ok {
		return
	}
	c.seen[id] = struct{}{}
	c.order = append(c.order, id)

	if len(c.order) > c.cap {
		cut := len(c.order) / 2
		for _, old := range c.order[:cut] {
			delete(c.seen, old)
		}
		c.order = append([]string(nil), c.order[cut:]...)
	}
}

// Len returns the number of ids currently tracked.
func (c *DedupCache) Len() int {
	return len(c.order)
}
