package session

import (
	"sync"

	"StockFetch/internal/model"
)

// Cache holds the most recently fetched series and the query that produced
// it. At most one entry lives here; a new fetch replaces it wholesale and
// results are never merged with the previous one.
type Cache struct {
	mu     sync.Mutex
	query  model.Query
	series model.PriceSeries
	filled bool
}

func NewCache() *Cache { return &Cache{} }

// Put replaces the cached result.
func (c *Cache) Put(q model.Query, s model.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
	c.series = s
	c.filled = true
}

// Last returns the cached query and series, and whether anything is cached.
func (c *Cache) Last() (model.Query, model.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query, c.series, c.filled
}

// Clear drops the cached result.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = model.Query{}
	c.series = nil
	c.filled = false
}
