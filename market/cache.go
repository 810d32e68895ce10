package market

import (
	"context"
	"sync"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/series"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes the lookups of a folio.Market. Concurrent lookups of the
// same key are loaded once. Failures are not cached.
type Cache struct {
	market folio.Market
	group  singleflight.Group

	mu          sync.RWMutex
	instruments map[string]folio.Instrument
	prices      map[string]*series.Dense
	rates       map[string]float64
}

func NewCache(m folio.Market) *Cache {
	return &Cache{
		market:      m,
		instruments: make(map[string]folio.Instrument),
		prices:      make(map[string]*series.Dense),
		rates:       make(map[string]float64),
	}
}

// load returns cache[key] or loads it once.
func load[T any](c *Cache, cache map[string]T, key string, fetch func() (T, error)) (T, error) {
	c.mu.RLock()
	v, ok := cache[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}
	x, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		v, ok := cache[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
		v, err := fetch()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		cache[key] = v
		c.mu.Unlock()
		return v, nil
	})
	return x.(T), err
}

func (c *Cache) Instrument(code string) (folio.Instrument, error) {
	id := fullID(code)
	return load(c, c.instruments, "i:"+id, func() (folio.Instrument, error) { return c.market.Instrument(id) })
}

func (c *Cache) Prices(id string, point folio.DataPoint) (*series.Dense, error) {
	id = fullID(id)
	return load(c, c.prices, "p:"+id+":"+string(point), func() (*series.Dense, error) { return c.market.Prices(id, point) })
}

func (c *Cache) FX(currency string, on date.Date) (float64, error) {
	return load(c, c.rates, "f:"+currency+":"+on.String(), func() (float64, error) { return c.market.FX(currency, on) })
}

// Preload loads the price series of ids concurrently.
func (c *Cache) Preload(ctx context.Context, point folio.DataPoint, ids ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := c.Prices(id, point)
			return err
		})
	}
	return g.Wait()
}
