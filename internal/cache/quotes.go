package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// MarketDataSource is the underlying quote store the cache reads through to.
type MarketDataSource interface {
	GetLatestMarketData(instrumentID int) (*models.MarketData, error)
	GetLatestMarketDataBatch(instrumentIDs []int) ([]*models.MarketData, error)
}

// QuoteCache is a read-through Redis cache over the latest-quote lookups.
// Entries expire after the configured TTL; the database stays the source of
// truth and any Redis failure falls back to it.
type QuoteCache struct {
	source MarketDataSource
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache creates a QuoteCache over the given source
func NewQuoteCache(source MarketDataSource, client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		source: source,
		client: client,
		ttl:    ttl,
	}
}

func quoteKey(instrumentID int) string {
	return fmt.Sprintf("quote:latest:%d", instrumentID)
}

// GetLatestMarketData returns the cached latest quote for an instrument,
// reading through to the source on a miss. Instruments without quotes are
// not cached.
func (c *QuoteCache) GetLatestMarketData(instrumentID int) (*models.MarketData, error) {
	ctx := context.Background()

	if data, err := c.client.Get(ctx, quoteKey(instrumentID)).Bytes(); err == nil {
		var md models.MarketData
		if err := json.Unmarshal(data, &md); err == nil {
			return &md, nil
		}
	}

	md, err := c.source.GetLatestMarketData(instrumentID)
	if err != nil {
		return nil, err
	}
	if md != nil {
		c.store(ctx, md)
	}
	return md, nil
}

// GetLatestMarketDataBatch returns cached quotes where available and reads
// through to the source for the rest.
func (c *QuoteCache) GetLatestMarketDataBatch(instrumentIDs []int) ([]*models.MarketData, error) {
	if len(instrumentIDs) == 0 {
		return nil, nil
	}
	ctx := context.Background()

	keys := make([]string, len(instrumentIDs))
	for i, id := range instrumentIDs {
		keys[i] = quoteKey(id)
	}

	var quotes []*models.MarketData
	var misses []int

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		// Redis unavailable: serve the whole batch from the source.
		return c.source.GetLatestMarketDataBatch(instrumentIDs)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, instrumentIDs[i])
			continue
		}
		var md models.MarketData
		if err := json.Unmarshal([]byte(raw), &md); err != nil {
			misses = append(misses, instrumentIDs[i])
			continue
		}
		quotes = append(quotes, &md)
	}

	if len(misses) > 0 {
		fetched, err := c.source.GetLatestMarketDataBatch(misses)
		if err != nil {
			return nil, err
		}
		for _, md := range fetched {
			c.store(ctx, md)
			quotes = append(quotes, md)
		}
	}

	return quotes, nil
}

func (c *QuoteCache) store(ctx context.Context, md *models.MarketData) {
	data, err := json.Marshal(md)
	if err != nil {
		return
	}
	// Best effort: a failed set just means a miss next time.
	c.client.Set(ctx, quoteKey(md.InstrumentID), data, c.ttl)
}
