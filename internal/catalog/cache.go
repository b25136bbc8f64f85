package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "catalog:search:version"

// SearchCache caches catalog search responses in Redis. A version counter is
// baked into every key so catalog writes can invalidate the whole cache with
// one bump instead of enumerating keys.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache instantiates the cache helper. A nil client disables caching.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

func (c *SearchCache) key(ctx context.Context, quoteType QuoteType, term string) (string, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return "", err
		}
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return "", err
		}
	}
	term = strings.ToLower(strings.TrimSpace(term))
	return fmt.Sprintf("catalog:search:v%d:%s:%s", ver, quoteType, term), nil
}

// Get returns the cached results for a search, or ok=false on a miss.
func (c *SearchCache) Get(ctx context.Context, quoteType QuoteType, term string) ([]SearchResult, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	key, err := c.key(ctx, quoteType, term)
	if err != nil {
		return nil, false, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var results []SearchResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

// Set stores the results for a search.
func (c *SearchCache) Set(ctx context.Context, quoteType QuoteType, term string, results []SearchResult) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.key(ctx, quoteType, term)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Invalidate drops all cached searches by bumping the version counter. The
// pricing engine itself never writes to the catalog; this is the hook for
// catalog maintenance flows that edit products or tariffs outside this
// service.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
