package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"reelshelf/internal/omdb"
)

const (
	// CatalogLookupPrefix keys cached by-id lookups
	CatalogLookupPrefix = "catalog:movie:"

	// CatalogSearchPrefix keys cached title searches
	CatalogSearchPrefix = "catalog:search:"

	// CatalogLookupTTL is how long a by-id response stays cached.
	// Catalog metadata is effectively immutable, so this can be long.
	CatalogLookupTTL = 24 * time.Hour

	// CatalogSearchTTL is how long a title search stays cached
	CatalogSearchTTL = 30 * time.Minute
)

// CatalogCache caches OMDb responses so repeated lookups of the same title
// don't burn the API quota. Using an interface enables testing with mocks.
type CatalogCache interface {
	GetMovie(ctx context.Context, imdbID string) (*omdb.Movie, bool)
	SetMovie(ctx context.Context, imdbID string, movie *omdb.Movie)
	GetSearch(ctx context.Context, term string) ([]omdb.SearchResult, bool)
	SetSearch(ctx context.Context, term string, results []omdb.SearchResult)
}

// RedisCatalogCache implements CatalogCache with plain JSON values.
type RedisCatalogCache struct {
	client *redis.Client
}

// NewCatalogCache creates a CatalogCache backed by Redis.
func NewCatalogCache(client *redis.Client) CatalogCache {
	return &RedisCatalogCache{client: client}
}

// GetMovie returns a cached by-id lookup. Cache failures degrade to a
// miss; the caller falls through to the API.
func (c *RedisCatalogCache) GetMovie(ctx context.Context, imdbID string) (*omdb.Movie, bool) {
	data, err := c.client.Get(ctx, CatalogLookupPrefix+imdbID).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CatalogCache] GetMovie error: id=%s err=%v", imdbID, err)
		}
		return nil, false
	}

	var movie omdb.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		log.Printf("[CatalogCache] GetMovie unmarshal error: id=%s err=%v", imdbID, err)
		return nil, false
	}
	return &movie, true
}

// SetMovie stores a by-id lookup. Failures are logged and ignored; the
// cache is best-effort.
func (c *RedisCatalogCache) SetMovie(ctx context.Context, imdbID string, movie *omdb.Movie) {
	data, err := json.Marshal(movie)
	if err != nil {
		log.Printf("[CatalogCache] SetMovie marshal error: id=%s err=%v", imdbID, err)
		return
	}
	if err := c.client.Set(ctx, CatalogLookupPrefix+imdbID, data, CatalogLookupTTL).Err(); err != nil {
		log.Printf("[CatalogCache] SetMovie error: id=%s err=%v", imdbID, err)
	}
}

// GetSearch returns a cached title search.
func (c *RedisCatalogCache) GetSearch(ctx context.Context, term string) ([]omdb.SearchResult, bool) {
	data, err := c.client.Get(ctx, searchKey(term)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CatalogCache] GetSearch error: term=%q err=%v", term, err)
		}
		return nil, false
	}

	var results []omdb.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		log.Printf("[CatalogCache] GetSearch unmarshal error: term=%q err=%v", term, err)
		return nil, false
	}
	return results, true
}

// SetSearch stores a title search result set, including empty ones.
func (c *RedisCatalogCache) SetSearch(ctx context.Context, term string, results []omdb.SearchResult) {
	data, err := json.Marshal(results)
	if err != nil {
		log.Printf("[CatalogCache] SetSearch marshal error: term=%q err=%v", term, err)
		return
	}
	if err := c.client.Set(ctx, searchKey(term), data, CatalogSearchTTL).Err(); err != nil {
		log.Printf("[CatalogCache] SetSearch error: term=%q err=%v", term, err)
	}
}

func searchKey(term string) string {
	return fmt.Sprintf("%s%s", CatalogSearchPrefix, term)
}
