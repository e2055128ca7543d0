package service

import (
	"context"
	"fmt"
	"log"

	"reelshelf/internal/cache"
	"reelshelf/internal/model"
	"reelshelf/internal/omdb"
)

// searchHydrateLimit bounds the fan-out of by-id lookups when hydrating
// title-search matches into full records.
const searchHydrateLimit = 5

// CatalogClient is the subset of the OMDb client the catalog uses.
type CatalogClient interface {
	GetByID(ctx context.Context, imdbID string) (*omdb.Movie, error)
	SearchByTitle(ctx context.Context, title string) ([]omdb.SearchResult, error)
}

// CatalogService fronts the external movie catalog with a Redis cache.
// The cache is best-effort: read and write failures fall through to the
// API and never fail a request.
type CatalogService struct {
	client CatalogClient
	cache  cache.CatalogCache
}

func NewCatalogService(client CatalogClient, catalogCache cache.CatalogCache) *CatalogService {
	return &CatalogService{
		client: client,
		cache:  catalogCache,
	}
}

// Lookup resolves ref (a bare IMDb id or a URL containing one) and
// returns the catalog record for it.
func (s *CatalogService) Lookup(ctx context.Context, ref string) (*omdb.Movie, error) {
	imdbID := omdb.ExtractIMDBID(ref)
	if imdbID == "" {
		return nil, model.ErrInvalidImdbRef
	}

	if cached, found := s.cache.GetMovie(ctx, imdbID); found {
		return cached, nil
	}

	movie, err := s.client.GetByID(ctx, imdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", imdbID, err)
	}

	s.cache.SetMovie(ctx, imdbID, movie)
	return movie, nil
}

// Search finds catalog entries matching a title. An empty result set is
// not an error and is cached like any other.
func (s *CatalogService) Search(ctx context.Context, title string) ([]omdb.SearchResult, error) {
	if cached, found := s.cache.GetSearch(ctx, title); found {
		return cached, nil
	}

	results, err := s.client.SearchByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog for %q: %w", title, err)
	}

	s.cache.SetSearch(ctx, title, results)
	return results, nil
}

// SearchDetailed runs a title search and hydrates the top matches into
// full catalog records. The by-id lookups go through the same cache as
// Lookup, so repeated searches cost at most one API call per new id. A
// match whose detail lookup fails is dropped rather than failing the
// whole search.
func (s *CatalogService) SearchDetailed(ctx context.Context, title string) ([]*omdb.Movie, error) {
	results, err := s.Search(ctx, title)
	if err != nil {
		return nil, err
	}

	if len(results) > searchHydrateLimit {
		results = results[:searchHydrateLimit]
	}

	movies := make([]*omdb.Movie, 0, len(results))
	for _, r := range results {
		movie, err := s.Lookup(ctx, r.ImdbID)
		if err != nil {
			log.Printf("[CatalogService] SearchDetailed: hydrate %s: %v", r.ImdbID, err)
			continue
		}
		movies = append(movies, movie)
	}
	return movies, nil
}
