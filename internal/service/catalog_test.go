package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"reelshelf/internal/model"
	"reelshelf/internal/omdb"
)

type mockCatalogClient struct {
	getByIDFn    func(ctx context.Context, imdbID string) (*omdb.Movie, error)
	searchFn     func(ctx context.Context, title string) ([]omdb.SearchResult, error)
	getByIDCalls int
	searchCalls  int
	lastLookedUp string
	lastSearched string
}

func (m *mockCatalogClient) GetByID(ctx context.Context, imdbID string) (*omdb.Movie, error) {
	m.getByIDCalls++
	m.lastLookedUp = imdbID
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, imdbID)
	}
	return &omdb.Movie{ImdbID: imdbID, Title: "Title for " + imdbID, Response: "True"}, nil
}

func (m *mockCatalogClient) SearchByTitle(ctx context.Context, title string) ([]omdb.SearchResult, error) {
	m.searchCalls++
	m.lastSearched = title
	if m.searchFn != nil {
		return m.searchFn(ctx, title)
	}
	return nil, nil
}

// mockCatalogCache is an in-memory CatalogCache.
type mockCatalogCache struct {
	movies   map[string]*omdb.Movie
	searches map[string][]omdb.SearchResult
}

func newMockCatalogCache() *mockCatalogCache {
	return &mockCatalogCache{
		movies:   make(map[string]*omdb.Movie),
		searches: make(map[string][]omdb.SearchResult),
	}
}

func (m *mockCatalogCache) GetMovie(ctx context.Context, imdbID string) (*omdb.Movie, bool) {
	movie, ok := m.movies[imdbID]
	return movie, ok
}

func (m *mockCatalogCache) SetMovie(ctx context.Context, imdbID string, movie *omdb.Movie) {
	m.movies[imdbID] = movie
}

func (m *mockCatalogCache) GetSearch(ctx context.Context, term string) ([]omdb.SearchResult, bool) {
	results, ok := m.searches[term]
	return results, ok
}

func (m *mockCatalogCache) SetSearch(ctx context.Context, term string, results []omdb.SearchResult) {
	m.searches[term] = results
}

func TestCatalogService_Lookup_InvalidRef(t *testing.T) {
	client := &mockCatalogClient{}
	svc := NewCatalogService(client, newMockCatalogCache())

	_, err := svc.Lookup(context.Background(), "not-an-imdb-ref")
	if !errors.Is(err, model.ErrInvalidImdbRef) {
		t.Fatalf("expected ErrInvalidImdbRef, got %v", err)
	}
	if client.getByIDCalls != 0 {
		t.Errorf("expected no API calls for an invalid ref, got %d", client.getByIDCalls)
	}
}

func TestCatalogService_Lookup_AcceptsFullURL(t *testing.T) {
	client := &mockCatalogClient{}
	svc := NewCatalogService(client, newMockCatalogCache())

	movie, err := svc.Lookup(context.Background(), "https://www.imdb.com/title/tt0111161/")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if movie.ImdbID != "tt0111161" {
		t.Errorf("expected tt0111161, got %s", movie.ImdbID)
	}
	if client.lastLookedUp != "tt0111161" {
		t.Errorf("expected the extracted id to reach the client, got %q", client.lastLookedUp)
	}
}

func TestCatalogService_Lookup_CachesResponse(t *testing.T) {
	client := &mockCatalogClient{}
	svc := NewCatalogService(client, newMockCatalogCache())

	for i := 0; i < 3; i++ {
		if _, err := svc.Lookup(context.Background(), "tt0111161"); err != nil {
			t.Fatalf("Lookup %d failed: %v", i, err)
		}
	}

	if client.getByIDCalls != 1 {
		t.Errorf("expected 1 API call across repeated lookups, got %d", client.getByIDCalls)
	}
}

func TestCatalogService_Lookup_APIError(t *testing.T) {
	client := &mockCatalogClient{
		getByIDFn: func(ctx context.Context, imdbID string) (*omdb.Movie, error) {
			return nil, omdb.ErrNotFound
		},
	}
	cache := newMockCatalogCache()
	svc := NewCatalogService(client, cache)

	_, err := svc.Lookup(context.Background(), "tt9999999")
	if !errors.Is(err, omdb.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(cache.movies) != 0 {
		t.Errorf("expected nothing cached after a failed lookup, got %d entries", len(cache.movies))
	}
}

func TestCatalogService_SearchDetailed_HydratesBounded(t *testing.T) {
	var results []omdb.SearchResult
	for i := 0; i < 8; i++ {
		results = append(results, omdb.SearchResult{
			Title:  fmt.Sprintf("Match %d", i),
			ImdbID: fmt.Sprintf("tt000000%d", i),
		})
	}
	client := &mockCatalogClient{
		searchFn: func(ctx context.Context, title string) ([]omdb.SearchResult, error) {
			return results, nil
		},
	}
	svc := NewCatalogService(client, newMockCatalogCache())

	movies, err := svc.SearchDetailed(context.Background(), "match")
	if err != nil {
		t.Fatalf("SearchDetailed failed: %v", err)
	}
	if len(movies) != searchHydrateLimit {
		t.Errorf("expected hydration capped at %d, got %d", searchHydrateLimit, len(movies))
	}
	if client.getByIDCalls != searchHydrateLimit {
		t.Errorf("expected %d detail lookups, got %d", searchHydrateLimit, client.getByIDCalls)
	}
}

func TestCatalogService_SearchDetailed_DropsFailedHydrations(t *testing.T) {
	client := &mockCatalogClient{
		searchFn: func(ctx context.Context, title string) ([]omdb.SearchResult, error) {
			return []omdb.SearchResult{
				{Title: "Good", ImdbID: "tt0000001"},
				{Title: "Gone", ImdbID: "tt0000002"},
			}, nil
		},
		getByIDFn: func(ctx context.Context, imdbID string) (*omdb.Movie, error) {
			if imdbID == "tt0000002" {
				return nil, omdb.ErrNotFound
			}
			return &omdb.Movie{ImdbID: imdbID, Title: "Good", Response: "True"}, nil
		},
	}
	svc := NewCatalogService(client, newMockCatalogCache())

	movies, err := svc.SearchDetailed(context.Background(), "go")
	if err != nil {
		t.Fatalf("SearchDetailed failed: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected the failed hydration to be dropped, got %d movies", len(movies))
	}
	if movies[0].ImdbID != "tt0000001" {
		t.Errorf("expected tt0000001 to survive, got %s", movies[0].ImdbID)
	}
}

func TestCatalogService_Search_CachesEmptyResults(t *testing.T) {
	client := &mockCatalogClient{
		searchFn: func(ctx context.Context, title string) ([]omdb.SearchResult, error) {
			return []omdb.SearchResult{}, nil
		},
	}
	svc := NewCatalogService(client, newMockCatalogCache())

	for i := 0; i < 2; i++ {
		results, err := svc.Search(context.Background(), "zzzz")
		if err != nil {
			t.Fatalf("Search %d failed: %v", i, err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	}

	if client.searchCalls != 1 {
		t.Errorf("expected the empty result set to be cached, got %d API calls", client.searchCalls)
	}
}
