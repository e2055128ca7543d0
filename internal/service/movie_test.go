package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelshelf/internal/model"
	"reelshelf/internal/omdb"
	"reelshelf/internal/queue"
)

type mockMovieRepository struct {
	createFn         func(ctx context.Context, m *model.Movie) error
	getByIDFn        func(ctx context.Context, id int64) (*model.Movie, error)
	listByUserFn     func(ctx context.Context, userID int64) ([]model.Movie, error)
	listPublicFn     func(ctx context.Context, userID int64) ([]model.Movie, error)
	updatePersonalFn func(ctx context.Context, m *model.Movie) error
	deleteFn         func(ctx context.Context, id, userID int64) error

	deleteCalls int
}

func (m *mockMovieRepository) Create(ctx context.Context, movie *model.Movie) error {
	if m.createFn != nil {
		return m.createFn(ctx, movie)
	}
	movie.ID = 1
	return nil
}

func (m *mockMovieRepository) GetByID(ctx context.Context, id int64) (*model.Movie, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrMovieNotFound
}

func (m *mockMovieRepository) ListByUser(ctx context.Context, userID int64) ([]model.Movie, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMovieRepository) ListPublicByUser(ctx context.Context, userID int64) ([]model.Movie, error) {
	if m.listPublicFn != nil {
		return m.listPublicFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMovieRepository) UpdatePersonal(ctx context.Context, movie *model.Movie) error {
	if m.updatePersonalFn != nil {
		return m.updatePersonalFn(ctx, movie)
	}
	return nil
}

func (m *mockMovieRepository) Delete(ctx context.Context, id, userID int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}

func (m *mockMovieRepository) SetPoster(ctx context.Context, movieID int64, url, key string) error {
	return nil
}

type mockCataloger struct {
	lookupFn func(ctx context.Context, ref string) (*omdb.Movie, error)
}

func (m *mockCataloger) Lookup(ctx context.Context, ref string) (*omdb.Movie, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, ref)
	}
	return nil, omdb.ErrNotFound
}

type mockStatsCache struct {
	getFn func(ctx context.Context, userID int64) (*model.MovieStats, bool)

	sets        int
	invalidated []int64
}

func (m *mockStatsCache) Get(ctx context.Context, userID int64) (*model.MovieStats, bool) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, false
}

func (m *mockStatsCache) Set(ctx context.Context, userID int64, stats *model.MovieStats) {
	m.sets++
}

func (m *mockStatsCache) Invalidate(ctx context.Context, userID int64) error {
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type mockPublisher struct {
	events []queue.LibraryEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.LibraryEvent) (string, error) {
	m.events = append(m.events, event)
	return "1-0", nil
}

func shawshank() *omdb.Movie {
	return &omdb.Movie{
		Title:      "The Shawshank Redemption",
		Year:       "1994",
		Genre:      "Drama",
		Director:   "Frank Darabont",
		Poster:     "https://example.com/poster.jpg",
		ImdbRating: "9.3",
		ImdbID:     "tt0111161",
		Response:   "True",
	}
}

func newMovieService(repo *mockMovieRepository, catalog *mockCataloger, stats *mockStatsCache, pub *mockPublisher) *MovieService {
	return NewMovieService(repo, catalog, stats, pub)
}

func TestMovieService_AddMovie_Success(t *testing.T) {
	repo := &mockMovieRepository{
		createFn: func(ctx context.Context, m *model.Movie) error {
			m.ID = 42
			return nil
		},
	}
	catalog := &mockCataloger{
		lookupFn: func(ctx context.Context, ref string) (*omdb.Movie, error) {
			return shawshank(), nil
		},
	}
	stats := &mockStatsCache{}
	pub := &mockPublisher{}
	svc := newMovieService(repo, catalog, stats, pub)

	movie, err := svc.AddMovie(context.Background(), 7, &model.AddMovieRequest{
		ImdbRef:     "https://www.imdb.com/title/tt0111161/",
		UserRating:  9,
		WatchedDate: "2024-03-10",
		IsPublic:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if movie.ImdbID != "tt0111161" {
		t.Errorf("imdb id = %q, want tt0111161", movie.ImdbID)
	}
	if movie.ImdbRating != 9.3 {
		t.Errorf("imdb rating = %v, want 9.3", movie.ImdbRating)
	}
	if movie.WatchedDate != time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC) {
		t.Errorf("watched date = %v", movie.WatchedDate)
	}

	if len(stats.invalidated) != 1 || stats.invalidated[0] != 7 {
		t.Errorf("stats invalidations = %v, want [7]", stats.invalidated)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	if pub.events[0].Type != queue.EventMovieAdded || pub.events[0].MovieID != 42 {
		t.Errorf("event = %+v, want movie_added for movie 42", pub.events[0])
	}
}

func TestMovieService_AddMovie_InvalidRef(t *testing.T) {
	catalog := &mockCataloger{
		lookupFn: func(ctx context.Context, ref string) (*omdb.Movie, error) {
			return nil, model.ErrInvalidImdbRef
		},
	}
	pub := &mockPublisher{}
	svc := newMovieService(&mockMovieRepository{}, catalog, &mockStatsCache{}, pub)

	_, err := svc.AddMovie(context.Background(), 7, &model.AddMovieRequest{
		ImdbRef:     "not-an-imdb-link",
		UserRating:  5,
		WatchedDate: "2024-03-10",
	})
	if !errors.Is(err, model.ErrInvalidImdbRef) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidImdbRef)
	}
	if len(pub.events) != 0 {
		t.Error("no event should be published for a failed add")
	}
}

func TestMovieService_AddMovie_Duplicate(t *testing.T) {
	repo := &mockMovieRepository{
		createFn: func(ctx context.Context, m *model.Movie) error {
			return model.ErrMovieExists
		},
	}
	catalog := &mockCataloger{
		lookupFn: func(ctx context.Context, ref string) (*omdb.Movie, error) {
			return shawshank(), nil
		},
	}
	stats := &mockStatsCache{}
	pub := &mockPublisher{}
	svc := newMovieService(repo, catalog, stats, pub)

	_, err := svc.AddMovie(context.Background(), 7, &model.AddMovieRequest{
		ImdbRef:     "tt0111161",
		UserRating:  9,
		WatchedDate: "2024-03-10",
	})
	if !errors.Is(err, model.ErrMovieExists) {
		t.Errorf("error = %v, want %v", err, model.ErrMovieExists)
	}
	if len(stats.invalidated) != 0 {
		t.Error("stats should not be invalidated for a failed add")
	}
	if len(pub.events) != 0 {
		t.Error("no event should be published for a duplicate")
	}
}

func TestMovieService_GetMovie_Visibility(t *testing.T) {
	private := &model.Movie{ID: 1, UserID: 7, IsPublic: false}
	repo := &mockMovieRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Movie, error) {
			return private, nil
		},
	}
	svc := newMovieService(repo, &mockCataloger{}, &mockStatsCache{}, &mockPublisher{})
	ctx := context.Background()

	owner := int64(7)
	if _, err := svc.GetMovie(ctx, 1, &owner); err != nil {
		t.Errorf("owner should see their private record: %v", err)
	}

	// Anyone else gets not-found, not forbidden, so private records
	// don't leak their existence
	stranger := int64(8)
	if _, err := svc.GetMovie(ctx, 1, &stranger); !errors.Is(err, model.ErrMovieNotFound) {
		t.Errorf("stranger: error = %v, want %v", err, model.ErrMovieNotFound)
	}
	if _, err := svc.GetMovie(ctx, 1, nil); !errors.Is(err, model.ErrMovieNotFound) {
		t.Errorf("anonymous: error = %v, want %v", err, model.ErrMovieNotFound)
	}
}

func TestMovieService_UpdateMovie_NotOwner(t *testing.T) {
	repo := &mockMovieRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Movie, error) {
			return &model.Movie{ID: 1, UserID: 7}, nil
		},
	}
	svc := newMovieService(repo, &mockCataloger{}, &mockStatsCache{}, &mockPublisher{})

	rating := 4.0
	_, err := svc.UpdateMovie(context.Background(), 1, 8, &model.UpdateMovieRequest{UserRating: &rating})
	if !errors.Is(err, model.ErrNotMovieOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotMovieOwner)
	}
}

func TestMovieService_UpdateMovie_PartialFields(t *testing.T) {
	var saved *model.Movie
	notes := "rewatched with friends"
	repo := &mockMovieRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Movie, error) {
			return &model.Movie{ID: 1, UserID: 7, UserRating: 8, IsPublic: true}, nil
		},
		updatePersonalFn: func(ctx context.Context, m *model.Movie) error {
			saved = m
			return nil
		},
	}
	stats := &mockStatsCache{}
	svc := newMovieService(repo, &mockCataloger{}, stats, &mockPublisher{})

	movie, err := svc.UpdateMovie(context.Background(), 1, 7, &model.UpdateMovieRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved == nil {
		t.Fatal("UpdatePersonal was never called")
	}
	if movie.Notes == nil || *movie.Notes != notes {
		t.Errorf("notes = %v, want %q", movie.Notes, notes)
	}
	// Untouched fields keep their values
	if movie.UserRating != 8 || !movie.IsPublic {
		t.Errorf("rating/public = %v/%v, want 8/true", movie.UserRating, movie.IsPublic)
	}
	if len(stats.invalidated) != 1 {
		t.Errorf("stats invalidations = %v, want one", stats.invalidated)
	}
}

func TestMovieService_DeleteMovie_PublishesCleanup(t *testing.T) {
	posterKey := "posters/abc.jpg"
	repo := &mockMovieRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Movie, error) {
			return &model.Movie{ID: 1, UserID: 7, PosterKey: &posterKey}, nil
		},
	}
	pub := &mockPublisher{}
	svc := newMovieService(repo, &mockCataloger{}, &mockStatsCache{}, pub)

	if err := svc.DeleteMovie(context.Background(), 1, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Errorf("Delete called %d times, want 1", repo.deleteCalls)
	}
	if len(pub.events) != 1 || pub.events[0].Type != queue.EventMovieRemoved {
		t.Fatalf("events = %+v, want one movie_removed", pub.events)
	}
	if pub.events[0].PosterKey != posterKey {
		t.Errorf("event poster key = %q, want %q", pub.events[0].PosterKey, posterKey)
	}
}

func TestMovieService_GetStats_CacheHit(t *testing.T) {
	cached := &model.MovieStats{TotalMovies: 5}
	stats := &mockStatsCache{
		getFn: func(ctx context.Context, userID int64) (*model.MovieStats, bool) {
			return cached, true
		},
	}
	repo := &mockMovieRepository{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.Movie, error) {
			t.Fatal("library must not be loaded on a cache hit")
			return nil, nil
		},
	}
	svc := newMovieService(repo, &mockCataloger{}, stats, &mockPublisher{})

	got, err := svc.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cached {
		t.Error("cached stats should be returned as-is")
	}
}

func TestMovieService_GetStats_MissComputesAndCaches(t *testing.T) {
	stats := &mockStatsCache{}
	repo := &mockMovieRepository{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.Movie, error) {
			return []model.Movie{
				{UserRating: 8, Genre: "Drama", WatchedDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
				{UserRating: 6, Genre: "Comedy", WatchedDate: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	svc := newMovieService(repo, &mockCataloger{}, stats, &mockPublisher{})

	got, err := svc.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalMovies != 2 {
		t.Errorf("total = %d, want 2", got.TotalMovies)
	}
	if got.AverageRating != 7.0 {
		t.Errorf("average = %v, want 7.0", got.AverageRating)
	}
	if stats.sets != 1 {
		t.Errorf("cache Set called %d times, want 1", stats.sets)
	}
}
