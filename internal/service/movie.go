package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"reelshelf/internal/cache"
	"reelshelf/internal/model"
	"reelshelf/internal/omdb"
	"reelshelf/internal/queue"
	"reelshelf/internal/repository"
)

// Cataloger resolves external movie metadata for library writes.
type Cataloger interface {
	Lookup(ctx context.Context, ref string) (*omdb.Movie, error)
}

// MovieService manages each user's library of watched movies. Catalog
// metadata is snapshotted into the record at creation time and never
// re-fetched; only the personal fields can change afterwards.
type MovieService struct {
	movieRepo  repository.MovieRepository
	catalog    Cataloger
	statsCache cache.StatsCache
	publisher  queue.Publisher
}

func NewMovieService(movieRepo repository.MovieRepository, catalog Cataloger, statsCache cache.StatsCache, publisher queue.Publisher) *MovieService {
	return &MovieService{
		movieRepo:  movieRepo,
		catalog:    catalog,
		statsCache: statsCache,
		publisher:  publisher,
	}
}

// AddMovie records a watched movie. The catalog is consulted for
// metadata, then the record is inserted; the storage layer rejects a
// second record for the same IMDb id per owner, so concurrent adds of
// the same title produce exactly one record and one ErrMovieExists.
func (s *MovieService) AddMovie(ctx context.Context, userID int64, req *model.AddMovieRequest) (*model.Movie, error) {
	meta, err := s.catalog.Lookup(ctx, req.ImdbRef)
	if err != nil {
		return nil, err
	}

	watchedDate, err := time.Parse("2006-01-02", req.WatchedDate)
	if err != nil {
		return nil, fmt.Errorf("invalid watched date: %w", err)
	}

	movie := &model.Movie{
		UserID:      userID,
		ImdbID:      meta.ImdbID,
		Title:       meta.Title,
		Year:        meta.Year,
		Director:    meta.Director,
		Actors:      meta.Actors,
		Plot:        meta.Plot,
		Genre:       meta.Genre,
		Runtime:     meta.Runtime,
		ImdbRating:  meta.ImdbRatingFloat(),
		UserRating:  req.UserRating,
		WatchedDate: watchedDate,
		Notes:       req.Notes,
		IsPublic:    req.IsPublic,
	}
	if meta.Poster != "" && meta.Poster != "N/A" {
		movie.PosterURL = &meta.Poster
	}

	if err := s.movieRepo.Create(ctx, movie); err != nil {
		return nil, err
	}

	s.afterLibraryChange(ctx, userID)

	if movie.PosterURL != nil {
		event := queue.NewMovieAddedEvent(movie.ID, userID, *movie.PosterURL)
		if _, err := s.publisher.Publish(ctx, queue.StreamLibrary, event); err != nil {
			log.Printf("[MovieService] Failed to publish movie_added for movie %d: %v", movie.ID, err)
		}
	}

	return movie, nil
}

// GetMovie returns one record. The owner always sees it; anyone else
// only when the record is public.
func (s *MovieService) GetMovie(ctx context.Context, movieID int64, viewerID *int64) (*model.Movie, error) {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && *viewerID == movie.UserID {
		return movie, nil
	}
	if !movie.IsPublic {
		return nil, model.ErrMovieNotFound
	}
	return movie, nil
}

// ListMovies returns the caller's full library, most recently watched first.
func (s *MovieService) ListMovies(ctx context.Context, userID int64) ([]model.Movie, error) {
	return s.movieRepo.ListByUser(ctx, userID)
}

// ListPublicMovies returns another user's public records only.
func (s *MovieService) ListPublicMovies(ctx context.Context, userID int64) ([]model.Movie, error) {
	return s.movieRepo.ListPublicByUser(ctx, userID)
}

// UpdateMovie edits the personal fields of a record the caller owns.
// Fields absent from the request keep their current value.
func (s *MovieService) UpdateMovie(ctx context.Context, movieID, userID int64, req *model.UpdateMovieRequest) (*model.Movie, error) {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie.UserID != userID {
		return nil, model.ErrNotMovieOwner
	}

	if req.UserRating != nil {
		movie.UserRating = *req.UserRating
	}
	if req.WatchedDate != nil {
		watchedDate, err := time.Parse("2006-01-02", *req.WatchedDate)
		if err != nil {
			return nil, fmt.Errorf("invalid watched date: %w", err)
		}
		movie.WatchedDate = watchedDate
	}
	if req.Notes != nil {
		movie.Notes = req.Notes
	}
	if req.IsPublic != nil {
		movie.IsPublic = *req.IsPublic
	}

	if err := s.movieRepo.UpdatePersonal(ctx, movie); err != nil {
		return nil, err
	}

	s.afterLibraryChange(ctx, userID)
	return movie, nil
}

// DeleteMovie removes a record the caller owns and queues cleanup of
// its mirrored poster, if one was stored.
func (s *MovieService) DeleteMovie(ctx context.Context, movieID, userID int64) error {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		return err
	}
	if movie.UserID != userID {
		return model.ErrNotMovieOwner
	}

	if err := s.movieRepo.Delete(ctx, movieID, userID); err != nil {
		return err
	}

	s.afterLibraryChange(ctx, userID)

	if movie.PosterKey != nil {
		event := queue.NewMovieRemovedEvent(movieID, userID, *movie.PosterKey)
		if _, err := s.publisher.Publish(ctx, queue.StreamLibrary, event); err != nil {
			log.Printf("[MovieService] Failed to publish movie_removed for movie %d: %v", movieID, err)
		}
	}

	return nil
}

// GetStats computes viewing statistics over the user's full library.
// Cached results are reused until the next library change.
func (s *MovieService) GetStats(ctx context.Context, userID int64) (*model.MovieStats, error) {
	if cached, found := s.statsCache.Get(ctx, userID); found {
		return cached, nil
	}

	movies, err := s.movieRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load library for stats: %w", err)
	}

	stats := ComputeStats(movies, time.Now())
	s.statsCache.Set(ctx, userID, &stats)
	return &stats, nil
}

// afterLibraryChange drops cached stats. The TTL bounds staleness if
// this fails, so the error is logged but not surfaced.
func (s *MovieService) afterLibraryChange(ctx context.Context, userID int64) {
	if err := s.statsCache.Invalidate(ctx, userID); err != nil {
		log.Printf("[MovieService] Stats invalidation failed for user %d: %v", userID, err)
	}
}
