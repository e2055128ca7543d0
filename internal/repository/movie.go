package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"reelshelf/internal/model"
)

// movieRepository implements MovieRepository using sqlx
type movieRepository struct {
	db *sqlx.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *sqlx.DB) MovieRepository {
	return &movieRepository{db: db}
}

const movieColumns = `
	id, user_id, imdb_id, title, year, poster_url, poster_key, director, actors,
	plot, genre, runtime, imdb_rating, user_rating, watched_date, notes, is_public,
	created_at, updated_at`

// Create inserts a movie record. The (user_id, imdb_id) pair carries a
// composite unique constraint; a conflicting insert yields no row back,
// which maps to ErrMovieExists. This replaces the read-then-write
// existence check that would be racy under concurrent inserts.
func (r *movieRepository) Create(ctx context.Context, m *model.Movie) error {
	query := `
		INSERT INTO movies (user_id, imdb_id, title, year, poster_url, director, actors,
		                    plot, genre, runtime, imdb_rating, user_rating, watched_date,
		                    notes, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (user_id, imdb_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		m.UserID,
		m.ImdbID,
		m.Title,
		m.Year,
		m.PosterURL,
		m.Director,
		m.Actors,
		m.Plot,
		m.Genre,
		m.Runtime,
		m.ImdbRating,
		m.UserRating,
		m.WatchedDate,
		m.Notes,
		m.IsPublic,
	)

	err := row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrMovieExists
		}
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	return nil
}

// GetByID retrieves a movie record by its ID
func (r *movieRepository) GetByID(ctx context.Context, id int64) (*model.Movie, error) {
	query := `SELECT` + movieColumns + ` FROM movies WHERE id = $1`

	var m model.Movie
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie by id: %w", err)
	}

	return &m, nil
}

// ListByUser returns all of a user's movies, most recently watched first
func (r *movieRepository) ListByUser(ctx context.Context, userID int64) ([]model.Movie, error) {
	query := `SELECT` + movieColumns + ` FROM movies WHERE user_id = $1 ORDER BY watched_date DESC`

	var movies []model.Movie
	err := r.db.SelectContext(ctx, &movies, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	return movies, nil
}

// ListPublicByUser returns only the movies a user has marked public,
// most recently watched first. Used for public profile pages.
func (r *movieRepository) ListPublicByUser(ctx context.Context, userID int64) ([]model.Movie, error) {
	query := `SELECT` + movieColumns + ` FROM movies
		WHERE user_id = $1 AND is_public = TRUE
		ORDER BY watched_date DESC`

	var movies []model.Movie
	err := r.db.SelectContext(ctx, &movies, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list public movies: %w", err)
	}

	return movies, nil
}

// UpdatePersonal writes back the editable fields. Catalog metadata
// columns are deliberately absent from the statement.
func (r *movieRepository) UpdatePersonal(ctx context.Context, m *model.Movie) error {
	query := `
		UPDATE movies
		SET user_rating = $1, watched_date = $2, notes = $3, is_public = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		m.UserRating,
		m.WatchedDate,
		m.Notes,
		m.IsPublic,
		m.ID,
		m.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrMovieNotFound
	}

	return nil
}

// Delete removes a movie record. The owner filter makes deleting someone
// else's record indistinguishable from a missing record.
func (r *movieRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM movies WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrMovieNotFound
	}

	return nil
}

// SetPoster records the mirrored poster location after the worker has
// uploaded a copy. The record may have been deleted in the meantime;
// that is not an error here.
func (r *movieRepository) SetPoster(ctx context.Context, movieID int64, url, key string) error {
	query := `UPDATE movies SET poster_url = $1, poster_key = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, url, key, movieID)
	if err != nil {
		return fmt.Errorf("failed to set poster: %w", err)
	}
	return nil
}
