package model

import (
	"errors"
	"time"
)

// Movie is one user's record of one watched title. Catalog metadata
// (everything fetched from OMDb) is immutable after creation; only the
// personal fields (rating, notes, watched date, visibility) can change.
type Movie struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ImdbID      string    `db:"imdb_id" json:"imdb_id"`
	Title       string    `db:"title" json:"title"`
	Year        string    `db:"year" json:"year"`
	PosterURL   *string   `db:"poster_url" json:"poster_url"`
	PosterKey   *string   `db:"poster_key" json:"-"` // object key of the mirrored copy, if any
	Director    string    `db:"director" json:"director"`
	Actors      string    `db:"actors" json:"actors"`
	Plot        string    `db:"plot" json:"plot"`
	Genre       string    `db:"genre" json:"genre"` // comma-separated genre names, as OMDb returns them
	Runtime     string    `db:"runtime" json:"runtime"`
	ImdbRating  float64   `db:"imdb_rating" json:"imdb_rating"`
	UserRating  float64   `db:"user_rating" json:"user_rating"`
	WatchedDate time.Time `db:"watched_date" json:"watched_date"`
	Notes       *string   `db:"notes" json:"notes"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AddMovieRequest is the body for POST /movies. The IMDb reference may be a
// full URL or a bare id; the handler normalizes it before the service runs.
type AddMovieRequest struct {
	ImdbRef     string  `json:"imdb_ref" validate:"required"`
	UserRating  float64 `json:"user_rating" validate:"required,gte=1,lte=10"`
	WatchedDate string  `json:"watched_date" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	IsPublic    bool    `json:"is_public"`
}

// UpdateMovieRequest is the body for PATCH /movies/{id}.
// Only the personal fields are editable.
type UpdateMovieRequest struct {
	UserRating  *float64 `json:"user_rating" validate:"omitempty,gte=1,lte=10"`
	WatchedDate *string  `json:"watched_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string  `json:"notes" validate:"omitempty,max=2000"`
	IsPublic    *bool    `json:"is_public"`
}

var (
	// ErrMovieNotFound is returned when a movie record cannot be found
	ErrMovieNotFound = errors.New("movie not found")

	// ErrMovieExists is returned when the owner already has a record for
	// the same IMDb id
	ErrMovieExists = errors.New("movie already in your library")

	// ErrNotMovieOwner is returned when mutating a record owned by someone else
	ErrNotMovieOwner = errors.New("movie belongs to another user")

	// ErrInvalidImdbRef is returned when the IMDb reference cannot be parsed
	ErrInvalidImdbRef = errors.New("invalid IMDb id or URL")
)
