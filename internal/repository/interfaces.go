package repository

import (
	"context"
	"time"

	"reelshelf/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByHandle(ctx context.Context, handle string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Search matches public profiles whose display name or handle starts
	// with the query term. Display-name matching follows the stored
	// casing; handle matching is against the lowercased term.
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	UpdateDisplayName(ctx context.Context, userID int64, displayName string) error
	SetPublicProfile(ctx context.Context, userID int64, public bool) error
}

type MovieRepository interface {
	// Create inserts a movie record. Returns model.ErrMovieExists when the
	// owner already has a record for the same IMDb id (composite unique
	// constraint, not a read-then-write check).
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id int64) (*model.Movie, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Movie, error)
	ListPublicByUser(ctx context.Context, userID int64) ([]model.Movie, error)
	// UpdatePersonal mutates the editable fields only; catalog metadata is
	// immutable after creation.
	UpdatePersonal(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id, userID int64) error
	// SetPoster records the mirrored poster location. Called by the worker
	// after a successful upload.
	SetPoster(ctx context.Context, movieID int64, url, key string) error
}

type FollowRepository interface {
	// Follow creates the edge and bumps both users' counters in a single
	// transaction. Returns false when the edge already existed.
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Unfollow deletes the edge and decrements both counters in a single
	// transaction. Returns model.ErrNotFollowing when no edge exists.
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
