package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"reelshelf/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow creates the edge and bumps both counters as one transaction, so
// the edge and the denormalized counts can never diverge. The composite
// primary key on (follower_id, followee_id) enforces uniqueness at the
// storage level; ON CONFLICT DO NOTHING turns a duplicate into
// inserted=false instead of an error.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if err := r.bumpCounts(ctx, tx, followerID, followeeID, 1); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}

// Unfollow deletes the edge and decrements both counters in one
// transaction. A missing edge rolls everything back.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	if err := r.bumpCounts(ctx, tx, followerID, followeeID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *followRepository) bumpCounts(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64, delta int) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET following_count = following_count + $1 WHERE id = $2`,
		delta, followerID); err != nil {
		return fmt.Errorf("failed to update following count: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET follower_count = follower_count + $1 WHERE id = $2`,
		delta, followeeID); err != nil {
		return fmt.Errorf("failed to update follower count: %w", err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers retrieves users who follow the specified user with
// cursor-based pagination.
//
//   - cursor == nil: start from the newest edge (ORDER BY created_at DESC)
//   - cursor != nil: fetch edges created BEFORE the cursor timestamp
//   - always fetch limit+1 to detect whether more results exist; when they
//     do, trim to limit and use the last row's timestamp as the next cursor
//
// The created_at cursor keeps pagination stable when new followers arrive
// mid-scan, which offset pagination would not.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT u.id, u.display_name, u.handle, u.follower_count, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.follower_id
			WHERE f.followee_id = $1
			ORDER BY f.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT u.id, u.display_name, u.handle, u.follower_count, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.follower_id
			WHERE f.followee_id = $1 AND f.created_at < $2
			ORDER BY f.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.scanUserPage(ctx, query, args, limit, "followers")
}

// GetFollowing retrieves users that the specified user follows. Same
// cursor mechanics as GetFollowers.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT u.id, u.display_name, u.handle, u.follower_count, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.followee_id
			WHERE f.follower_id = $1
			ORDER BY f.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT u.id, u.display_name, u.handle, u.follower_count, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.followee_id
			WHERE f.follower_id = $1 AND f.created_at < $2
			ORDER BY f.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.scanUserPage(ctx, query, args, limit, "following")
}

func (r *followRepository) scanUserPage(ctx context.Context, query string, args []interface{}, limit int, what string) ([]model.UserSummary, *time.Time, error) {
	type userWithTime struct {
		model.UserSummary
		CreatedAt time.Time `db:"created_at"`
	}

	var results []userWithTime
	err := r.db.SelectContext(ctx, &results, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get %s: %w", what, err)
	}

	var users []model.UserSummary
	var nextCursor *time.Time

	if len(results) > limit {
		results = results[:limit]
		nextCursor = &results[len(results)-1].CreatedAt
	}

	for _, result := range results {
		users = append(users, result.UserSummary)
	}

	return users, nextCursor, nil
}

// CheckFollows reports, in one query, which of the given users the
// follower already follows. Avoids N+1 lookups when annotating lists.
func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if len(followeeIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT followee_id FROM follows WHERE follower_id = $1 AND followee_id = ANY($2)`
	var followedIDs []int64
	err := r.db.SelectContext(ctx, &followedIDs, query, followerID, pq.Array(followeeIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range followeeIDs {
		result[id] = false
	}
	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}
