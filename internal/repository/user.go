package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"reelshelf/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (email, password_hashed, display_name, handle, public_profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, follower_count, following_count, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Email,
		u.PasswordHashed,
		u.DisplayName,
		u.Handle,
		u.PublicProfile,
	)

	err := row.Scan(
		&u.ID,
		&u.FollowerCount,
		&u.FollowingCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, email, password_hashed, display_name, handle, public_profile,
		       follower_count, following_count, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hashed, display_name, handle, public_profile,
		       follower_count, following_count, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// GetByHandle retrieves a user by their public handle
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*model.User, error) {
	query := `
		SELECT id, email, password_hashed, display_name, handle, public_profile,
		       follower_count, following_count, created_at, updated_at
		FROM users
		WHERE handle = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, handle)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by handle: %w", err)
	}

	return &u, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// Search performs two prefix scans (display name as typed, handle
// lowercased) over public profiles, unioned in one query. Prefix match,
// not substring; case sensitivity follows the stored casing.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	searchQuery := `
		SELECT id, display_name, handle, follower_count
		FROM users
		WHERE public_profile = TRUE
		  AND (display_name LIKE $1 OR handle LIKE $2)
		ORDER BY follower_count DESC
		LIMIT $3
	`

	namePrefix := escapeLike(query) + "%"
	handlePrefix := escapeLike(strings.ToLower(query)) + "%"

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, namePrefix, handlePrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

// UpdateDisplayName changes the display name. The handle stays fixed.
func (r *userRepository) UpdateDisplayName(ctx context.Context, userID int64, displayName string) error {
	query := `UPDATE users SET display_name = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, displayName, userID)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// SetPublicProfile toggles whether the profile appears in discovery
func (r *userRepository) SetPublicProfile(ctx context.Context, userID int64, public bool) error {
	query := `UPDATE users SET public_profile = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, public, userID)
	if err != nil {
		return fmt.Errorf("failed to set public profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// escapeLike neutralizes LIKE wildcards in user input so the scan stays a
// literal prefix match.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
