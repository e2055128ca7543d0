package model

import (
	"errors"
	"time"
)

// User represents an account in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	DisplayName    string    `db:"display_name" json:"display_name"`
	Handle         string    `db:"handle" json:"handle"` // URL-safe slug + random suffix, used in public profile links
	PublicProfile  bool      `db:"public_profile" json:"public_profile"`
	FollowerCount  int       `db:"follower_count" json:"follower_count"`
	FollowingCount int       `db:"following_count" json:"following_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest represents the data needed to create an account
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the body for PATCH /me/profile.
// The handle is derived at signup and never changes afterwards.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// UpdatePrivacyRequest is the body for PATCH /me/privacy
type UpdatePrivacyRequest struct {
	PublicProfile *bool `json:"public_profile" validate:"required"`
}

// ProfileResponse is a user profile annotated with the viewer's follow status
type ProfileResponse struct {
	User        *User `json:"user"`
	IsFollowing bool  `json:"is_following"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProfileNotPublic is returned when resolving a handle whose owner
	// has not enabled their public profile
	ErrProfileNotPublic = errors.New("profile is not public")
)
