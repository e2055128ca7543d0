package model

import (
	"errors"
	"time"
)

type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the compact profile shape used in search results and
// follower/following lists.
type UserSummary struct {
	ID            int64  `db:"id" json:"id"`
	DisplayName   string `db:"display_name" json:"display_name"`
	Handle        string `db:"handle" json:"handle"`
	FollowerCount int    `db:"follower_count" json:"follower_count"`
	IsFollowing   bool   `json:"is_following"`
}

type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	NextCursor *string       `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
