package service

import (
	"context"
	"time"

	"reelshelf/internal/model"
	"reelshelf/internal/repository"
)

// FollowService manages the directed follow graph. The edge write and
// both users' counter updates happen in a single repository transaction,
// so there is no window where the edge exists but the counts disagree.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates the follower->followee edge. Following a user twice
// fails with ErrAlreadyFollowing and leaves the state unchanged.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	inserted, err := s.followRepo.Follow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}

	return nil
}

// Unfollow removes the edge. Removing a non-existent edge fails with
// ErrNotFollowing and modifies nothing.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	return s.followRepo.Unfollow(ctx, followerID, followeeID)
}

// IsFollowing reports whether the edge exists. Lookup failures report
// false rather than an error; callers use this for display only.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) bool {
	exists, err := s.followRepo.Exists(ctx, followerID, followeeID)
	if err != nil {
		return false
	}
	return exists
}

// GetFollowers retrieves users who follow the specified user with
// cursor-based pagination, annotated with whether the viewer follows
// each of them. The annotation is one batch query, and its failure
// degrades to is_following=false instead of failing the request.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowers(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return followListResponse(users, nextCursor), nil
}

// GetFollowing retrieves users that the specified user follows. Same
// shape as GetFollowers.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowing(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return followListResponse(users, nextCursor), nil
}

func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}

func followListResponse(users []model.UserSummary, nextCursor *time.Time) *model.FollowListResponse {
	var nextCursorStr *string
	if nextCursor != nil {
		str := nextCursor.Format(time.RFC3339)
		nextCursorStr = &str
	}

	return &model.FollowListResponse{
		Users:      users,
		NextCursor: nextCursorStr,
		HasMore:    nextCursor != nil,
	}
}
