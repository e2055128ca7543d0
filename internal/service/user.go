package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"reelshelf/internal/model"
	"reelshelf/internal/repository"
)

// UserService handles business logic for accounts and profiles
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
	}
}

// Register creates a new account. The handle is derived from the display
// name at signup and never changes; a random suffix keeps handles unique
// enough for profile links without a collision check.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, fmt.Errorf("display name is required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          email,
		PasswordHashed: string(hashedPassword),
		DisplayName:    req.DisplayName,
		Handle:         GenerateHandle(req.DisplayName),
		PublicProfile:  false, // opt-in via privacy settings
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile with the viewer's follow status.
// The follow check runs only for an authenticated viewer who isn't
// looking at themselves, and its failure degrades to is_following=false
// rather than failing the whole request.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User:        user,
		IsFollowing: false,
	}

	if viewerID != nil && *viewerID != userID {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, userID)
		if err == nil {
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}

// GetByHandle resolves a public profile link. A profile whose owner has
// not enabled sharing resolves to ErrProfileNotPublic even when the
// handle exists, so handles don't leak private accounts.
func (s *UserService) GetByHandle(ctx context.Context, handle string, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	if !user.PublicProfile {
		if viewerID == nil || *viewerID != user.ID {
			return nil, model.ErrProfileNotPublic
		}
	}

	profile := &model.ProfileResponse{User: user}
	if viewerID != nil && *viewerID != user.ID {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, user.ID)
		if err == nil {
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}

// Search finds public profiles by display-name or handle prefix, then
// annotates each hit with the viewer's follow status in one batch query
// (CheckFollows with ANY($1)) to avoid N+1 lookups.
func (s *UserService) Search(ctx context.Context, query string, limit int, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	// Don't show the caller their own profile in discovery results
	if viewerID != nil {
		filtered := users[:0]
		for _, u := range users {
			if u.ID != *viewerID {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	if viewerID != nil && len(users) > 0 {
		userIDs := make([]int64, len(users))
		for i, user := range users {
			userIDs[i] = user.ID
		}

		followMap, err := s.followRepo.CheckFollows(ctx, *viewerID, userIDs)
		if err == nil {
			for i := range users {
				users[i].IsFollowing = followMap[users[i].ID]
			}
		}
	}

	return users, nil
}

// UpdateProfile changes the display name. The handle stays as minted at
// signup so existing public profile links keep working.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, fmt.Errorf("display name is required")
	}

	if err := s.repo.UpdateDisplayName(ctx, userID, req.DisplayName); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

// SetPrivacy toggles whether the profile (and its public movies) are
// visible in discovery and via the handle link.
func (s *UserService) SetPrivacy(ctx context.Context, userID int64, public bool) (*model.User, error) {
	if err := s.repo.SetPublicProfile(ctx, userID, public); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// GenerateHandle derives a URL-safe handle: lowercased display name,
// whitespace runs collapsed to hyphens, everything outside [a-z0-9-]
// dropped, plus a random 4-character suffix. Collisions are not checked;
// the suffix makes them unlikely at this scale.
func GenerateHandle(displayName string) string {
	slug := strings.ToLower(displayName)
	slug = strings.Join(strings.Fields(slug), "-")

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	if b.Len() == 0 {
		return suffix
	}
	return b.String() + "-" + suffix
}
