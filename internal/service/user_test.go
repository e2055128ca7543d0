package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"reelshelf/internal/model"
)

// mockUserRepository implements repository.UserRepository with
// per-test function fields.
type mockUserRepository struct {
	createFn            func(ctx context.Context, user *model.User) error
	getByIDFn           func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn        func(ctx context.Context, email string) (*model.User, error)
	getByHandleFn       func(ctx context.Context, handle string) (*model.User, error)
	existsByEmailFn     func(ctx context.Context, email string) (bool, error)
	searchFn            func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	updateDisplayNameFn func(ctx context.Context, userID int64, displayName string) error
	setPublicProfileFn  func(ctx context.Context, userID int64, public bool) error

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByHandle(ctx context.Context, handle string) (*model.User, error) {
	if m.getByHandleFn != nil {
		return m.getByHandleFn(ctx, handle)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateDisplayName(ctx context.Context, userID int64, displayName string) error {
	if m.updateDisplayNameFn != nil {
		return m.updateDisplayNameFn(ctx, userID, displayName)
	}
	return nil
}

func (m *mockUserRepository) SetPublicProfile(ctx context.Context, userID int64, public bool) error {
	if m.setPublicProfileFn != nil {
		return m.setPublicProfileFn(ctx, userID, public)
	}
	return nil
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{})

	req := &model.RegisterRequest{
		Email:       "Test@Example.com",
		Password:    "securepassword123",
		DisplayName: "Test User",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.Email != "test@example.com" {
		t.Errorf("email = %q, want lowercased %q", user.Email, "test@example.com")
	}

	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if user.PublicProfile {
		t.Error("new accounts must start private")
	}

	if !strings.HasPrefix(user.Handle, "test-user-") {
		t.Errorf("handle = %q, want prefix %q", user.Handle, "test-user-")
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_EmailExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{})

	req := &model.RegisterRequest{
		Email:       "taken@example.com",
		Password:    "password123",
		DisplayName: "Taken",
	}

	user, err := svc.Register(context.Background(), req)
	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("error = %v, want %v", err, model.ErrEmailExists)
	}
	if user != nil {
		t.Error("user should be nil when registration fails")
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when email exists")
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	mockRepo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email, PasswordHashed: string(hash)}, nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidCredentials)
	}
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, &mockFollowRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	// Unknown email and wrong password are indistinguishable
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidCredentials)
	}
}

func TestUserService_GetByHandle_Private(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByHandleFn: func(ctx context.Context, handle string) (*model.User, error) {
			return &model.User{ID: 3, Handle: handle, PublicProfile: false}, nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{})

	if _, err := svc.GetByHandle(context.Background(), "private-user-ab12", nil); !errors.Is(err, model.ErrProfileNotPublic) {
		t.Errorf("anonymous viewer: error = %v, want %v", err, model.ErrProfileNotPublic)
	}

	// The owner can still resolve their own private handle
	ownerID := int64(3)
	profile, err := svc.GetByHandle(context.Background(), "private-user-ab12", &ownerID)
	if err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if profile.User.ID != 3 {
		t.Errorf("user ID = %d, want 3", profile.User.ID)
	}
}

func TestUserService_Search_FiltersCaller(t *testing.T) {
	mockRepo := &mockUserRepository{
		searchFn: func(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
			return []model.UserSummary{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}
	follows := &mockFollowRepository{
		checkFollowsFn: func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{3: true}, nil
		},
	}
	svc := NewUserService(mockRepo, follows)

	viewerID := int64(2)
	results, err := svc.Search(context.Background(), "te", 20, &viewerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (caller filtered out)", len(results))
	}
	for _, u := range results {
		if u.ID == viewerID {
			t.Error("caller must not appear in their own search results")
		}
	}
	if !results[1].IsFollowing {
		t.Error("follow status should be annotated from the batch check")
	}
}

func TestGenerateHandle(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		wantPrefix  string
	}{
		{"simple", "Jane Doe", "jane-doe-"},
		{"extra whitespace", "  Jane   Doe  ", "jane-doe-"},
		{"punctuation stripped", "J@ne D'oe!", "jne-doe-"},
		{"digits kept", "User 42", "user-42-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle := GenerateHandle(tt.displayName)
			if !strings.HasPrefix(handle, tt.wantPrefix) {
				t.Errorf("GenerateHandle(%q) = %q, want prefix %q", tt.displayName, handle, tt.wantPrefix)
			}
			if len(handle) != len(tt.wantPrefix)+4 {
				t.Errorf("handle %q should end in a 4-character suffix", handle)
			}
		})
	}

	// No usable characters at all: the handle is just the suffix
	if handle := GenerateHandle("!!!"); len(handle) != 4 {
		t.Errorf("GenerateHandle(%q) = %q, want bare 4-character suffix", "!!!", handle)
	}
}
