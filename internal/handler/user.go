package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"reelshelf/internal/httputil"
	"reelshelf/internal/model"
	"reelshelf/internal/service"
	"reelshelf/internal/transport/http/middleware"
)

// DefaultSearchLimit caps user search results when no limit is given
const DefaultSearchLimit = 20

// UserHandler groups profile and search endpoints.
type UserHandler struct {
	userService *service.UserService
	validate    *validator.Validate
}

func NewUserHandler(userService *service.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validate,
	}
}

// GetProfile returns a user profile with the viewer's follow status
// GET /users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetProfile(r.Context(), userID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] GetProfile: %v", err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// GetByHandle resolves a public profile link
// GET /users/handle/{handle}
func (h *UserHandler) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		httputil.WriteBadRequest(w, "Handle is required")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetByHandle(r.Context(), handle, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrProfileNotPublic):
			// Indistinguishable from a missing user on purpose
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] GetByHandle: %v", err)
			httputil.WriteInternalError(w, "Failed to get profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Search finds public profiles by display-name or handle prefix
// GET /users/search?q=term&limit=20
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.WriteBadRequest(w, "Search term is required")
		return
	}

	limit := DefaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	results, err := h.userService.Search(r.Context(), query, limit, viewerID)
	if err != nil {
		log.Printf("[UserHandler] Search: %v", err)
		// Search degrades to an empty result set rather than an error page
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"users": []model.UserSummary{},
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": results,
	})
}

// UpdateProfile edits the caller's display name
// PATCH /me/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		httputil.WriteBadRequest(w, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] UpdateProfile: %v", err)
		httputil.WriteInternalError(w, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdatePrivacy toggles the caller's public profile
// PATCH /me/privacy
func (h *UserHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.UpdatePrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.PublicProfile == nil {
		httputil.WriteBadRequest(w, "public_profile is required")
		return
	}

	user, err := h.userService.SetPrivacy(r.Context(), userID, *req.PublicProfile)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] UpdatePrivacy: %v", err)
		httputil.WriteInternalError(w, "Failed to update privacy")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
