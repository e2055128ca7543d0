package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"reelshelf/internal/httputil"
	"reelshelf/internal/model"
	"reelshelf/internal/service"
	"reelshelf/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

// Follow creates a follow edge
// POST /users/{id}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followeeID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[FollowHandler] Follow: %v", err)
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully followed user",
	})
}

// Unfollow removes a follow edge
// DELETE /users/{id}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		switch {
		case errors.Is(err, model.ErrNotFollowing):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[FollowHandler] Unfollow: %v", err)
			httputil.WriteInternalError(w, "Failed to unfollow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully unfollowed user",
	})
}

// GetFollowers lists a user's followers with cursor pagination
// GET /users/{id}/followers?cursor=&limit=
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, h.followService.GetFollowers)
}

// GetFollowing lists who a user follows with cursor pagination
// GET /users/{id}/following?cursor=&limit=
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, h.followService.GetFollowing)
}

type pageFunc func(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error)

func (h *FollowHandler) listPage(w http.ResponseWriter, r *http.Request, fetch pageFunc) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var cursor *time.Time
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		parsed, err := time.Parse(time.RFC3339, cursorStr)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid cursor format")
			return
		}
		cursor = &parsed
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit < 1 || parsedLimit > 100 {
			httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
			return
		}
		limit = parsedLimit
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	result, err := fetch(r.Context(), userID, cursor, limit, viewerID)
	if err != nil {
		log.Printf("[FollowHandler] List: %v", err)
		httputil.WriteInternalError(w, "Failed to load follow list")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
