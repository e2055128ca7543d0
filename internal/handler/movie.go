package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"reelshelf/internal/httputil"
	"reelshelf/internal/model"
	"reelshelf/internal/omdb"
	"reelshelf/internal/service"
	"reelshelf/internal/transport/http/middleware"
)

// MovieHandler groups watched-movie library endpoints.
type MovieHandler struct {
	movieService *service.MovieService
	validate     *validator.Validate
}

func NewMovieHandler(movieService *service.MovieService, validate *validator.Validate) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
		validate:     validate,
	}
}

// Add records a watched movie in the caller's library
// POST /movies
func (h *MovieHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.AddMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		httputil.WriteBadRequest(w, "Validation failed: "+err.Error())
		return
	}

	movie, err := h.movieService.AddMovie(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidImdbRef):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrMovieExists):
			httputil.WriteConflict(w, err.Error())
		case errors.Is(err, omdb.ErrNotFound):
			httputil.WriteNotFound(w, "Movie not found in catalog")
		default:
			log.Printf("[MovieHandler] Add: %v", err)
			httputil.WriteInternalError(w, "Failed to add movie")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, movie)
}

// List returns the caller's full library
// GET /movies
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	movies, err := h.movieService.ListMovies(r.Context(), userID)
	if err != nil {
		log.Printf("[MovieHandler] List: %v", err)
		httputil.WriteInternalError(w, "Failed to list movies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"movies": movies,
	})
}

// Get returns one record; non-owners only see public records
// GET /movies/{id}
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid movie ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	movie, err := h.movieService.GetMovie(r.Context(), movieID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			httputil.WriteNotFound(w, "Movie not found")
			return
		}
		log.Printf("[MovieHandler] Get: %v", err)
		httputil.WriteInternalError(w, "Failed to get movie")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, movie)
}

// Update edits the personal fields of a record the caller owns
// PATCH /movies/{id}
func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid movie ID")
		return
	}

	var req model.UpdateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		httputil.WriteBadRequest(w, "Validation failed: "+err.Error())
		return
	}

	movie, err := h.movieService.UpdateMovie(r.Context(), movieID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMovieNotFound):
			httputil.WriteNotFound(w, "Movie not found")
		case errors.Is(err, model.ErrNotMovieOwner):
			httputil.WriteForbidden(w, "You do not own this movie")
		default:
			log.Printf("[MovieHandler] Update: %v", err)
			httputil.WriteInternalError(w, "Failed to update movie")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, movie)
}

// Delete removes a record the caller owns
// DELETE /movies/{id}
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid movie ID")
		return
	}

	if err := h.movieService.DeleteMovie(r.Context(), movieID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrMovieNotFound):
			httputil.WriteNotFound(w, "Movie not found")
		case errors.Is(err, model.ErrNotMovieOwner):
			httputil.WriteForbidden(w, "You do not own this movie")
		default:
			log.Printf("[MovieHandler] Delete: %v", err)
			httputil.WriteInternalError(w, "Failed to delete movie")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Movie deleted",
	})
}

// ListUserMovies returns another user's public records
// GET /users/{id}/movies
func (h *MovieHandler) ListUserMovies(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	// Owners asking for their own list get everything
	if viewerID, ok := middleware.GetUserIDFromContext(r.Context()); ok && viewerID == ownerID {
		movies, err := h.movieService.ListMovies(r.Context(), ownerID)
		if err != nil {
			log.Printf("[MovieHandler] ListUserMovies: %v", err)
			httputil.WriteInternalError(w, "Failed to list movies")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"movies": movies,
		})
		return
	}

	movies, err := h.movieService.ListPublicMovies(r.Context(), ownerID)
	if err != nil {
		log.Printf("[MovieHandler] ListUserMovies: %v", err)
		httputil.WriteInternalError(w, "Failed to list movies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"movies": movies,
	})
}

// Stats returns viewing statistics over the caller's library
// GET /me/stats
func (h *MovieHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	stats, err := h.movieService.GetStats(r.Context(), userID)
	if err != nil {
		log.Printf("[MovieHandler] Stats: %v", err)
		httputil.WriteInternalError(w, "Failed to compute stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
