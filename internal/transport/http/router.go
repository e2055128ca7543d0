package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reelshelf/internal/handler"
	"reelshelf/internal/httputil"
	authmw "reelshelf/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	FollowHandler  *handler.FollowHandler
	MovieHandler   *handler.MovieHandler
	CatalogHandler *handler.CatalogHandler
	JWTSecret      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public user endpoints with optional authentication; a logged-in
	// viewer gets follow status and their own private records back
	r.Route("/users", func(r chi.Router) {
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/search", cfg.UserHandler.Search)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/handle/{handle}", cfg.UserHandler.GetByHandle)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}", cfg.UserHandler.GetProfile)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/following", cfg.FollowHandler.GetFollowing)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}/movies", cfg.MovieHandler.ListUserMovies)
	})

	// Public movie endpoint with optional authentication
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/movies/{id}", cfg.MovieHandler.Get)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Get("/me/stats", cfg.MovieHandler.Stats)
		r.Patch("/me/profile", cfg.UserHandler.UpdateProfile)
		r.Patch("/me/privacy", cfg.UserHandler.UpdatePrivacy)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Follow/unfollow actions require authentication
		r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)

		// Library endpoints
		r.Post("/movies", cfg.MovieHandler.Add)
		r.Get("/movies", cfg.MovieHandler.List)
		r.Patch("/movies/{id}", cfg.MovieHandler.Update)
		r.Delete("/movies/{id}", cfg.MovieHandler.Delete)

		// Catalog lookups burn API quota, so they require a login
		r.Get("/catalog/search", cfg.CatalogHandler.Search)
		r.Get("/catalog/{imdbID}", cfg.CatalogHandler.Lookup)
	})

	return r
}
