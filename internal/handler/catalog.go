package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelshelf/internal/httputil"
	"reelshelf/internal/model"
	"reelshelf/internal/omdb"
	"reelshelf/internal/service"
)

// CatalogHandler exposes read-only catalog lookups used by clients to
// preview a movie before adding it.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// Lookup fetches full metadata for an IMDb id or URL
// GET /catalog/{imdbID}
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "imdbID")

	movie, err := h.catalogService.Lookup(r.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidImdbRef):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, omdb.ErrNotFound):
			httputil.WriteNotFound(w, "Movie not found in catalog")
		case errors.Is(err, omdb.ErrMissingAPIKey):
			log.Printf("[CatalogHandler] Lookup: %v", err)
			httputil.WriteInternalError(w, "Catalog is not configured")
		default:
			log.Printf("[CatalogHandler] Lookup: %v", err)
			httputil.WriteInternalError(w, "Catalog lookup failed")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, movie)
}

// Search finds catalog candidates by title
// GET /catalog/search?title=...
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		httputil.WriteBadRequest(w, "Title is required")
		return
	}

	results, err := h.catalogService.SearchDetailed(r.Context(), title)
	if err != nil {
		if errors.Is(err, omdb.ErrMissingAPIKey) {
			log.Printf("[CatalogHandler] Search: %v", err)
			httputil.WriteInternalError(w, "Catalog is not configured")
			return
		}
		log.Printf("[CatalogHandler] Search: %v", err)
		httputil.WriteInternalError(w, "Catalog search failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}
