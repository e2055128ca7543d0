package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"reelshelf/internal/queue"
	"reelshelf/internal/service"
)

// PosterStore mirrors remote poster images into object storage.
// This abstracts the R2-backed service so workers can be tested with mocks.
type PosterStore interface {
	// MirrorPoster downloads the source image and uploads a normalized
	// copy, returning its public URL and object key.
	MirrorPoster(ctx context.Context, sourceURL string) (*service.MirrorResult, error)
	// DeleteObject removes a mirrored object by key.
	DeleteObject(ctx context.Context, key string) error
}

// PosterRecorder persists the mirrored poster location on a movie record.
type PosterRecorder interface {
	SetPoster(ctx context.Context, movieID int64, url, key string) error
}

// Handler processes library events from the queue.
type Handler struct {
	posters  PosterStore
	recorder PosterRecorder
}

// NewHandler creates a new event handler.
func NewHandler(posters PosterStore, recorder PosterRecorder) *Handler {
	return &Handler{
		posters:  posters,
		recorder: recorder,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.LibraryEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventMovieAdded:
		err = h.handleMovieAdded(ctx, event)
	case queue.EventMovieRemoved:
		err = h.handleMovieRemoved(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleMovieAdded mirrors the third-party poster into our bucket and
// records the new location on the movie.
func (h *Handler) handleMovieAdded(ctx context.Context, event queue.LibraryEvent) error {
	log.Printf("[Worker] MovieAdded: movie=%d owner=%d", event.MovieID, event.OwnerID)

	if event.PosterURL == "" {
		log.Printf("[Worker] MovieAdded: movie=%d has no poster, nothing to mirror", event.MovieID)
		return nil
	}

	result, err := h.posters.MirrorPoster(ctx, event.PosterURL)
	if err != nil {
		return fmt.Errorf("mirror poster: %w", err)
	}

	if err := h.recorder.SetPoster(ctx, event.MovieID, result.URL, result.Key); err != nil {
		// The movie may have been deleted while we were mirroring;
		// drop the orphaned object rather than leak it.
		log.Printf("[Worker] MovieAdded: failed to record poster for movie=%d, cleaning up: %v", event.MovieID, err)
		if delErr := h.posters.DeleteObject(ctx, result.Key); delErr != nil {
			log.Printf("[Worker] MovieAdded: cleanup of key=%s failed: %v", result.Key, delErr)
		}
		return fmt.Errorf("record poster: %w", err)
	}

	log.Printf("[Worker] MovieAdded DONE: movie=%d key=%s", event.MovieID, result.Key)
	return nil
}

// handleMovieRemoved deletes the mirrored poster, if one was stored.
func (h *Handler) handleMovieRemoved(ctx context.Context, event queue.LibraryEvent) error {
	log.Printf("[Worker] MovieRemoved: movie=%d owner=%d", event.MovieID, event.OwnerID)

	if event.PosterKey == "" {
		return nil
	}

	if err := h.posters.DeleteObject(ctx, event.PosterKey); err != nil {
		return fmt.Errorf("delete poster object: %w", err)
	}

	log.Printf("[Worker] MovieRemoved DONE: movie=%d key=%s", event.MovieID, event.PosterKey)
	return nil
}
