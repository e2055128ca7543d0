package worker

import (
	"context"
	"errors"
	"testing"

	"reelshelf/internal/queue"
	"reelshelf/internal/service"
)

type mockPosterStore struct {
	mirrorFn func(ctx context.Context, sourceURL string) (*service.MirrorResult, error)

	mirrored []string
	deleted  []string
}

func (m *mockPosterStore) MirrorPoster(ctx context.Context, sourceURL string) (*service.MirrorResult, error) {
	m.mirrored = append(m.mirrored, sourceURL)
	if m.mirrorFn != nil {
		return m.mirrorFn(ctx, sourceURL)
	}
	return &service.MirrorResult{
		URL: "https://cdn.example.com/posters/abc.jpg",
		Key: "posters/abc.jpg",
	}, nil
}

func (m *mockPosterStore) DeleteObject(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

type mockPosterRecorder struct {
	setPosterFn func(ctx context.Context, movieID int64, url, key string) error

	records []recordedPoster
}

type recordedPoster struct {
	MovieID int64
	URL     string
	Key     string
}

func (m *mockPosterRecorder) SetPoster(ctx context.Context, movieID int64, url, key string) error {
	m.records = append(m.records, recordedPoster{MovieID: movieID, URL: url, Key: key})
	if m.setPosterFn != nil {
		return m.setPosterFn(ctx, movieID, url, key)
	}
	return nil
}

func TestHandler_MovieAdded_MirrorsPoster(t *testing.T) {
	store := &mockPosterStore{}
	recorder := &mockPosterRecorder{}
	h := NewHandler(store, recorder)

	event := queue.NewMovieAddedEvent(42, 7, "https://m.media-amazon.com/poster.jpg")
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.mirrored) != 1 || store.mirrored[0] != "https://m.media-amazon.com/poster.jpg" {
		t.Errorf("mirrored = %v", store.mirrored)
	}
	if len(recorder.records) != 1 {
		t.Fatalf("recorded %d posters, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.MovieID != 42 || rec.Key != "posters/abc.jpg" {
		t.Errorf("recorded = %+v", rec)
	}
}

func TestHandler_MovieAdded_NoPoster(t *testing.T) {
	store := &mockPosterStore{}
	h := NewHandler(store, &mockPosterRecorder{})

	event := queue.NewMovieAddedEvent(42, 7, "")
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.mirrored) != 0 {
		t.Error("nothing should be mirrored for a posterless movie")
	}
}

func TestHandler_MovieAdded_MirrorFails(t *testing.T) {
	store := &mockPosterStore{
		mirrorFn: func(ctx context.Context, sourceURL string) (*service.MirrorResult, error) {
			return nil, errors.New("download failed")
		},
	}
	recorder := &mockPosterRecorder{}
	h := NewHandler(store, recorder)

	event := queue.NewMovieAddedEvent(42, 7, "https://example.com/p.jpg")
	if err := h.HandleEvent(context.Background(), event); err == nil {
		t.Error("expected error when mirroring fails")
	}
	if len(recorder.records) != 0 {
		t.Error("nothing should be recorded when mirroring fails")
	}
}

func TestHandler_MovieAdded_RecordFailsCleansUp(t *testing.T) {
	// The movie can disappear between insert and mirror completion;
	// the uploaded object must not be leaked
	store := &mockPosterStore{}
	recorder := &mockPosterRecorder{
		setPosterFn: func(ctx context.Context, movieID int64, url, key string) error {
			return errors.New("movie gone")
		},
	}
	h := NewHandler(store, recorder)

	event := queue.NewMovieAddedEvent(42, 7, "https://example.com/p.jpg")
	if err := h.HandleEvent(context.Background(), event); err == nil {
		t.Error("expected error when recording fails")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "posters/abc.jpg" {
		t.Errorf("deleted = %v, want the orphaned key", store.deleted)
	}
}

func TestHandler_MovieRemoved_DeletesObject(t *testing.T) {
	store := &mockPosterStore{}
	h := NewHandler(store, &mockPosterRecorder{})

	event := queue.NewMovieRemovedEvent(42, 7, "posters/old.jpg")
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "posters/old.jpg" {
		t.Errorf("deleted = %v", store.deleted)
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h := NewHandler(&mockPosterStore{}, &mockPosterRecorder{})

	err := h.HandleEvent(context.Background(), queue.LibraryEvent{Type: "mystery"})
	if err == nil {
		t.Error("expected error for unknown event type")
	}
}
