package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the library stream
const (
	EventMovieAdded   = "movie_added"
	EventMovieRemoved = "movie_removed"
)

// Stream names
const (
	StreamLibrary = "stream:library"
)

// Consumer group name for library workers
const (
	ConsumerGroupLibrary = "library_workers"
)

// LibraryEvent is published after a movie record is committed. Workers
// react to it off the request path, mirroring the catalog poster into
// our own bucket on add and deleting the mirrored copy on remove.
type LibraryEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	MovieID int64 `json:"movie_id"`
	OwnerID int64 `json:"owner_id"`

	// MovieAdded: the catalog's poster URL to mirror (may be empty)
	PosterURL string `json:"poster_url,omitempty"`

	// MovieRemoved: the mirrored object key to delete (may be empty)
	PosterKey string `json:"poster_key,omitempty"`
}

// NewMovieAddedEvent creates an event for a freshly saved movie record.
func NewMovieAddedEvent(movieID, ownerID int64, posterURL string) LibraryEvent {
	return LibraryEvent{
		Type:      EventMovieAdded,
		Timestamp: time.Now().Unix(),
		MovieID:   movieID,
		OwnerID:   ownerID,
		PosterURL: posterURL,
	}
}

// NewMovieRemovedEvent creates an event for a deleted movie record.
func NewMovieRemovedEvent(movieID, ownerID int64, posterKey string) LibraryEvent {
	return LibraryEvent{
		Type:      EventMovieRemoved,
		Timestamp: time.Now().Unix(),
		MovieID:   movieID,
		OwnerID:   ownerID,
		PosterKey: posterKey,
	}
}

// ToMap converts the event to field-value pairs for Redis XADD. The full
// event rides in a JSON "data" field; "type" is duplicated for cheap
// filtering without a parse.
func (e LibraryEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseLibraryEvent parses a LibraryEvent from Redis stream message values.
func ParseLibraryEvent(values map[string]interface{}) (LibraryEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return LibraryEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event LibraryEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return LibraryEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
