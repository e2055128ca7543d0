package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event LibraryEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD with an auto-generated
// message ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event LibraryEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()

	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s movie=%d owner=%d msgID=%s duration=%v",
		stream, event.Type, event.MovieID, event.OwnerID, messageID, time.Since(startTime))

	return messageID, nil
}

// PublishMovieAdded is a convenience method for movie-added events.
func (p *RedisPublisher) PublishMovieAdded(ctx context.Context, movieID, ownerID int64, posterURL string) (string, error) {
	return p.Publish(ctx, StreamLibrary, NewMovieAddedEvent(movieID, ownerID, posterURL))
}

// PublishMovieRemoved is a convenience method for movie-removed events.
func (p *RedisPublisher) PublishMovieRemoved(ctx context.Context, movieID, ownerID int64, posterKey string) (string, error) {
	return p.Publish(ctx, StreamLibrary, NewMovieRemovedEvent(movieID, ownerID, posterKey))
}
