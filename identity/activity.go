package identity

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEvent is a single timestamped action on a platform: a commit,
// tweet, article, post, or comment. Events are immutable once constructed
// and belong to exactly one identity node.
type ActivityEvent struct {
	// ID is a unique event identifier, auto-generated by NewActivityEvent.
	ID string `json:"id"`

	// Platform is the platform the event occurred on.
	Platform Platform `json:"platform"`

	// EventType is a free-form label such as "commit", "tweet", "article",
	// "post", or "comment".
	EventType string `json:"event_type"`

	// Content is the event text. Producers may truncate long content.
	Content string `json:"content"`

	// Timestamp is when the event occurred, normalized to UTC.
	Timestamp time.Time `json:"timestamp"`

	// URL optionally links to the event on its platform.
	URL string `json:"url,omitempty"`

	// Metadata holds platform-specific extras such as like counts.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Sentiment is an optional classification of the content.
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// NewActivityEvent creates an activity event with a generated ID and the
// timestamp normalized to UTC. Normalizing here keeps timestamps from
// different fetchers directly comparable inside the scorers.
func NewActivityEvent(platform Platform, eventType, content string, timestamp time.Time) ActivityEvent {
	return ActivityEvent{
		ID:        uuid.New().String(),
		Platform:  platform,
		EventType: eventType,
		Content:   content,
		Timestamp: timestamp.UTC(),
	}
}

// WithURL sets the event URL and returns the event for chaining.
func (e ActivityEvent) WithURL(url string) ActivityEvent {
	e.URL = url
	return e
}

// WithMetadata sets a single metadata entry and returns the event for chaining.
func (e ActivityEvent) WithMetadata(key string, value any) ActivityEvent {
	meta := make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	e.Metadata = meta
	return e
}

// WithSentiment sets the sentiment and returns the event for chaining.
func (e ActivityEvent) WithSentiment(s Sentiment) ActivityEvent {
	e.Sentiment = s
	return e
}
