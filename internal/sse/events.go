// Package sse implements Server-Sent Events for the mirror server's
// document change feed. Clients subscribe per document key and receive
// the full updated document on every accepted write.
package sse

import (
	"time"

	"github.com/linkdeckapp/linkdeck/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventDocumentUpdated carries the full document after a write.
	EventDocumentUpdated EventType = "document.updated"
	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`

	// Key filters delivery to subscribers of one document key.
	// Empty means broadcast to all (heartbeats). Not sent to clients.
	Key string `json:"-"`
}

// NewDocumentUpdatedEvent creates the change event for a stored document.
func NewDocumentUpdatedEvent(key string, doc *domain.Document) Event {
	return Event{
		Type:      EventDocumentUpdated,
		Timestamp: time.Now(),
		Data:      doc,
		Key:       key,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}
