package pubsub

import (
	"context"
	"encoding/json"
)

// Event represents a pub/sub event.
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "graph")
	Type    string          `json:"type"`    // Event type (e.g., "reloaded", "reload_failed")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic.
type Subscription interface {
	// Topic returns the subscription topic.
	Topic() string

	// Events returns a channel for receiving events.
	Events() <-chan Event

	// Close closes the subscription.
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing.
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic.
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions.
	Close() error
}

// GraphStatus describes the current graph snapshot for subscribers.
type GraphStatus struct {
	Snapshot string `json:"snapshot"` // Snapshot path the graph was built from
	Targets  int    `json:"targets"`
	Edges    int    `json:"edges"`
	Error    string `json:"error,omitempty"` // Set when a reload failed
}
