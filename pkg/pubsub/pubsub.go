package pubsub

import (
	"context"
	"encoding/json"
)

// Topics carried by the comparison service
const (
	TopicStatus = "comparison_status"
	TopicScore  = "score"
)

// Status event types, in the order a run emits them
const (
	StateLoading    = "loading"
	StateNegative   = "negative_benchmark"
	StatePositive   = "positive_benchmark"
	StateReady      = "ready"
	StateFailed     = "failed"
	EventScoreReady = "score_ready"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "comparison_status", "score")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "negative_benchmark", "score_ready")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// ComparisonStatus describes the progress of a comparison run
type ComparisonStatus struct {
	RunID   string `json:"run_id"`
	State   string `json:"state"`   // loading, negative_benchmark, positive_benchmark, ready, failed
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
	Error   string `json:"error,omitempty"`
}

// NewComparisonPublisher returns a publisher with the comparison topics
// configured: status replays the whole current run, score only the latest
func NewComparisonPublisher() *SSEPublisher {
	p := NewSSEPublisher()
	p.ConfigureTopic(TopicStatus, TopicConfig{BufferSize: 4, ReplayAll: true})
	p.ConfigureTopic(TopicScore, TopicConfig{BufferSize: 1})
	return p
}
