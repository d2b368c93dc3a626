package events

import (
	"context"
	"time"
)

// EntryEvent is the payload published when a journal entry changes
// lifecycle state.
type EntryEvent struct {
	EntryID    string    `json:"entry_id"`
	Action     string    `json:"action"`
	Reference  string    `json:"reference"`
	Currency   string    `json:"currency"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers entry lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event EntryEvent) error
	Close() error
}

// NopPublisher drops events. Used when no brokers are configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event EntryEvent) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
