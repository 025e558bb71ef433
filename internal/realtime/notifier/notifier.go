// Package notifier bridges hub broadcasts between gateway instances. A
// single-instance deployment runs without one; with the redis notifier every
// broadcast is published on a pub/sub channel and replayed by peers against
// their own local sessions.
package notifier

import (
	"context"
	"encoding/json"
)

// Event is one broadcast crossing instance boundaries. Payload carries the
// serialized client envelope; Origin identifies the publishing instance so
// it can skip its own events on receipt.
type Event struct {
	Origin  string          `json:"origin"`
	All     bool            `json:"all"`
	Rooms   []string        `json:"rooms,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Notifier publishes local broadcasts and watches for peer broadcasts
type Notifier interface {
	// Publish sends a broadcast event to peer instances
	Publish(ctx context.Context, evt *Event) error

	// Watch returns a channel of events published by peers. The channel is
	// closed when ctx is done.
	Watch(ctx context.Context) (<-chan *Event, error)

	// Close releases the underlying transport
	Close() error
}
