// Package broadcast fans leaderboard and round events out to in-process
// subscribers.
//
// Delivery is best effort: a subscriber that cannot keep up has events
// dropped rather than blocking publishers.
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/pkg/metrics"
)

// Default broadcaster configuration constants.
const (
	defaultBufferSize = 256
)

// Event kinds published by the application layer.
const (
	KindLeaderboardUpdated = "leaderboard.updated"
	KindRoundFinalized     = "round.finalized"
)

// Payload identifies the standing that changed, so subscribers can
// render the update without re-querying the leaderboard.
type Payload struct {
	TeamID         string  `json:"team_id,omitempty"`
	TeamName       string  `json:"team_name,omitempty"`
	SubmissionID   string  `json:"submission_id,omitempty"`
	AggregateScore float64 `json:"aggregate_score,omitempty"`
}

// Event is a notification about a change in an event's standings.
type Event struct {
	Kind      string    `json:"kind"`
	EventID   string    `json:"event_id"`
	Round     int       `json:"round"`
	Payload   Payload   `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster provides non-blocking publish and channel-based subscribe
// semantics, partitioned by event id.
type Broadcaster interface {
	// Publish delivers e to every subscriber of e.EventID.
	// Returns false if the broadcaster is closed.
	Publish(ctx context.Context, e Event) bool

	// Subscribe registers a subscriber for an event's notifications.
	// The returned cancel func must be called to release the subscription.
	Subscribe(ctx context.Context, eventID string) (<-chan Event, func())

	// Subscribers returns the current subscriber count across all events.
	Subscribers(ctx context.Context) int

	// Close shuts the broadcaster down and closes all subscriber channels.
	Close() error

	// IsClosed returns true if the broadcaster has been closed.
	IsClosed() bool
}

type subscriber struct {
	ch      chan Event
	eventID string
}

// InMemoryBroadcaster implements Broadcaster with per-subscriber
// buffered channels.
type InMemoryBroadcaster struct {
	bufferSize int

	mu     sync.RWMutex
	subs   map[string]map[string]*subscriber // eventID -> subID -> sub
	closed bool
}

// NewInMemoryBroadcaster creates a broadcaster with configuration options.
func NewInMemoryBroadcaster(opts ...Option) *InMemoryBroadcaster {
	b := &InMemoryBroadcaster{
		bufferSize: defaultBufferSize,
		subs:       make(map[string]map[string]*subscriber),
	}

	for _, opt := range opts {
		opt(b)
	}

	metrics.UpdateBroadcastSubscribers(0)

	return b
}

// Publish delivers e to every subscriber of e.EventID.
func (b *InMemoryBroadcaster) Publish(ctx context.Context, e Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		metrics.RecordErrorByComponent("broadcast", "closed")
		return false
	}

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	for _, sub := range b.subs[e.EventID] {
		select {
		case sub.ch <- e:
			metrics.RecordBroadcastPublished()
		case <-ctx.Done():
			return false
		default:
			// Subscriber buffer full; drop instead of blocking the publisher.
			metrics.RecordBroadcastDropped()
		}
	}
	return true
}

// Subscribe registers a subscriber for eventID.
func (b *InMemoryBroadcaster) Subscribe(ctx context.Context, eventID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:      make(chan Event, b.bufferSize),
		eventID: eventID,
	}

	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := uuid.NewString()
	if b.subs[eventID] == nil {
		b.subs[eventID] = make(map[string]*subscriber)
	}
	b.subs[eventID][id] = sub
	metrics.UpdateBroadcastSubscribers(b.countLocked())

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		if sub, ok := b.subs[eventID][id]; ok {
			delete(b.subs[eventID], id)
			if len(b.subs[eventID]) == 0 {
				delete(b.subs, eventID)
			}
			close(sub.ch)
			metrics.UpdateBroadcastSubscribers(b.countLocked())
		}
	}
	return sub.ch, cancel
}

// Subscribers returns the current subscriber count across all events.
func (b *InMemoryBroadcaster) Subscribers(ctx context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLocked()
}

func (b *InMemoryBroadcaster) countLocked() int {
	total := 0
	for _, subs := range b.subs {
		total += len(subs)
	}
	return total
}

// Close shuts the broadcaster down and closes all subscriber channels.
func (b *InMemoryBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil // already closed
	}

	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	b.subs = make(map[string]map[string]*subscriber)
	b.closed = true
	metrics.UpdateBroadcastSubscribers(0)

	return nil
}

// IsClosed returns true if the broadcaster has been closed.
func (b *InMemoryBroadcaster) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
