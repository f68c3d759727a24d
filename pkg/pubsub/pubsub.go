// Package pubsub provides in-process publish/subscribe for realtime
// deliberation updates. Topics are deliberation IDs; payloads are
// typed Events consumed by websocket bridges and the admin tooling.
package pubsub

import (
	"context"
	"sync"
	"time"
)

// EventType identifies what happened to a deliberation's graph.
type EventType string

const (
	EventNodeCreated         EventType = "node.created"
	EventNodeDeleted         EventType = "node.deleted"
	EventRelationshipCreated EventType = "relationship.created"
	EventRelationshipDeleted EventType = "relationship.deleted"
	EventLayoutCompleted     EventType = "layout.completed"
)

// Event is one realtime update for a deliberation.
type Event struct {
	Type           EventType `json:"type"`
	DeliberationID string    `json:"deliberationId"`
	Payload        any       `json:"payload,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Bus provides publish/subscribe over deliberation topics.
type Bus struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	dropped     func() // optional hook, counted by the metrics layer
}

// Subscription represents a subscription to one deliberation's events.
type Subscription struct {
	topic     string
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// OnDrop registers a hook invoked whenever a message is dropped
// because a subscriber channel was full.
func (b *Bus) OnDrop(fn func()) {
	b.dropped = fn
}

// Subscribe creates a new subscription to a deliberation's events.
// The subscription is torn down when ctx is cancelled or the bus shuts
// down. Returns nil after shutdown.
func (b *Bus) Subscribe(ctx context.Context, deliberationID string) *Subscription {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   deliberationID,
		channel: make(chan Event, 100),
		bus:     b,
		ctx:     subCtx,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[deliberationID] == nil {
		b.subscribers[deliberationID] = make(map[*Subscription]bool)
	}
	b.subscribers[deliberationID][sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub
}

// Publish sends an event to all subscribers of its deliberation.
// Sends are non-blocking: a subscriber whose buffer is full misses the
// event rather than stalling the publisher.
func (b *Bus) Publish(event Event) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	// Snapshot subscribers under lock; a concurrent Unsubscribe must
	// not race the iteration.
	b.mu.RLock()
	topicSubs := b.subscribers[event.DeliberationID]
	if len(topicSubs) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- event:
		default:
			if b.dropped != nil {
				b.dropped()
			}
		}
	}
}

// SubscriberCount returns the number of subscribers for a deliberation.
func (b *Bus) SubscriberCount(deliberationID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[deliberationID])
}

// Shutdown closes all subscriptions and stops the bus.
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic := range b.subscribers {
		for sub := range b.subscribers[topic] {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.bus.subscribers[s.topic] != nil {
		delete(s.bus.subscribers[s.topic], s)
		if len(s.bus.subscribers[s.topic]) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
