package membership

import (
	"sync"
	"time"
)

// eventChannelCapacity bounds each subscriber's buffer (§5: "bounded
// broadcast channel for events (capacity 10)").
const eventChannelCapacity = 10

// ClusterEvent carries an immutable snapshot of Cluster. Consumers may
// hold it arbitrarily long; it shares nothing mutable with the actor's
// live state.
type ClusterEvent struct {
	Cluster Cluster
	At      time.Time
}

// eventBroadcaster fans ClusterEvents out to any number of subscribers.
// Publish never blocks: a subscriber that isn't draining its channel
// fast enough silently misses intermediate events but always eventually
// sees newer ones (§5 "lossy-on-overflow").
type eventBroadcaster struct {
	mu          sync.Mutex
	subscribers map[int]chan ClusterEvent
	nextID      int
}

func newEventBroadcaster() *eventBroadcaster {
	return &eventBroadcaster{subscribers: map[int]chan ClusterEvent{}}
}

// Subscribe returns a new receive-only event stream and an unsubscribe
// function that must be called to release it.
func (b *eventBroadcaster) Subscribe() (<-chan ClusterEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan ClusterEvent, eventChannelCapacity)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// Publish delivers ev to every current subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *eventBroadcaster) Publish(ev ClusterEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// HasSubscribers reports whether at least one subscriber is currently
// attached. The actor only pays for Cluster.Clone() when this is true
// (§4.6: "if any event subscribers exist, broadcast a ClusterEvent").
func (b *eventBroadcaster) HasSubscribers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers) > 0
}

// Close releases every subscriber channel, used on Instance shutdown.
func (b *eventBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
