package membership

import "testing"

func TestEventBroadcasterHasSubscribers(t *testing.T) {
	b := newEventBroadcaster()
	if b.HasSubscribers() {
		t.Fatalf("expected no subscribers initially")
	}

	ch, unsubscribe := b.Subscribe()
	if !b.HasSubscribers() {
		t.Fatalf("expected a subscriber after Subscribe")
	}

	unsubscribe()
	if b.HasSubscribers() {
		t.Fatalf("expected no subscribers after unsubscribe")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed after unsubscribe")
	}
}

func TestEventBroadcasterPublishDeliversToAllSubscribers(t *testing.T) {
	b := newEventBroadcaster()
	chA, unsubA := b.Subscribe()
	chB, unsubB := b.Subscribe()
	defer unsubA()
	defer unsubB()

	ev := ClusterEvent{Cluster: Cluster{}}
	b.Publish(ev)

	select {
	case <-chA:
	default:
		t.Fatalf("expected subscriber A to receive the event")
	}
	select {
	case <-chB:
	default:
		t.Fatalf("expected subscriber B to receive the event")
	}
}

func TestEventBroadcasterPublishIsLossyOnOverflow(t *testing.T) {
	b := newEventBroadcaster()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	for i := 0; i < eventChannelCapacity+5; i++ {
		b.Publish(ClusterEvent{})
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
			continue
		default:
		}
		break
	}
	if count != eventChannelCapacity {
		t.Fatalf("expected exactly %d buffered events, got %d", eventChannelCapacity, count)
	}
}

func TestEventBroadcasterCloseReleasesAllSubscribers(t *testing.T) {
	b := newEventBroadcaster()
	chA, _ := b.Subscribe()
	chB, _ := b.Subscribe()

	b.Close()

	if _, ok := <-chA; ok {
		t.Fatalf("expected subscriber A's channel to be closed")
	}
	if _, ok := <-chB; ok {
		t.Fatalf("expected subscriber B's channel to be closed")
	}
	if b.HasSubscribers() {
		t.Fatalf("expected no subscribers after Close")
	}
}
