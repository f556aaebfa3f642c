package transport

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryNetwork wires multiple in-process nodes together without any
// real sockets. It backs the convergence tests and can back a
// single-process demo. Each node registers a handler under its
// advertised URL; ExchangeClusterViews calls are dispatched directly to
// that handler.
type InMemoryNetwork struct {
	mu       sync.RWMutex
	handlers map[string]MembershipServer
	down     map[string]bool
}

// NewInMemoryNetwork builds an empty network.
func NewInMemoryNetwork() *InMemoryNetwork {
	return &InMemoryNetwork{
		handlers: map[string]MembershipServer{},
		down:     map[string]bool{},
	}
}

// Register attaches handler as the receiver for url.
func (n *InMemoryNetwork) Register(url string, handler MembershipServer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[url] = handler
}

// Unregister removes url's receiver.
func (n *InMemoryNetwork) Unregister(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.handlers, url)
}

// SetDown simulates a peer being unreachable: calls to url fail with
// ErrUnreachable until SetDown(url, false) is called.
func (n *InMemoryNetwork) SetDown(url string, down bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.down[url] = down
}

// ChannelFactory returns a transport.ChannelFactory backed by this
// network.
func (n *InMemoryNetwork) ChannelFactory() ChannelFactory {
	return &inMemoryFactory{network: n}
}

type inMemoryFactory struct {
	network *InMemoryNetwork
}

func (f *inMemoryFactory) Channel(ctx context.Context, url string) (Channel, error) {
	return &inMemoryChannel{network: f.network, url: url}, nil
}

type inMemoryChannel struct {
	network *InMemoryNetwork
	url     string
}

func (c *inMemoryChannel) ExchangeClusterViews(ctx context.Context, req PartialClusterViewMsg) (PartialClusterViewMsg, error) {
	c.network.mu.RLock()
	down := c.network.down[c.url]
	handler, ok := c.network.handlers[c.url]
	c.network.mu.RUnlock()

	if down || !ok {
		return PartialClusterViewMsg{}, fmt.Errorf("%w: %s", ErrUnreachable, c.url)
	}

	reply, err := handler.ExchangeClusterViews(ctx, &req)
	if err != nil {
		return PartialClusterViewMsg{}, err
	}
	return *reply, nil
}
