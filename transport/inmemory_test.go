package transport

import (
	"context"
	"errors"
	"testing"
)

type echoHandler struct{}

func (echoHandler) ExchangeClusterViews(ctx context.Context, req *PartialClusterViewMsg) (*PartialClusterViewMsg, error) {
	return req, nil
}

func TestInMemoryNetworkRoundTrip(t *testing.T) {
	net := NewInMemoryNetwork()
	net.Register("node-a", echoHandler{})

	factory := net.ChannelFactory()
	ch, err := factory.Channel(context.Background(), "node-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := PartialClusterViewMsg{ThisNodeID: NodeIDMsg{UniqueID: 1, Generation: 2}}
	reply, err := ch.ExchangeClusterViews(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.ThisNodeID != req.ThisNodeID {
		t.Fatalf("expected echo of %v, got %v", req.ThisNodeID, reply.ThisNodeID)
	}
}

func TestInMemoryNetworkUnreachable(t *testing.T) {
	net := NewInMemoryNetwork()
	ch, _ := net.ChannelFactory().Channel(context.Background(), "missing")

	_, err := ch.ExchangeClusterViews(context.Background(), PartialClusterViewMsg{})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestInMemoryNetworkSetDown(t *testing.T) {
	net := NewInMemoryNetwork()
	net.Register("node-a", echoHandler{})
	net.SetDown("node-a", true)

	ch, _ := net.ChannelFactory().Channel(context.Background(), "node-a")
	if _, err := ch.ExchangeClusterViews(context.Background(), PartialClusterViewMsg{}); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable while down, got %v", err)
	}

	net.SetDown("node-a", false)
	if _, err := ch.ExchangeClusterViews(context.Background(), PartialClusterViewMsg{}); err != nil {
		t.Fatalf("expected success after recovering, got %v", err)
	}
}
