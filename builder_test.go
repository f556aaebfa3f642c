package membership

import (
	"context"
	"testing"
	"time"

	"github.com/mcastellin/membership/transport"
)

func TestBuilderRejectsEmptyAdvertisedURL(t *testing.T) {
	_, err := NewBuilder("").Build(context.Background())
	if err == nil {
		t.Fatalf("expected an error for an empty advertised URL")
	}
}

func TestBuilderAppliesDefaults(t *testing.T) {
	b := NewBuilder("node-a:9000")
	if b.phiThreshold != DefaultPhiThreshold {
		t.Fatalf("expected default phi threshold, got %f", b.phiThreshold)
	}
	if b.gossipInterval != DefaultGossipInterval {
		t.Fatalf("expected default gossip interval, got %v", b.gossipInterval)
	}
}

func TestBuilderBuildAndClose(t *testing.T) {
	ctx := context.Background()
	net := transport.NewInMemoryNetwork()

	instance, err := NewBuilder("node-a:9000").
		TransportChannelFactory(net.ChannelFactory()).
		GossipInterval(time.Hour).
		Build(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer instance.Close()

	net.Register("node-a:9000", instance.RPCHandler())

	cluster, err := instance.Cluster(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cluster.ThisNodeID != instance.NodeID() {
		t.Fatalf("expected cluster snapshot to match NodeID")
	}
}

func TestInstanceClusterAfterCloseReturnsErrInstanceClosed(t *testing.T) {
	instance, err := NewBuilder("node-a:9000").
		TransportChannelFactory(transport.NewInMemoryNetwork().ChannelFactory()).
		GossipInterval(time.Hour).
		Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instance.Close()

	if _, err := instance.Cluster(context.Background()); err != ErrInstanceClosed {
		t.Fatalf("expected ErrInstanceClosed, got %v", err)
	}
}

func TestInstancePromoteRejectsSelfAppliedStatuses(t *testing.T) {
	instance, err := NewBuilder("node-a:9000").
		TransportChannelFactory(transport.NewInMemoryNetwork().ChannelFactory()).
		GossipInterval(time.Hour).
		Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer instance.Close()

	if err := instance.Promote(instance.NodeID(), StatusJoining); err != errInvalidPromotion {
		t.Fatalf("expected errInvalidPromotion, got %v", err)
	}
}
