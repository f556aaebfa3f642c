package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/mcastellin/membership/transport"
	"go.uber.org/zap"
)

// DefaultGossipInterval is how often a node initiates a gossip round when
// the embedder does not configure one (§6).
const DefaultGossipInterval = 1500 * time.Millisecond

// Builder configures and constructs an Instance (§6). The zero value is
// not usable; obtain one from NewBuilder.
type Builder struct {
	advertisedURL  string
	peerNodes      []string
	phiThreshold   float64
	gossipInterval time.Duration
	channelFactory transport.ChannelFactory
	logger         *zap.Logger
}

// NewBuilder starts a Builder for a node that will advertise itself at
// advertisedURL. advertisedURL both identifies this node (it is hashed
// into NodeID.UniqueID) and is the address peers dial to reach it.
func NewBuilder(advertisedURL string) *Builder {
	return &Builder{
		advertisedURL:  advertisedURL,
		phiThreshold:   DefaultPhiThreshold,
		gossipInterval: DefaultGossipInterval,
	}
}

// PeerNodes sets the seed URLs this node gossips with before it has
// learned of the rest of the cluster on its own (§3).
func (b *Builder) PeerNodes(urls []string) *Builder {
	b.peerNodes = urls
	return b
}

// FailureDetectorPhiThreshold overrides DefaultPhiThreshold.
func (b *Builder) FailureDetectorPhiThreshold(threshold float64) *Builder {
	b.phiThreshold = threshold
	return b
}

// GossipInterval overrides DefaultGossipInterval.
func (b *Builder) GossipInterval(interval time.Duration) *Builder {
	b.gossipInterval = interval
	return b
}

// TransportChannelFactory overrides the default gRPC-backed
// transport.ChannelFactory, typically with a transport.InMemoryNetwork
// for tests or same-process demos.
func (b *Builder) TransportChannelFactory(factory transport.ChannelFactory) *Builder {
	b.channelFactory = factory
	return b
}

// Logger overrides the default no-op *zap.Logger.
func (b *Builder) Logger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build constructs the Instance and starts its actor goroutine. ctx
// governs the actor's lifetime; cancelling it (or calling Instance.Close)
// stops gossip and releases its resources.
func (b *Builder) Build(ctx context.Context) (*Instance, error) {
	if b.advertisedURL == "" {
		return nil, fmt.Errorf("membership: advertised URL must not be empty")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	channelFactory := b.channelFactory
	if channelFactory == nil {
		channelFactory = transport.NewGRPCChannelFactory(transport.WithLogger(logger))
	}

	cluster := NewCluster(b.advertisedURL, b.peerNodes, b.phiThreshold)
	actor := newMembershipActor(cluster, channelFactory, b.gossipInterval, logger)

	runCtx, cancel := context.WithCancel(ctx)
	go actor.run(runCtx)

	eventsCh, unsubscribe := actor.events.Subscribe()

	return &Instance{
		actor:          actor,
		cancel:         cancel,
		channelFactory: channelFactory,
		eventsCh:       eventsCh,
		unsubscribe:    unsubscribe,
	}, nil
}
